package httpapi

import (
	"net/http"

	appCard "github.com/pairplay/pairplay/internal/application/card"
)

type cardCreateRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type cardUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	var req cardCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actor := authUserFromContext(r.Context())
	c, err := s.cardSvc.Create(r.Context(), appCard.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   &actor.UserID,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	enabledOnly := r.URL.Query().Get("all") != "true"
	cards, total, err := s.cardSvc.List(r.Context(), enabledOnly, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"cards": cards, "total": total})
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "cardId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid cardId")
		return
	}
	c, err := s.cardSvc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) updateCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "cardId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid cardId")
		return
	}
	var req cardUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	c, err := s.cardSvc.Update(r.Context(), id, appCard.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Enabled:     req.Enabled,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "cardId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid cardId")
		return
	}
	if err := s.cardSvc.Delete(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "DELETED"})
}
