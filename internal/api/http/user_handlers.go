package httpapi

import (
	"net/http"

	"github.com/google/uuid"

	domainUser "github.com/pairplay/pairplay/internal/domain/user"
)

type linkPartnerRequest struct {
	PartnerID uuid.UUID `json:"partner_id"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}

type setStatusRequest struct {
	Status domainUser.Status `json:"status"`
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 100, 200)
	var filter domainUser.Filter
	if role := r.URL.Query().Get("role"); role != "" {
		v := domainUser.Role(role)
		filter.Role = &v
	}
	if status := r.URL.Query().Get("status"); status != "" {
		v := domainUser.Status(status)
		filter.Status = &v
	}
	users, err := s.userSvc.ListUsers(r.Context(), filter, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	u, err := s.userSvc.GetUser(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if u == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// linkPartner joins the path participant with the request body partner.
// Members may only link themselves; admins may link any pair.
func (s *Server) linkPartner(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	var req linkPartnerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actor := authUserFromContext(r.Context())
	if actor.Role != domainUser.RoleAdmin && actor.UserID != id {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "can only link your own account")
		return
	}
	if err := s.userSvc.LinkPartners(r.Context(), id, req.PartnerID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "LINKED"})
}

func (s *Server) setUserPassword(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	actor := authUserFromContext(r.Context())
	if actor.Role != domainUser.RoleAdmin && actor.UserID != id {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "can only change your own password")
		return
	}
	var req setPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	if err := s.userSvc.SetPassword(r.Context(), id, req.Password); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "OK"})
}

func (s *Server) setUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	var req setStatusRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	u, err := s.userSvc.SetStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}
