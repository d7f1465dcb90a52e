package httpapi

import (
	"net/http"

	"github.com/google/uuid"
)

type adjustmentRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Amount int       `json:"amount"`
	Note   string    `json:"note"`
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	actor := authUserFromContext(r.Context())
	balance, err := s.settlementSvc.GetBalance(r.Context(), actor.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user_id": actor.UserID, "balance": balance, "currency": s.currencyName})
}

func (s *Server) getLedger(w http.ResponseWriter, r *http.Request) {
	actor := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)
	entries, total, err := s.settlementSvc.Ledger(r.Context(), actor.UserID, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "total": total})
}

func (s *Server) createAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	entry, err := s.settlementSvc.Adjust(r.Context(), req.UserID, req.Amount, req.Note)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, entry)
}

func (s *Server) getUserBalance(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	balance, err := s.settlementSvc.GetBalance(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user_id": id, "balance": balance, "currency": s.currencyName})
}

func (s *Server) getUserLedger(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	entries, total, err := s.settlementSvc.Ledger(r.Context(), id, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries, "total": total})
}

func (s *Server) rebuildBalance(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "userId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid userId")
		return
	}
	balance, err := s.settlementSvc.RebuildBalance(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"user_id": id, "balance": balance})
}
