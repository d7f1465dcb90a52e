package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	appNegotiation "github.com/pairplay/pairplay/internal/application/negotiation"
	"github.com/pairplay/pairplay/internal/domain/challenge"
)

type proposalCreateRequest struct {
	RecipientID uuid.UUID          `json:"recipient_id"`
	PeriodID    *uuid.UUID         `json:"period_id,omitempty"`
	WeekIndex   *int               `json:"week_index,omitempty"`
	CardID      *uuid.UUID         `json:"card_id,omitempty"`
	Details     *challenge.Details `json:"details,omitempty"`
}

type proposalRespondRequest struct {
	Decision   challenge.Status `json:"decision"`
	CreditCost *int             `json:"credit_cost,omitempty"`
}

type proposalUpdateRequest struct {
	Details *challenge.Details `json:"details"`
}

func (s *Server) createProposal(w http.ResponseWriter, r *http.Request) {
	var req proposalCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actor := authUserFromContext(r.Context())

	periodID := uuid.Nil
	weekIndex := 0
	if req.PeriodID != nil {
		periodID = *req.PeriodID
	}
	if req.WeekIndex != nil {
		weekIndex = *req.WeekIndex
	}
	if periodID == uuid.Nil || weekIndex == 0 {
		active, err := s.periodSvc.GetActive(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if active == nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAM", "no active period")
			return
		}
		if periodID == uuid.Nil {
			periodID = active.PeriodID
		}
		if weekIndex == 0 {
			weekIndex = active.CurrentWeek(time.Now().UTC())
		}
	}

	p, err := s.negotiationSvc.Create(r.Context(), appNegotiation.CreateInput{
		ProposerID:  actor.UserID,
		RecipientID: req.RecipientID,
		PeriodID:    periodID,
		WeekIndex:   weekIndex,
		CardID:      req.CardID,
		Details:     req.Details,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) listProposals(w http.ResponseWriter, r *http.Request) {
	actor := authUserFromContext(r.Context())
	limit, offset := parseLimitOffset(r, 50, 200)

	asRecipient := r.URL.Query().Get("role") != "proposer"
	var status *challenge.Status
	if st := r.URL.Query().Get("status"); st != "" {
		v := challenge.Status(st)
		if err := challenge.ValidateStatus(v); err != nil {
			respondServiceError(w, err)
			return
		}
		status = &v
	}

	proposals, total, err := s.negotiationSvc.ListForUser(r.Context(), actor.UserID, asRecipient, status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"proposals": proposals, "total": total})
}

func (s *Server) getProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	p, err := s.negotiationSvc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	actor := authUserFromContext(r.Context())
	if p.ProposerID != actor.UserID && p.RecipientID != actor.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "not a party to this proposal")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) updateProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	var req proposalUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actor := authUserFromContext(r.Context())
	p, err := s.negotiationSvc.UpdateDetails(r.Context(), id, actor.UserID, req.Details)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	actor := authUserFromContext(r.Context())
	if err := s.negotiationSvc.Delete(r.Context(), id, actor.UserID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "DELETED"})
}

func (s *Server) respondProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	var req proposalRespondRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	actor := authUserFromContext(r.Context())
	p, err := s.negotiationSvc.Respond(r.Context(), id, actor.UserID, req.Decision, req.CreditCost)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) completeProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	actor := authUserFromContext(r.Context())
	p, err := s.negotiationSvc.MarkCompleted(r.Context(), id, actor.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) confirmProposal(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "proposalId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid proposalId")
		return
	}
	actor := authUserFromContext(r.Context())
	p, err := s.negotiationSvc.ConfirmCompletion(r.Context(), id, actor.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}
