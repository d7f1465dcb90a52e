package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	appPeriod "github.com/pairplay/pairplay/internal/application/period"
	domainPeriod "github.com/pairplay/pairplay/internal/domain/period"
)

type periodCreateRequest struct {
	Type              domainPeriod.Type `json:"type"`
	StartDate         string            `json:"start_date"`
	WeeklyBaseCredits int               `json:"weekly_base_credits,omitempty"`
	CardsPerWeek      int               `json:"cards_per_week,omitempty"`
}

type grantWeeklyRequest struct {
	Week    int         `json:"week"`
	UserIDs []uuid.UUID `json:"user_ids"`
}

func (s *Server) createPeriod(w http.ResponseWriter, r *http.Request) {
	var req periodCreateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "start_date must be YYYY-MM-DD")
		return
	}
	p, err := s.periodSvc.Create(r.Context(), appPeriod.CreateInput{
		Type:              req.Type,
		StartDate:         start,
		WeeklyBaseCredits: req.WeeklyBaseCredits,
		CardsPerWeek:      req.CardsPerWeek,
	})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) listPeriods(w http.ResponseWriter, r *http.Request) {
	limit, offset := parseLimitOffset(r, 50, 200)
	var status *domainPeriod.Status
	if st := r.URL.Query().Get("status"); st != "" {
		v := domainPeriod.Status(st)
		status = &v
	}
	periods, total, err := s.periodSvc.List(r.Context(), status, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"periods": periods, "total": total})
}

func (s *Server) getActivePeriod(w http.ResponseWriter, r *http.Request) {
	p, err := s.periodSvc.GetActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if p == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no active period")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) getPeriod(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "periodId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid periodId")
		return
	}
	p, err := s.periodSvc.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) listPeriodProposals(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "periodId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid periodId")
		return
	}
	limit, offset := parseLimitOffset(r, 50, 200)
	proposals, total, err := s.negotiationSvc.ListForPeriod(r.Context(), id, limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"proposals": proposals, "total": total})
}

func (s *Server) activatePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "periodId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid periodId")
		return
	}
	p, err := s.periodSvc.Activate(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) completePeriod(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "periodId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid periodId")
		return
	}
	p, err := s.periodSvc.Complete(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) grantWeeklyCredits(w http.ResponseWriter, r *http.Request) {
	id, err := parseUUIDParam(r, "periodId")
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", "invalid periodId")
		return
	}
	var req grantWeeklyRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAM", err.Error())
		return
	}
	count, err := s.periodSvc.GrantWeekly(r.Context(), id, req.Week, req.UserIDs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"period_id": id, "week": req.Week, "grants": count})
}
