package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	appAuth "github.com/pairplay/pairplay/internal/application/auth"
	appCard "github.com/pairplay/pairplay/internal/application/card"
	appNegotiation "github.com/pairplay/pairplay/internal/application/negotiation"
	appPeriod "github.com/pairplay/pairplay/internal/application/period"
	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	appUser "github.com/pairplay/pairplay/internal/application/user"
	domainUser "github.com/pairplay/pairplay/internal/domain/user"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authSvc             *appAuth.Service
	userSvc             *appUser.Service
	negotiationSvc      *appNegotiation.Service
	settlementSvc       *appSettlement.Service
	periodSvc           *appPeriod.Service
	cardSvc             *appCard.Service
	sessionCookieName   string
	sessionCookieSecure bool
	currencyName        string
}

func NewServer(
	authSvc *appAuth.Service,
	userSvc *appUser.Service,
	negotiationSvc *appNegotiation.Service,
	settlementSvc *appSettlement.Service,
	periodSvc *appPeriod.Service,
	cardSvc *appCard.Service,
	sessionCookieName string,
	sessionCookieSecure bool,
	currencyName string,
) *Server {
	return &Server{
		authSvc:             authSvc,
		userSvc:             userSvc,
		negotiationSvc:      negotiationSvc,
		settlementSvc:       settlementSvc,
		periodSvc:           periodSvc,
		cardSvc:             cardSvc,
		sessionCookieName:   sessionCookieName,
		sessionCookieSecure: sessionCookieSecure,
		currencyName:        currencyName,
	}
}

// Router builds the HTTP router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/bootstrap", s.bootstrapAdmin)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.logout)
				r.Get("/me", s.me)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Route("/proposals", func(r chi.Router) {
				r.Post("/", s.createProposal)
				r.Get("/", s.listProposals)
				r.Get("/{proposalId}", s.getProposal)
				r.Patch("/{proposalId}", s.updateProposal)
				r.Delete("/{proposalId}", s.deleteProposal)
				r.Post("/{proposalId}/respond", s.respondProposal)
				r.Post("/{proposalId}/complete", s.completeProposal)
				r.Post("/{proposalId}/confirm", s.confirmProposal)
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/balance", s.getBalance)
				r.Get("/ledger", s.getLedger)
			})

			r.Route("/periods", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/", s.createPeriod)
				r.Get("/", s.listPeriods)
				r.Get("/active", s.getActivePeriod)
				r.Get("/{periodId}", s.getPeriod)
				r.Get("/{periodId}/proposals", s.listPeriodProposals)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/{periodId}/activate", s.activatePeriod)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/{periodId}/complete", s.completePeriod)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/{periodId}/grants", s.grantWeeklyCredits)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/", s.listCards)
				r.Get("/{cardId}", s.getCard)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Post("/", s.createCard)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Patch("/{cardId}", s.updateCard)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Delete("/{cardId}", s.deleteCard)
			})

			r.Route("/users", func(r chi.Router) {
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Get("/", s.listUsers)
				r.Get("/{userId}", s.getUser)
				r.Post("/{userId}/link", s.linkPartner)
				r.Put("/{userId}/password", s.setUserPassword)
				r.With(s.requireRole(string(domainUser.RoleAdmin))).Patch("/{userId}/status", s.setUserStatus)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(s.requireRole(string(domainUser.RoleAdmin)))
				r.Post("/adjustments", s.createAdjustment)
				r.Get("/credits/{userId}/balance", s.getUserBalance)
				r.Get("/credits/{userId}/ledger", s.getUserLedger)
				r.Post("/credits/{userId}/rebuild", s.rebuildBalance)
			})
		})
	})

	return r
}

// Helpers
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   code,
		"message": message,
	})
}

func parseUUIDParam(r *http.Request, key string) (uuid.UUID, error) {
	val := chi.URLParam(r, key)
	return uuid.Parse(val)
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseLimitOffset(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	offset := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil {
			offset = o
		}
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
