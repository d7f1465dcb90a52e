package period

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/domain/apperror"
	domain "github.com/pairplay/pairplay/internal/domain/period"
)

// TxRunner runs fn inside one storage transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service manages period lifecycle and base credit grants. Period
// boundaries are supplied by callers; only week arithmetic happens here.
type Service struct {
	repo       domain.Repository
	settlement *appSettlement.Service
	tx         TxRunner
	logger     zerolog.Logger
}

// NewService creates a period service.
func NewService(repo domain.Repository, settlement *appSettlement.Service, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		settlement: settlement,
		tx:         tx,
		logger:     logger.With().Str("service", "period").Logger(),
	}
}

// CreateInput describes a new period.
type CreateInput struct {
	Type              domain.Type
	StartDate         time.Time
	WeeklyBaseCredits int
	CardsPerWeek      int
}

// Create opens a new period in SETUP. Only one period may be active at a
// time, so creation is refused while another is ACTIVE.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Period, error) {
	weeks := in.Type.Weeks()
	if weeks == 0 {
		return nil, &apperror.ValidationError{Message: "unknown period type: " + string(in.Type)}
	}
	if in.WeeklyBaseCredits <= 0 {
		in.WeeklyBaseCredits = 3
	}
	if in.CardsPerWeek <= 0 {
		in.CardsPerWeek = 3
	}
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, &apperror.ValidationError{Message: "an active period already exists"}
	}

	p := &domain.Period{
		PeriodID:          uuid.New(),
		Type:              in.Type,
		Status:            domain.StatusSetup,
		StartDate:         in.StartDate,
		EndDate:           in.StartDate.AddDate(0, 0, weeks*7),
		WeeklyBaseCredits: in.WeeklyBaseCredits,
		CardsPerWeek:      in.CardsPerWeek,
		CreatedAt:         time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().Str("period_id", p.PeriodID.String()).Str("type", string(p.Type)).Msg("period created")
	return p, nil
}

// Activate starts a period. Only SETUP periods may be activated.
func (s *Service) Activate(ctx context.Context, periodID uuid.UUID) (*domain.Period, error) {
	p, err := s.repo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &apperror.NotFoundError{Resource: "period", ID: periodID.String()}
	}
	if p.Status != domain.StatusSetup {
		return nil, &apperror.ValidationError{Message: "only periods in setup can be activated"}
	}
	p.Status = domain.StatusActive
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Complete marks a period done.
func (s *Service) Complete(ctx context.Context, periodID uuid.UUID) (*domain.Period, error) {
	p, err := s.repo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &apperror.NotFoundError{Resource: "period", ID: periodID.String()}
	}
	p.Status = domain.StatusDone
	return p, s.repo.Update(ctx, p)
}

// GrantWeekly pays the period's base credit amount for one week to each
// listed participant through the settlement engine, all within one
// transaction. Participants already paid for that week are skipped, so the
// call is safe to repeat. Returns the number of grants made.
func (s *Service) GrantWeekly(ctx context.Context, periodID uuid.UUID, week int, userIDs []uuid.UUID) (int, error) {
	p, err := s.repo.GetByID(ctx, periodID)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, &apperror.NotFoundError{Resource: "period", ID: periodID.String()}
	}
	if week < 1 || week > p.Type.Weeks() {
		return 0, &apperror.ValidationError{Message: "week index out of range for period"}
	}
	if len(userIDs) == 0 {
		return 0, &apperror.ValidationError{Message: "at least one user is required"}
	}

	count := 0
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, userID := range userIDs {
			granted, err := s.settlement.HasPeriodGrant(ctx, userID, p.PeriodID, week)
			if err != nil {
				return err
			}
			if granted {
				continue
			}
			if _, err := s.settlement.GrantPeriodBase(ctx, userID, p.PeriodID, week, p.WeeklyBaseCredits); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info().Str("period_id", periodID.String()).Int("week", week).Int("grants", count).Msg("weekly credits granted")
	return count, nil
}

// GetActive returns the currently active period, nil when none.
func (s *Service) GetActive(ctx context.Context) (*domain.Period, error) {
	return s.repo.GetActive(ctx)
}

// Get retrieves one period.
func (s *Service) Get(ctx context.Context, periodID uuid.UUID) (*domain.Period, error) {
	p, err := s.repo.GetByID(ctx, periodID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &apperror.NotFoundError{Resource: "period", ID: periodID.String()}
	}
	return p, nil
}

// List lists periods, newest first.
func (s *Service) List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.Period, int, error) {
	periods, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, status)
	if err != nil {
		return nil, 0, err
	}
	return periods, total, nil
}
