package period

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/credit"
	domain "github.com/pairplay/pairplay/internal/domain/period"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPeriodRepo struct {
	periods map[uuid.UUID]*domain.Period
}

func newMemPeriodRepo() *memPeriodRepo {
	return &memPeriodRepo{periods: make(map[uuid.UUID]*domain.Period)}
}

func (r *memPeriodRepo) Create(ctx context.Context, p *domain.Period) error {
	cp := *p
	r.periods[p.PeriodID] = &cp
	return nil
}

func (r *memPeriodRepo) Update(ctx context.Context, p *domain.Period) error {
	cp := *p
	r.periods[p.PeriodID] = &cp
	return nil
}

func (r *memPeriodRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Period, error) {
	p, ok := r.periods[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPeriodRepo) GetActive(ctx context.Context) (*domain.Period, error) {
	for _, p := range r.periods {
		if p.Status == domain.StatusActive {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memPeriodRepo) List(ctx context.Context, status *domain.Status, limit, offset int) ([]*domain.Period, error) {
	var out []*domain.Period
	for _, p := range r.periods {
		if status != nil && p.Status != *status {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memPeriodRepo) Count(ctx context.Context, status *domain.Status) (int, error) {
	ps, _ := r.List(ctx, status, 0, 0)
	return len(ps), nil
}

type memCreditRepo struct {
	entries  []*credit.LedgerEntry
	balances map[uuid.UUID]int
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{balances: make(map[uuid.UUID]int)}
}

func (r *memCreditRepo) InsertEntry(ctx context.Context, e *credit.LedgerEntry) error {
	cp := *e
	r.entries = append(r.entries, &cp)
	return nil
}

func (r *memCreditRepo) AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error {
	r.balances[userID] += delta
	return nil
}

func (r *memCreditRepo) SetBalance(ctx context.Context, userID uuid.UUID, balance int) error {
	r.balances[userID] = balance
	return nil
}

func (r *memCreditRepo) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.balances[userID], nil
}

func (r *memCreditRepo) GetBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int, error) {
	return r.balances[userID], nil
}

func (r *memCreditRepo) SumEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	sum := 0
	for _, e := range r.entries {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (r *memCreditRepo) HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error) {
	for _, e := range r.entries {
		if e.UserID == userID && e.Type == credit.EntryPeriodBaseGrant &&
			e.PeriodID != nil && *e.PeriodID == periodID &&
			e.WeekIndex != nil && *e.WeekIndex == week {
			return true, nil
		}
	}
	return false, nil
}

func (r *memCreditRepo) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*credit.LedgerEntry, error) {
	var out []*credit.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memCreditRepo) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	es, _ := r.ListEntries(ctx, userID, 0, 0)
	return len(es), nil
}

func newTestService() (*Service, *memPeriodRepo, *memCreditRepo) {
	periods := newMemPeriodRepo()
	credits := newMemCreditRepo()
	logger := zerolog.Nop()
	settlementSvc := appSettlement.NewService(credits, fakeTx{}, logger)
	return NewService(periods, settlementSvc, fakeTx{}, logger), periods, credits
}

func TestCreateRefusedWhileActive(t *testing.T) {
	svc, periods, _ := newTestService()
	ctx := context.Background()

	active := &domain.Period{PeriodID: uuid.New(), Type: domain.TypeMonth, Status: domain.StatusActive}
	require.NoError(t, periods.Create(ctx, active))

	_, err := svc.Create(ctx, CreateInput{Type: domain.TypeMonth, StartDate: time.Now()})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestActivateOnlySetup(t *testing.T) {
	svc, periods, _ := newTestService()
	ctx := context.Background()

	p := &domain.Period{PeriodID: uuid.New(), Type: domain.TypeMonth, Status: domain.StatusDone}
	require.NoError(t, periods.Create(ctx, p))

	_, err := svc.Activate(ctx, p.PeriodID)
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestGrantWeeklySkipsAlreadyGranted(t *testing.T) {
	svc, periods, credits := newTestService()
	ctx := context.Background()

	p := &domain.Period{
		PeriodID:          uuid.New(),
		Type:              domain.TypeMonth,
		Status:            domain.StatusActive,
		WeeklyBaseCredits: 3,
	}
	require.NoError(t, periods.Create(ctx, p))
	a, b := uuid.New(), uuid.New()

	count, err := svc.GrantWeekly(ctx, p.PeriodID, 1, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// repeating the same week pays nobody twice
	count, err = svc.GrantWeekly(ctx, p.PeriodID, 1, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	balance, _ := credits.GetBalance(ctx, a)
	assert.Equal(t, 3, balance)
	balance, _ = credits.GetBalance(ctx, b)
	assert.Equal(t, 3, balance)

	// a later week pays again
	count, err = svc.GrantWeekly(ctx, p.PeriodID, 2, []uuid.UUID{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGrantWeeklyWeekOutOfRange(t *testing.T) {
	svc, periods, _ := newTestService()
	ctx := context.Background()

	p := &domain.Period{PeriodID: uuid.New(), Type: domain.TypeMonth, Status: domain.StatusActive, WeeklyBaseCredits: 3}
	require.NoError(t, periods.Create(ctx, p))

	_, err := svc.GrantWeekly(ctx, p.PeriodID, 5, []uuid.UUID{uuid.New()})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}
