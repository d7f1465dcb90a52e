package settlement

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/credit"
)

// MockRepository is a mock implementation of credit.Repository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) InsertEntry(ctx context.Context, entry *credit.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockRepository) AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error {
	args := m.Called(ctx, userID, delta)
	return args.Error(0)
}

func (m *MockRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance int) error {
	args := m.Called(ctx, userID, balance)
	return args.Error(0)
}

func (m *MockRepository) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) GetBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) SumEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error) {
	args := m.Called(ctx, userID, periodID, week)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*credit.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*credit.LedgerEntry), args.Error(1)
}

func (m *MockRepository) CountEntries(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo credit.Repository) *Service {
	return NewService(repo, passthroughTx{}, zerolog.Nop())
}

func TestAppendWritesEntryAndBalanceTogether(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()

	repo.On("InsertEntry", mock.Anything, mock.MatchedBy(func(e *credit.LedgerEntry) bool {
		return e.UserID == userID && e.Type == credit.EntryInitialGrant && e.Amount == 10 && e.EntryID != uuid.Nil
	})).Return(nil)
	repo.On("AddToBalance", mock.Anything, userID, 10).Return(nil)

	entry, err := svc.GrantInitial(context.Background(), userID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Amount)
	repo.AssertExpectations(t)
}

func TestAppendRejectsZeroAmount(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.Append(context.Background(), AppendInput{
		UserID: uuid.New(),
		Type:   credit.EntryAdminAdjustment,
		Amount: 0,
	})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
	repo.AssertNotCalled(t, "InsertEntry")
}

func TestAppendRejectsUnknownEntryType(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.Append(context.Background(), AppendInput{
		UserID: uuid.New(),
		Type:   credit.EntryType("BONUS"),
		Amount: 5,
	})
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestDeductProposalCostGatesOnBalance(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()
	proposalID := uuid.New()

	repo.On("GetBalanceForUpdate", mock.Anything, userID).Return(2, nil)

	_, err := svc.DeductProposalCost(context.Background(), userID, proposalID, 3)
	var funds *credit.InsufficientFundsError
	require.ErrorAs(t, err, &funds)
	assert.Equal(t, 3, funds.Required)
	assert.Equal(t, 2, funds.Available)
	repo.AssertNotCalled(t, "InsertEntry")
	repo.AssertNotCalled(t, "AddToBalance")
}

func TestDeductProposalCostDebitsNegative(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()
	proposalID := uuid.New()

	repo.On("GetBalanceForUpdate", mock.Anything, userID).Return(5, nil)
	repo.On("InsertEntry", mock.Anything, mock.MatchedBy(func(e *credit.LedgerEntry) bool {
		return e.Amount == -3 && e.Type == credit.EntryProposalCost && e.ProposalID != nil && *e.ProposalID == proposalID
	})).Return(nil)
	repo.On("AddToBalance", mock.Anything, userID, -3).Return(nil)

	entry, err := svc.DeductProposalCost(context.Background(), userID, proposalID, 3)
	require.NoError(t, err)
	assert.Equal(t, -3, entry.Amount)
	repo.AssertExpectations(t)
}

func TestAdjustRequiresNote(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	_, err := svc.Adjust(context.Background(), uuid.New(), -2, "")
	var validation *apperror.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestRebuildBalanceOverwritesCache(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()

	// cache diverged from the ledger; rebuild wins
	repo.On("GetBalance", mock.Anything, userID).Return(7, nil)
	repo.On("SumEntries", mock.Anything, userID).Return(4, nil)
	repo.On("SetBalance", mock.Anything, userID, 4).Return(nil)

	sum, err := svc.RebuildBalance(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 4, sum)
	repo.AssertExpectations(t)
}

func TestHasSufficientFunds(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)
	userID := uuid.New()

	repo.On("GetBalance", mock.Anything, userID).Return(3, nil)

	ok, err := svc.HasSufficientFunds(context.Background(), userID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.HasSufficientFunds(context.Background(), userID, 4)
	require.NoError(t, err)
	assert.False(t, ok)
}
