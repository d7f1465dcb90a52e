package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/credit"
)

// TxRunner runs fn inside one storage transaction. Nested calls join the
// enclosing transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the settlement engine: the only writer of the credit ledger
// and the balance cache. Every balance change is caused by exactly one
// ledger entry appended in the same transaction.
type Service struct {
	repo   credit.Repository
	tx     TxRunner
	logger zerolog.Logger
}

// NewService creates a settlement service.
func NewService(repo credit.Repository, tx TxRunner, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		tx:     tx,
		logger: logger.With().Str("service", "settlement").Logger(),
	}
}

// AppendInput describes one ledger append.
type AppendInput struct {
	UserID     uuid.UUID
	Type       credit.EntryType
	Amount     int
	PeriodID   *uuid.UUID
	ProposalID *uuid.UUID
	WeekIndex  *int
	Note       *string
}

// Append is the sole write primitive: it inserts the immutable ledger row
// and applies the amount to the cached balance atomically.
func (s *Service) Append(ctx context.Context, in AppendInput) (*credit.LedgerEntry, error) {
	if in.UserID == uuid.Nil {
		return nil, &apperror.ValidationError{Message: "user id is required"}
	}
	if err := credit.ValidateEntryType(in.Type); err != nil {
		return nil, err
	}
	if in.Amount == 0 {
		return nil, &apperror.ValidationError{Message: "amount must not be zero"}
	}

	entry := &credit.LedgerEntry{
		EntryID:    uuid.New(),
		UserID:     in.UserID,
		PeriodID:   in.PeriodID,
		ProposalID: in.ProposalID,
		WeekIndex:  in.WeekIndex,
		Type:       in.Type,
		Amount:     in.Amount,
		Note:       in.Note,
		CreatedAt:  time.Now().UTC(),
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.InsertEntry(ctx, entry); err != nil {
			return err
		}
		return s.repo.AddToBalance(ctx, in.UserID, in.Amount)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("user_id", in.UserID.String()).
		Str("type", string(in.Type)).
		Int("amount", in.Amount).
		Msg("ledger entry appended")
	return entry, nil
}

// GetBalance returns the cached balance, zero for participants with no
// ledger history.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.GetBalance(ctx, userID)
}

// HasSufficientFunds reports whether the participant can cover amount.
func (s *Service) HasSufficientFunds(ctx context.Context, userID uuid.UUID, amount int) (bool, error) {
	balance, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return false, err
	}
	return balance >= amount, nil
}

// GrantInitial credits a newly registered participant.
func (s *Service) GrantInitial(ctx context.Context, userID uuid.UUID, amount int) (*credit.LedgerEntry, error) {
	if amount <= 0 {
		return nil, &apperror.ValidationError{Message: "grant amount must be positive"}
	}
	note := "initial grant"
	return s.Append(ctx, AppendInput{
		UserID: userID,
		Type:   credit.EntryInitialGrant,
		Amount: amount,
		Note:   &note,
	})
}

// GrantPeriodBase credits the per-week base allowance for a period.
func (s *Service) GrantPeriodBase(ctx context.Context, userID, periodID uuid.UUID, week, amount int) (*credit.LedgerEntry, error) {
	if amount <= 0 {
		return nil, &apperror.ValidationError{Message: "grant amount must be positive"}
	}
	if week < 1 {
		return nil, &apperror.ValidationError{Message: "week index must be positive"}
	}
	note := "weekly base credits"
	return s.Append(ctx, AppendInput{
		UserID:    userID,
		Type:      credit.EntryPeriodBaseGrant,
		Amount:    amount,
		PeriodID:  &periodID,
		WeekIndex: &week,
		Note:      &note,
	})
}

// HasPeriodGrant reports whether the user already received the base grant
// for the given period week.
func (s *Service) HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error) {
	return s.repo.HasPeriodGrant(ctx, userID, periodID, week)
}

// DeductProposalCost debits the proposer at acceptance. It gates on the
// available balance inside the transaction, so a racing debit for the same
// participant cannot overdraw.
func (s *Service) DeductProposalCost(ctx context.Context, userID, proposalID uuid.UUID, cost int) (*credit.LedgerEntry, error) {
	if cost <= 0 {
		return nil, &apperror.ValidationError{Message: "cost must be positive"}
	}
	var entry *credit.LedgerEntry
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		balance, err := s.repo.GetBalanceForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if balance < cost {
			return &credit.InsufficientFundsError{
				UserID:    userID.String(),
				Required:  cost,
				Available: balance,
			}
		}
		note := "proposal cost"
		entry, err = s.Append(ctx, AppendInput{
			UserID:     userID,
			Type:       credit.EntryProposalCost,
			Amount:     -cost,
			ProposalID: &proposalID,
			Note:       &note,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// AwardCompletionReward credits the recipient at confirmed completion.
func (s *Service) AwardCompletionReward(ctx context.Context, userID, proposalID uuid.UUID, reward int) (*credit.LedgerEntry, error) {
	if reward <= 0 {
		return nil, &apperror.ValidationError{Message: "reward must be positive"}
	}
	note := "completion reward"
	return s.Append(ctx, AppendInput{
		UserID:     userID,
		Type:       credit.EntryCompletionReward,
		Amount:     reward,
		ProposalID: &proposalID,
		Note:       &note,
	})
}

// Adjust applies a manual correction. Reachable only through the admin
// path, never through the negotiation flow.
func (s *Service) Adjust(ctx context.Context, userID uuid.UUID, amount int, note string) (*credit.LedgerEntry, error) {
	if note == "" {
		return nil, &apperror.ValidationError{Message: "adjustment note is required"}
	}
	return s.Append(ctx, AppendInput{
		UserID: userID,
		Type:   credit.EntryAdminAdjustment,
		Amount: amount,
		Note:   &note,
	})
}

// Ledger lists a participant's entries, newest first, with the total count.
func (s *Service) Ledger(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*credit.LedgerEntry, int, error) {
	entries, err := s.repo.ListEntries(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountEntries(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// RebuildBalance replays the ledger and overwrites the cache. The result
// must equal the cached value at any quiescent point; a mismatch before the
// rebuild indicates a bug upstream.
func (s *Service) RebuildBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	var sum int
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		cached, err := s.repo.GetBalance(ctx, userID)
		if err != nil {
			return err
		}
		sum, err = s.repo.SumEntries(ctx, userID)
		if err != nil {
			return err
		}
		if cached != sum {
			s.logger.Error().
				Str("user_id", userID.String()).
				Int("cached", cached).
				Int("computed", sum).
				Msg("balance cache diverged from ledger")
		}
		return s.repo.SetBalance(ctx, userID, sum)
	})
	if err != nil {
		return 0, err
	}
	return sum, nil
}
