package credit

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for the ledger and the balance cache.
// The settlement service is the only caller of the write methods; no other
// component writes either table.
type Repository interface {
	// InsertEntry appends one immutable ledger row.
	InsertEntry(ctx context.Context, entry *LedgerEntry) error
	// AddToBalance applies delta to the cached balance, creating the row at
	// zero first if absent. The upsert is additive so concurrent settlements
	// for the same participant serialize on the balance row.
	AddToBalance(ctx context.Context, userID uuid.UUID, delta int) error
	// SetBalance overwrites the cached balance. Used only by replay rebuild.
	SetBalance(ctx context.Context, userID uuid.UUID, balance int) error
	// GetBalance returns the cached balance, zero when no row exists.
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	// GetBalanceForUpdate locks the balance row for the rest of the
	// enclosing transaction. Used to gate debits.
	GetBalanceForUpdate(ctx context.Context, userID uuid.UUID) (int, error)
	// SumEntries recomputes the balance from the ledger.
	SumEntries(ctx context.Context, userID uuid.UUID) (int, error)
	// HasPeriodGrant reports whether a PERIOD_BASE_GRANT entry already
	// exists for the user, period and week.
	HasPeriodGrant(ctx context.Context, userID, periodID uuid.UUID, week int) (bool, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*LedgerEntry, error)
	CountEntries(ctx context.Context, userID uuid.UUID) (int, error)
}
