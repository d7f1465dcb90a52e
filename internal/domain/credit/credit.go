package credit

import (
	"time"

	"github.com/google/uuid"

	"github.com/pairplay/pairplay/internal/domain/apperror"
)

// EntryType is the business cause of a ledger entry.
type EntryType string

const (
	EntryInitialGrant     EntryType = "INITIAL_GRANT"
	EntryPeriodBaseGrant  EntryType = "PERIOD_BASE_GRANT"
	EntryProposalCost     EntryType = "PROPOSAL_COST"
	EntryCompletionReward EntryType = "COMPLETION_REWARD"
	EntryAdminAdjustment  EntryType = "ADMIN_ADJUSTMENT"
)

// ValidateEntryType checks that a type is one of the declared causes.
func ValidateEntryType(t EntryType) error {
	switch t {
	case EntryInitialGrant, EntryPeriodBaseGrant, EntryProposalCost,
		EntryCompletionReward, EntryAdminAdjustment:
		return nil
	default:
		return &apperror.ValidationError{Message: "unknown ledger entry type: " + string(t)}
	}
}

// LedgerEntry is one immutable signed currency movement for one participant.
// The ledger is the source of truth; entries are never updated or deleted.
type LedgerEntry struct {
	ID         int64      `json:"id"`
	EntryID    uuid.UUID  `json:"entryId"`
	UserID     uuid.UUID  `json:"userId"`
	PeriodID   *uuid.UUID `json:"periodId,omitempty"`
	ProposalID *uuid.UUID `json:"proposalId,omitempty"`
	// WeekIndex is set on PERIOD_BASE_GRANT entries and keys their
	// once-per-week idempotence.
	WeekIndex *int      `json:"weekIndex,omitempty"`
	Type      EntryType `json:"type"`
	Amount    int       `json:"amount"`
	Note      *string   `json:"note,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Balance is the cached running total for one participant. It is derived
// state: recomputable at any time as the sum of that participant's entries.
type Balance struct {
	ID      int64     `json:"id"`
	UserID  uuid.UUID `json:"userId"`
	Balance int       `json:"balance"`
}
