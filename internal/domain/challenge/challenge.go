package challenge

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pairplay/pairplay/internal/domain/apperror"
)

// Status describes proposal negotiation state.
type Status string

const (
	StatusProposed           Status = "PROPOSED"
	StatusAccepted           Status = "ACCEPTED"
	StatusMaybeLater         Status = "MAYBE_LATER"
	StatusRejected           Status = "REJECTED"
	StatusCompletedPending   Status = "COMPLETED_PENDING_CONFIRMATION"
	StatusCompletedConfirmed Status = "COMPLETED_CONFIRMED"
	// StatusExpired is a reserved terminal value. No transition produces it;
	// it exists for a future time-based expiry sweep.
	StatusExpired Status = "EXPIRED"
)

// transitions is the authoritative transition table. Any pair not listed
// here is rejected, regardless of caller intent.
var transitions = map[Status]map[Status]bool{
	StatusProposed: {
		StatusAccepted:   true,
		StatusMaybeLater: true,
		StatusRejected:   true,
	},
	StatusAccepted: {
		StatusCompletedPending: true,
	},
	StatusCompletedPending: {
		StatusCompletedConfirmed: true,
	},
}

// CanTransition reports whether from -> to is a legal transition.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// ValidateStatus checks that a status is one of the declared values.
func ValidateStatus(s Status) error {
	switch s {
	case StatusProposed, StatusAccepted, StatusMaybeLater, StatusRejected,
		StatusCompletedPending, StatusCompletedConfirmed, StatusExpired:
		return nil
	default:
		return &apperror.ValidationError{Message: "unknown status: " + string(s)}
	}
}

// Credit cost bounds set by the recipient at acceptance.
const (
	MinCreditCost = 1
	MaxCreditCost = 7
)

// Tier describes the negotiation complexity of a custom challenge.
type Tier string

const (
	TierSimple Tier = "SIMPLE"
	TierGuided Tier = "GUIDED"
	TierCustom Tier = "CUSTOM"
)

// RewardType describes the optional extra reward on a custom-tier challenge.
type RewardType string

const (
	RewardNone       RewardType = "NONE"
	RewardCredits    RewardType = "CREDITS"
	RewardCoupon     RewardType = "COUPON"
	RewardChooseNext RewardType = "CHOOSE_NEXT"
)

// Reward is a free-form reward descriptor attached to a custom-tier challenge.
type Reward struct {
	Type    RewardType `json:"type"`
	Details *string    `json:"details,omitempty"`
}

// Details is the proposer-authored content of a non-catalog challenge.
// Construct through one of the New*Details constructors so the per-tier
// field requirements hold by construction.
type Details struct {
	Tier         Tier     `json:"tier"`
	Title        string   `json:"title"`
	Description  *string  `json:"description,omitempty"`
	WhyProposing *string  `json:"whyProposing,omitempty"`
	Boundary     *string  `json:"boundary,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Duration     *string  `json:"duration,omitempty"`
	Boundaries   []string `json:"boundaries,omitempty"`
	Reward       *Reward  `json:"reward,omitempty"`
}

// NewSimpleDetails builds a simple-tier challenge: title only, free-form.
func NewSimpleDetails(title string, description *string) (*Details, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &apperror.ValidationError{Message: "title is required"}
	}
	return &Details{Tier: TierSimple, Title: title, Description: description}, nil
}

// NewGuidedDetails builds a guided-tier challenge. The boundary is mandatory.
func NewGuidedDetails(title string, description, whyProposing *string, boundary string) (*Details, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &apperror.ValidationError{Message: "title is required"}
	}
	boundary = strings.TrimSpace(boundary)
	if boundary == "" {
		return nil, &apperror.ValidationError{Message: "guided challenges require a boundary"}
	}
	return &Details{
		Tier:         TierGuided,
		Title:        title,
		Description:  description,
		WhyProposing: whyProposing,
		Boundary:     &boundary,
	}, nil
}

// NewCustomDetails builds a custom-tier challenge. At least one boundary is
// mandatory; location, duration and reward are optional refinements.
func NewCustomDetails(title string, description, location, duration *string, boundaries []string, reward *Reward) (*Details, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &apperror.ValidationError{Message: "title is required"}
	}
	cleaned := make([]string, 0, len(boundaries))
	for _, b := range boundaries {
		b = strings.TrimSpace(b)
		if b != "" {
			cleaned = append(cleaned, b)
		}
	}
	if len(cleaned) == 0 {
		return nil, &apperror.ValidationError{Message: "custom challenges require at least one boundary"}
	}
	if reward != nil {
		if err := validateRewardType(reward.Type); err != nil {
			return nil, err
		}
	}
	return &Details{
		Tier:        TierCustom,
		Title:       title,
		Description: description,
		Location:    location,
		Duration:    duration,
		Boundaries:  cleaned,
		Reward:      reward,
	}, nil
}

// Validate re-checks the per-tier invariants. Used on edits, where details
// arrive already assembled.
func (d *Details) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &apperror.ValidationError{Message: "title is required"}
	}
	switch d.Tier {
	case TierSimple:
		return nil
	case TierGuided:
		if d.Boundary == nil || strings.TrimSpace(*d.Boundary) == "" {
			return &apperror.ValidationError{Message: "guided challenges require a boundary"}
		}
		return nil
	case TierCustom:
		if len(d.Boundaries) == 0 {
			return &apperror.ValidationError{Message: "custom challenges require at least one boundary"}
		}
		if d.Reward != nil {
			return validateRewardType(d.Reward.Type)
		}
		return nil
	default:
		return &apperror.ValidationError{Message: "unknown tier: " + string(d.Tier)}
	}
}

func validateRewardType(t RewardType) error {
	switch t {
	case RewardNone, RewardCredits, RewardCoupon, RewardChooseNext:
		return nil
	default:
		return &apperror.ValidationError{Message: "unknown reward type: " + string(t)}
	}
}

// Proposal is one challenge negotiation instance between two participants.
// Exactly one of CardID and Details is set.
type Proposal struct {
	ID          int64      `json:"id"`
	ProposalID  uuid.UUID  `json:"proposalId"`
	PeriodID    uuid.UUID  `json:"periodId"`
	WeekIndex   int        `json:"weekIndex"`
	ProposerID  uuid.UUID  `json:"proposerId"`
	RecipientID uuid.UUID  `json:"recipientId"`
	CardID      *uuid.UUID `json:"cardId,omitempty"`
	Details     *Details   `json:"details,omitempty"`
	// CreditCost is nil until acceptance and immutable afterwards.
	CreditCost           *int       `json:"creditCost,omitempty"`
	Status               Status     `json:"status"`
	CreatedAt            time.Time  `json:"createdAt"`
	RespondedAt          *time.Time `json:"respondedAt,omitempty"`
	CompletedRequestedAt *time.Time `json:"completedRequestedAt,omitempty"`
	CompletedConfirmedAt *time.Time `json:"completedConfirmedAt,omitempty"`
}

// IsCustom reports whether the proposal carries proposer-authored details
// rather than a catalog card reference.
func (p *Proposal) IsCustom() bool {
	return p.CardID == nil
}

// Editable reports whether the proposer may still change or delete the
// proposal. Edits stop at acceptance.
func (p *Proposal) Editable() bool {
	return p.Status == StatusProposed || p.Status == StatusMaybeLater
}
