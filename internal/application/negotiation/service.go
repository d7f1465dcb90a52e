package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/domain/apperror"
	"github.com/pairplay/pairplay/internal/domain/card"
	"github.com/pairplay/pairplay/internal/domain/challenge"
)

// TxRunner runs fn inside one storage transaction. Nested calls join the
// enclosing transaction, so a transition and its settlement commit together.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service drives the proposal negotiation state machine. Every transition
// is validated against the transition table and the actor's role; the two
// currency-moving transitions invoke the settlement engine inside the same
// transaction as the status mutation.
type Service struct {
	proposals  challenge.Repository
	cards      card.Repository
	settlement *appSettlement.Service
	tx         TxRunner
	logger     zerolog.Logger
}

// NewService creates a negotiation service.
func NewService(
	proposals challenge.Repository,
	cards card.Repository,
	settlement *appSettlement.Service,
	tx TxRunner,
	logger zerolog.Logger,
) *Service {
	return &Service{
		proposals:  proposals,
		cards:      cards,
		settlement: settlement,
		tx:         tx,
		logger:     logger.With().Str("service", "negotiation").Logger(),
	}
}

// CreateInput describes a new proposal. Exactly one of CardID and Details
// must be set.
type CreateInput struct {
	ProposerID  uuid.UUID
	RecipientID uuid.UUID
	PeriodID    uuid.UUID
	WeekIndex   int
	CardID      *uuid.UUID
	Details     *challenge.Details
}

// Create persists a new PROPOSED proposal. Proposing is free; credits move
// only at acceptance.
func (s *Service) Create(ctx context.Context, in CreateInput) (*challenge.Proposal, error) {
	if in.ProposerID == uuid.Nil || in.RecipientID == uuid.Nil {
		return nil, &apperror.ValidationError{Message: "proposer and recipient are required"}
	}
	if in.ProposerID == in.RecipientID {
		return nil, &apperror.ValidationError{Message: "proposer and recipient must differ"}
	}
	if in.PeriodID == uuid.Nil {
		return nil, &apperror.ValidationError{Message: "period is required"}
	}
	if in.WeekIndex < 1 {
		return nil, &apperror.ValidationError{Message: "week index must be positive"}
	}
	if (in.CardID == nil) == (in.Details == nil) {
		return nil, &apperror.ValidationError{Message: "provide either a card reference or custom details, not both"}
	}
	if in.CardID != nil {
		c, err := s.cards.GetByID(ctx, *in.CardID)
		if err != nil {
			return nil, err
		}
		if c == nil || !c.Enabled {
			return nil, &apperror.NotFoundError{Resource: "card", ID: in.CardID.String()}
		}
	}
	if in.Details != nil {
		if err := in.Details.Validate(); err != nil {
			return nil, err
		}
	}

	p := &challenge.Proposal{
		ProposalID:  uuid.New(),
		PeriodID:    in.PeriodID,
		WeekIndex:   in.WeekIndex,
		ProposerID:  in.ProposerID,
		RecipientID: in.RecipientID,
		CardID:      in.CardID,
		Details:     in.Details,
		Status:      challenge.StatusProposed,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("proposal_id", p.ProposalID.String()).
		Str("proposer_id", p.ProposerID.String()).
		Msg("proposal created")
	return p, nil
}

// Respond records the recipient's decision. Accepting requires a credit
// cost in [1,7]; the proposer is debited atomically with the status change.
func (s *Service) Respond(ctx context.Context, proposalID, actorID uuid.UUID, decision challenge.Status, cost *int) (*challenge.Proposal, error) {
	var result *challenge.Proposal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.proposals.GetByIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if p == nil {
			return &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
		}
		if p.RecipientID != actorID {
			return &apperror.AuthorizationError{Message: "only the recipient may respond"}
		}
		switch decision {
		case challenge.StatusAccepted, challenge.StatusMaybeLater, challenge.StatusRejected:
		default:
			return &apperror.ValidationError{Message: "decision must be ACCEPTED, MAYBE_LATER or REJECTED"}
		}
		if !challenge.CanTransition(p.Status, decision) {
			return &challenge.InvalidTransitionError{From: p.Status, To: decision}
		}

		if decision == challenge.StatusAccepted {
			if cost == nil {
				return &apperror.ValidationError{Message: "credit cost is required when accepting"}
			}
			if *cost < challenge.MinCreditCost || *cost > challenge.MaxCreditCost {
				return &apperror.ValidationError{Message: "credit cost must be between 1 and 7"}
			}
			if _, err := s.settlement.DeductProposalCost(ctx, p.ProposerID, p.ProposalID, *cost); err != nil {
				return err
			}
			p.CreditCost = cost
		}

		now := time.Now().UTC()
		p.Status = decision
		p.RespondedAt = &now
		if err := s.proposals.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("proposal_id", proposalID.String()).
		Str("decision", string(decision)).
		Msg("proposal response recorded")
	return result, nil
}

// MarkCompleted records the recipient's completion claim, pending the
// proposer's confirmation. No currency moves here.
func (s *Service) MarkCompleted(ctx context.Context, proposalID, actorID uuid.UUID) (*challenge.Proposal, error) {
	var result *challenge.Proposal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.proposals.GetByIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if p == nil {
			return &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
		}
		if p.RecipientID != actorID {
			return &apperror.AuthorizationError{Message: "only the recipient may mark completion"}
		}
		if !challenge.CanTransition(p.Status, challenge.StatusCompletedPending) {
			return &challenge.InvalidTransitionError{From: p.Status, To: challenge.StatusCompletedPending}
		}
		now := time.Now().UTC()
		p.Status = challenge.StatusCompletedPending
		p.CompletedRequestedAt = &now
		if err := s.proposals.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmCompletion records the proposer's confirmation and awards the
// stored credit cost to the recipient atomically with the status change.
func (s *Service) ConfirmCompletion(ctx context.Context, proposalID, actorID uuid.UUID) (*challenge.Proposal, error) {
	var result *challenge.Proposal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.proposals.GetByIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if p == nil {
			return &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
		}
		if p.ProposerID != actorID {
			return &apperror.AuthorizationError{Message: "only the proposer may confirm completion"}
		}
		if !challenge.CanTransition(p.Status, challenge.StatusCompletedConfirmed) {
			return &challenge.InvalidTransitionError{From: p.Status, To: challenge.StatusCompletedConfirmed}
		}
		if p.CreditCost == nil {
			// Unreachable through the transition table; checked anyway.
			s.logger.Error().
				Str("proposal_id", p.ProposalID.String()).
				Msg("proposal pending confirmation without stored cost")
			return &apperror.InvariantViolationError{Message: "no credit cost stored for proposal"}
		}
		if _, err := s.settlement.AwardCompletionReward(ctx, p.RecipientID, p.ProposalID, *p.CreditCost); err != nil {
			return err
		}
		now := time.Now().UTC()
		p.Status = challenge.StatusCompletedConfirmed
		p.CompletedConfirmedAt = &now
		if err := s.proposals.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("proposal_id", proposalID.String()).
		Int("reward", *result.CreditCost).
		Msg("completion confirmed")
	return result, nil
}

// UpdateDetails replaces the details of a custom proposal before
// acceptance. Tier invariants are re-validated on every edit.
func (s *Service) UpdateDetails(ctx context.Context, proposalID, actorID uuid.UUID, details *challenge.Details) (*challenge.Proposal, error) {
	if details == nil {
		return nil, &apperror.ValidationError{Message: "details are required"}
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	var result *challenge.Proposal
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.proposals.GetByIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if p == nil {
			return &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
		}
		if p.ProposerID != actorID {
			return &apperror.AuthorizationError{Message: "only the proposer may edit"}
		}
		if !p.Editable() {
			return &challenge.InvalidTransitionError{From: p.Status, To: p.Status}
		}
		if !p.IsCustom() {
			return &apperror.ValidationError{Message: "only custom proposals can be edited"}
		}
		p.Details = details
		if err := s.proposals.Update(ctx, p); err != nil {
			return err
		}
		result = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a custom proposal before acceptance. Terminal proposals
// are never deleted.
func (s *Service) Delete(ctx context.Context, proposalID, actorID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.proposals.GetByIDForUpdate(ctx, proposalID)
		if err != nil {
			return err
		}
		if p == nil {
			return &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
		}
		if p.ProposerID != actorID {
			return &apperror.AuthorizationError{Message: "only the proposer may delete"}
		}
		if !p.Editable() {
			return &challenge.InvalidTransitionError{From: p.Status, To: p.Status}
		}
		if !p.IsCustom() {
			return &apperror.ValidationError{Message: "only custom proposals can be deleted"}
		}
		return s.proposals.Delete(ctx, proposalID)
	})
}

// Get retrieves one proposal.
func (s *Service) Get(ctx context.Context, proposalID uuid.UUID) (*challenge.Proposal, error) {
	p, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &apperror.NotFoundError{Resource: "proposal", ID: proposalID.String()}
	}
	return p, nil
}

// ListForUser lists proposals where the user is recipient (default) or
// proposer, optionally filtered by status.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, asRecipient bool, status *challenge.Status, limit, offset int) ([]*challenge.Proposal, int, error) {
	filter := challenge.Filter{Status: status}
	if asRecipient {
		filter.RecipientID = &userID
	} else {
		filter.ProposerID = &userID
	}
	return s.list(ctx, filter, limit, offset)
}

// ListForPeriod lists all proposals in a period.
func (s *Service) ListForPeriod(ctx context.Context, periodID uuid.UUID, limit, offset int) ([]*challenge.Proposal, int, error) {
	return s.list(ctx, challenge.Filter{PeriodID: &periodID}, limit, offset)
}

func (s *Service) list(ctx context.Context, filter challenge.Filter, limit, offset int) ([]*challenge.Proposal, int, error) {
	proposals, err := s.proposals.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.proposals.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}
