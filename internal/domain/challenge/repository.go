package challenge

import (
	"context"

	"github.com/google/uuid"
)

// Filter controls proposal listing.
type Filter struct {
	ProposerID  *uuid.UUID
	RecipientID *uuid.UUID
	PeriodID    *uuid.UUID
	Status      *Status
}

// Repository defines persistence for proposals.
type Repository interface {
	Create(ctx context.Context, proposal *Proposal) error
	GetByID(ctx context.Context, proposalID uuid.UUID) (*Proposal, error)
	// GetByIDForUpdate locks the proposal row for the rest of the enclosing
	// transaction so that concurrent transitions serialize on it.
	GetByIDForUpdate(ctx context.Context, proposalID uuid.UUID) (*Proposal, error)
	Update(ctx context.Context, proposal *Proposal) error
	Delete(ctx context.Context, proposalID uuid.UUID) error
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Proposal, error)
	Count(ctx context.Context, filter Filter) (int, error)
}
