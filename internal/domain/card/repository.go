package card

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for catalog cards.
type Repository interface {
	Create(ctx context.Context, card *Card) error
	Update(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, cardID uuid.UUID) (*Card, error)
	Delete(ctx context.Context, cardID uuid.UUID) error
	List(ctx context.Context, enabledOnly bool, limit, offset int) ([]*Card, error)
	Count(ctx context.Context, enabledOnly bool) (int, error)
}
