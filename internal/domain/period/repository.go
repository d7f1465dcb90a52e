package period

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for periods.
type Repository interface {
	Create(ctx context.Context, period *Period) error
	Update(ctx context.Context, period *Period) error
	GetByID(ctx context.Context, periodID uuid.UUID) (*Period, error)
	GetActive(ctx context.Context) (*Period, error)
	List(ctx context.Context, status *Status, limit, offset int) ([]*Period, error)
	Count(ctx context.Context, status *Status) (int, error)
}
