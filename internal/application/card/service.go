package card

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pairplay/pairplay/internal/domain/apperror"
	domain "github.com/pairplay/pairplay/internal/domain/card"
)

// Service manages the catalog of reusable challenge cards.
type Service struct {
	repo   domain.Repository
	logger zerolog.Logger
}

// NewService creates a card service.
func NewService(repo domain.Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("service", "card").Logger(),
	}
}

// CreateInput defines card creation input.
type CreateInput struct {
	Title       string
	Description *string
	CreatedBy   *uuid.UUID
}

// Create adds a card to the catalog, enabled by default.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Card, error) {
	if err := domain.ValidateTitle(input.Title); err != nil {
		return nil, &apperror.ValidationError{Message: err.Error()}
	}
	c := &domain.Card{
		CardID:      uuid.New(),
		Title:       input.Title,
		Description: input.Description,
		Enabled:     true,
		CreatedBy:   input.CreatedBy,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info().Str("card_id", c.CardID.String()).Msg("card created")
	return c, nil
}

// UpdateInput defines card update input.
type UpdateInput struct {
	Title       *string
	Description *string
	Enabled     *bool
}

// Update modifies catalog card fields.
func (s *Service) Update(ctx context.Context, cardID uuid.UUID, input UpdateInput) (*domain.Card, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &apperror.NotFoundError{Resource: "card", ID: cardID.String()}
	}
	if input.Title != nil {
		if err := domain.ValidateTitle(*input.Title); err != nil {
			return nil, &apperror.ValidationError{Message: err.Error()}
		}
		c.Title = *input.Title
	}
	if input.Description != nil {
		c.Description = input.Description
	}
	if input.Enabled != nil {
		c.Enabled = *input.Enabled
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a card from the catalog. Existing proposals keep their
// reference.
func (s *Service) Delete(ctx context.Context, cardID uuid.UUID) error {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return err
	}
	if c == nil {
		return &apperror.NotFoundError{Resource: "card", ID: cardID.String()}
	}
	return s.repo.Delete(ctx, cardID)
}

// Get retrieves one card.
func (s *Service) Get(ctx context.Context, cardID uuid.UUID) (*domain.Card, error) {
	c, err := s.repo.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, &apperror.NotFoundError{Resource: "card", ID: cardID.String()}
	}
	return c, nil
}

// List lists catalog cards with the total count.
func (s *Service) List(ctx context.Context, enabledOnly bool, limit, offset int) ([]*domain.Card, int, error) {
	cards, err := s.repo.List(ctx, enabledOnly, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, enabledOnly)
	if err != nil {
		return nil, 0, err
	}
	return cards, total, nil
}
