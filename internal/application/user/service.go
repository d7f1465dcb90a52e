package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	appSettlement "github.com/pairplay/pairplay/internal/application/settlement"
	"github.com/pairplay/pairplay/internal/domain/apperror"
	domain "github.com/pairplay/pairplay/internal/domain/user"
)

// TxRunner runs fn inside one storage transaction.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service handles participant management. Registration and the initial
// credit grant commit together.
type Service struct {
	repo         domain.Repository
	settlement   *appSettlement.Service
	tx           TxRunner
	initialGrant int
	logger       zerolog.Logger
}

// NewService creates a user service.
func NewService(repo domain.Repository, settlement *appSettlement.Service, tx TxRunner, initialGrant int, logger zerolog.Logger) *Service {
	return &Service{
		repo:         repo,
		settlement:   settlement,
		tx:           tx,
		initialGrant: initialGrant,
		logger:       logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput defines participant registration input.
type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
}

// Register creates a participant and seeds their ledger with the initial
// grant in the same transaction.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := domain.NormalizeUsername(input.Username)
	if err := domain.ValidateUsername(username); err != nil {
		return nil, &apperror.ValidationError{Message: err.Error()}
	}
	if err := domain.ValidatePassword(input.Password, username); err != nil {
		return nil, &apperror.ValidationError{Message: err.Error()}
	}
	if input.Role == "" {
		input.Role = domain.RoleMember
	}
	if err := domain.ValidateRole(input.Role); err != nil {
		return nil, &apperror.ValidationError{Message: err.Error()}
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &apperror.ValidationError{Message: "username already taken"}
	}

	hash, err := domain.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		UserID:       uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.StatusActive,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, u); err != nil {
			return err
		}
		if s.initialGrant > 0 {
			if _, err := s.settlement.GrantInitial(ctx, u.UserID, s.initialGrant); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", u.UserID.String()).Str("username", u.Username).Msg("participant registered")
	return u, nil
}

// LinkPartners joins two participants into a pair. Linking is symmetric and
// refused when either side is already linked elsewhere.
func (s *Service) LinkPartners(ctx context.Context, userID, partnerID uuid.UUID) error {
	if userID == partnerID {
		return &apperror.ValidationError{Message: "cannot link a participant to themselves"}
	}
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, err := s.repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if a == nil {
			return &apperror.NotFoundError{Resource: "user", ID: userID.String()}
		}
		b, err := s.repo.GetByID(ctx, partnerID)
		if err != nil {
			return err
		}
		if b == nil {
			return &apperror.NotFoundError{Resource: "user", ID: partnerID.String()}
		}
		if a.IsLinked() && !a.IsPartnerOf(b.UserID) {
			return &apperror.ValidationError{Message: "participant is already linked to another partner"}
		}
		if b.IsLinked() && !b.IsPartnerOf(a.UserID) {
			return &apperror.ValidationError{Message: "partner is already linked to another participant"}
		}
		now := time.Now().UTC()
		a.PartnerUserID = &b.UserID
		a.UpdatedAt = now
		b.PartnerUserID = &a.UserID
		b.UpdatedAt = now
		if err := s.repo.Update(ctx, a); err != nil {
			return err
		}
		return s.repo.Update(ctx, b)
	})
}

// SetPassword replaces a participant's password.
func (s *Service) SetPassword(ctx context.Context, userID uuid.UUID, password string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return &apperror.NotFoundError{Resource: "user", ID: userID.String()}
	}
	if err := domain.ValidatePassword(password, u.Username); err != nil {
		return &apperror.ValidationError{Message: err.Error()}
	}
	hash, err := domain.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, u)
}

// SetStatus enables or disables a participant.
func (s *Service) SetStatus(ctx context.Context, userID uuid.UUID, status domain.Status) (*domain.User, error) {
	if err := domain.ValidateStatus(status); err != nil {
		return nil, &apperror.ValidationError{Message: err.Error()}
	}
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, &apperror.NotFoundError{Resource: "user", ID: userID.String()}
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser retrieves one participant.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// GetByUsername retrieves a participant by normalized username.
func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, domain.NormalizeUsername(username))
}

// ListUsers lists participants.
func (s *Service) ListUsers(ctx context.Context, filter domain.Filter, limit, offset int) ([]*domain.User, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

// Count returns the total participant count.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
