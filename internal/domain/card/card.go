package card

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTitleRequired = errors.New("card title is required")
	ErrTitleTooLong  = errors.New("card title must be at most 200 characters")
)

// Card is a catalog activity template a proposal may reference. Catalog
// management is a thin collaborator here; tags, locales and bulk import
// live outside this service.
type Card struct {
	ID          int64      `json:"id"`
	CardID      uuid.UUID  `json:"cardId"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Enabled     bool       `json:"enabled"`
	CreatedBy   *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ValidateTitle checks the card title is present and within bounds.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if len(title) > 200 {
		return ErrTitleTooLong
	}
	return nil
}
