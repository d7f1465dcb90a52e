package period

import (
	"time"

	"github.com/google/uuid"
)

// Type describes period duration.
type Type string

const (
	TypeWeek     Type = "WEEK"
	TypeMonth    Type = "MONTH"
	TypeTwoMonth Type = "TWO_MONTH"
)

// Weeks returns the period duration in weeks, zero for unknown types.
func (t Type) Weeks() int {
	switch t {
	case TypeWeek:
		return 1
	case TypeMonth:
		return 4
	case TypeTwoMonth:
		return 8
	default:
		return 0
	}
}

// Status describes period lifecycle state.
type Status string

const (
	StatusSetup  Status = "SETUP"
	StatusActive Status = "ACTIVE"
	StatusDone   Status = "DONE"
)

// Period is one game period. Boundaries are supplied at creation; this
// service never computes schedules beyond simple week math.
type Period struct {
	ID                int64     `json:"id"`
	PeriodID          uuid.UUID `json:"periodId"`
	Type              Type      `json:"type"`
	Status            Status    `json:"status"`
	StartDate         time.Time `json:"startDate"`
	EndDate           time.Time `json:"endDate"`
	WeeklyBaseCredits int       `json:"weeklyBaseCredits"`
	CardsPerWeek      int       `json:"cardsPerWeek"`
	CreatedAt         time.Time `json:"createdAt"`
}

// CurrentWeek returns the 1-based week index for a date inside the period,
// zero before the period starts and the final week after it ends.
func (p *Period) CurrentWeek(now time.Time) int {
	if now.Before(p.StartDate) {
		return 0
	}
	if now.After(p.EndDate) {
		return p.Type.Weeks()
	}
	days := int(now.Sub(p.StartDate).Hours() / 24)
	return days/7 + 1
}
