package domain

import (
	"fmt"
	"strings"
	"time"

	"example.com/gym/internal/calendar"
)

// MembershipStatus classifies a membership relative to "now".
type MembershipStatus string

const (
	MembershipActive       MembershipStatus = "active"
	MembershipExpiringSoon MembershipStatus = "expiring_soon"
	MembershipExpired      MembershipStatus = "expired"
)

// ExpiringSoonDays is the inclusive upper bound of the expiring-soon band.
const ExpiringSoonDays = 7

// Membership is a paid period of access. The end date is derived, never stored.
type Membership struct {
	ID        string    `json:"membership_id" bson:"membership_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Duration  int       `json:"duration" bson:"duration"`
	StartDate time.Time `json:"start_date" bson:"start_date"`
	Money     float64   `json:"money" bson:"money"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Validate checks membership invariants.
func (m Membership) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return invalid("user_id is required")
	}
	if !ValidDuration(m.Duration) {
		return invalid("duration must be one of 1, 3, 6, 12")
	}
	if m.StartDate.IsZero() {
		return invalid("start_date is required")
	}
	if m.Money < 0 {
		return invalid("money must be >= 0")
	}
	return nil
}

// ValidDuration reports whether months is an offered membership length.
func ValidDuration(months int) bool {
	switch months {
	case 1, 3, 6, 12:
		return true
	}
	return false
}

// EndDate derives the membership end from its start and duration.
func EndDate(start time.Time, durationMonths int) time.Time {
	return calendar.AddMonths(start, durationMonths)
}

// EndDate returns the derived end of the membership.
func (m Membership) EndDate() time.Time {
	return EndDate(m.StartDate, m.Duration)
}

// IsActive reports whether the membership ends on or after now.
func (m Membership) IsActive(now time.Time) bool {
	return !m.EndDate().Before(now)
}

// Window is the derived lifecycle view of a membership.
type Window struct {
	EndDate       time.Time
	DaysRemaining int
	Status        MembershipStatus
}

// ComputeWindow classifies a membership at instant now.
func ComputeWindow(m Membership, now time.Time) Window {
	end := m.EndDate()
	days := calendar.DaysUntil(now, end)
	return Window{EndDate: end, DaysRemaining: days, Status: classify(days)}
}

func classify(daysRemaining int) MembershipStatus {
	switch {
	case daysRemaining < 0:
		return MembershipExpired
	case daysRemaining <= ExpiringSoonDays:
		return MembershipExpiringSoon
	default:
		return MembershipActive
	}
}

// Describe renders the window as a human readable status line.
func (w Window) Describe() string {
	switch {
	case w.DaysRemaining < 0:
		n := -w.DaysRemaining
		if n == 1 {
			return "expired 1 day ago"
		}
		return fmt.Sprintf("expired %d days ago", n)
	case w.DaysRemaining == 0:
		return "expires today"
	case w.DaysRemaining == 1:
		return "1 day remaining"
	default:
		return fmt.Sprintf("%d days remaining", w.DaysRemaining)
	}
}

// SelectActive returns the first membership, in the given order, that is still active.
func SelectActive(memberships []Membership, now time.Time) (Membership, bool) {
	for _, m := range memberships {
		if m.IsActive(now) {
			return m, true
		}
	}
	return Membership{}, false
}

// ActiveMembership is a membership together with its derived window.
type ActiveMembership struct {
	MembershipID  string           `json:"membership_id"`
	UserID        string           `json:"user_id"`
	StartDate     time.Time        `json:"start_date"`
	Duration      int              `json:"duration"`
	Money         float64          `json:"money"`
	EndDate       time.Time        `json:"end_date"`
	DaysRemaining int              `json:"days_remaining"`
	Status        MembershipStatus `json:"status"`
	StatusText    string           `json:"status_text"`
}

func newActiveMembership(m Membership, now time.Time) ActiveMembership {
	w := ComputeWindow(m, now)
	return ActiveMembership{
		MembershipID:  m.ID,
		UserID:        m.UserID,
		StartDate:     m.StartDate,
		Duration:      m.Duration,
		Money:         m.Money,
		EndDate:       w.EndDate,
		DaysRemaining: w.DaysRemaining,
		Status:        w.Status,
		StatusText:    w.Describe(),
	}
}
