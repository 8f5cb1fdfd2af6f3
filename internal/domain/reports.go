package domain

import (
	"sort"
	"time"

	"example.com/gym/internal/calendar"
)

// Placeholders used by the due-for-test report when profile data is missing.
const (
	NoTestRecorded = "no test recorded"
	NotAvailable   = "N/A"
	UnknownName    = "Unknown"
)

// FitnessTestInterval is how many months a test stays current.
const FitnessTestInterval = 3

// ExpiringMembership is a row of the expiring-membership report. User attributes are
// nil when the referenced user no longer exists.
type ExpiringMembership struct {
	MembershipID  string           `json:"membership_id"`
	UserID        string           `json:"user_id"`
	Name          *string          `json:"name"`
	Email         *string          `json:"email"`
	PhoneNo       *string          `json:"phone_no"`
	StartDate     time.Time        `json:"start_date"`
	EndDate       time.Time        `json:"end_date"`
	Duration      int              `json:"duration"`
	Money         float64          `json:"money"`
	DaysRemaining int              `json:"days_remaining"`
	Status        MembershipStatus `json:"status"`
}

// BuildExpiringReport keeps memberships whose derived end date falls in [from, to),
// left-joins them with users and orders the rows by end date then user id.
func BuildExpiringReport(memberships []Membership, users map[string]User, from, to, now time.Time) []ExpiringMembership {
	rows := make([]ExpiringMembership, 0)
	for _, m := range memberships {
		w := ComputeWindow(m, now)
		if w.EndDate.Before(from) || !w.EndDate.Before(to) {
			continue
		}
		row := ExpiringMembership{
			MembershipID:  m.ID,
			UserID:        m.UserID,
			StartDate:     m.StartDate,
			EndDate:       w.EndDate,
			Duration:      m.Duration,
			Money:         m.Money,
			DaysRemaining: w.DaysRemaining,
			Status:        w.Status,
		}
		if u, ok := users[m.UserID]; ok {
			row.Name, row.Email, row.PhoneNo = strPtr(u.Name), strPtr(u.Email), strPtr(u.PhoneNo)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].EndDate.Equal(rows[j].EndDate) {
			return rows[i].EndDate.Before(rows[j].EndDate)
		}
		if rows[i].UserID != rows[j].UserID {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].MembershipID < rows[j].MembershipID
	})
	return rows
}

// InactiveUser is a row of the inactivity report.
type InactiveUser struct {
	UserID          string     `json:"user_id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PhoneNo         string     `json:"phone_no"`
	LastSessionDate *time.Time `json:"last_session_date"`
}

// InactivityCutoff returns now minus lookbackDays calendar days.
func InactivityCutoff(now time.Time, lookbackDays int) time.Time {
	return now.UTC().AddDate(0, 0, -lookbackDays)
}

// InactiveUsers lists users with no session dated on or after cutoff. lastSession maps
// user id to that user's most recent session date.
func InactiveUsers(users []User, lastSession map[string]time.Time, cutoff time.Time) []InactiveUser {
	out := make([]InactiveUser, 0)
	for _, u := range users {
		last, ok := lastSession[u.UserID]
		if ok && !last.Before(cutoff) {
			continue
		}
		row := InactiveUser{UserID: u.UserID, Name: u.Name, Email: u.Email, PhoneNo: u.PhoneNo}
		if ok {
			ts := last
			row.LastSessionDate = &ts
		}
		out = append(out, row)
	}
	return out
}

// DueForTest is a row of the due-for-test report.
type DueForTest struct {
	UserID       string `json:"user_id"`
	PhoneNo      string `json:"phone_no"`
	Name         string `json:"name"`
	LastTestDate string `json:"lastTestDate"`
	Goal         string `json:"goal"`
}

// DueThreshold is the instant a latest test must be after to still be current.
func DueThreshold(now time.Time) time.Time {
	return calendar.AddMonths(now, -FitnessTestInterval)
}

// IsDueForTest reports whether a user whose latest test is latest (nil for none) is due.
// A test exactly FitnessTestInterval months old is due.
func IsDueForTest(latest *FitnessTest, now time.Time) bool {
	if latest == nil {
		return true
	}
	return !latest.Date.After(DueThreshold(now))
}

// UsersDueForTest lists every user that is due, in user order. latest maps user id to
// that user's most recent fitness test.
func UsersDueForTest(users []User, latest map[string]FitnessTest, now time.Time) []DueForTest {
	out := make([]DueForTest, 0)
	for _, u := range users {
		var last *FitnessTest
		if t, ok := latest[u.UserID]; ok {
			last = &t
		}
		if !IsDueForTest(last, now) {
			continue
		}

		row := DueForTest{
			UserID:       u.UserID,
			PhoneNo:      fallback(u.PhoneNo, NotAvailable),
			Name:         fallback(u.Name, UnknownName),
			LastTestDate: NoTestRecorded,
			Goal:         fallback(u.FitnessGoal, NotAvailable),
		}
		if last != nil {
			row.LastTestDate = last.Date.UTC().Format(calendar.DateLayout)
			if last.Goal != "" {
				row.Goal = last.Goal
			}
		}
		out = append(out, row)
	}
	return out
}

func fallback(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}

func strPtr(s string) *string {
	return &s
}
