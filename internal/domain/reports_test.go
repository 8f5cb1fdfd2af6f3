package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/gym/internal/calendar"
)

func TestBuildExpiringReportLeftJoinsUsers(t *testing.T) {
	from, to := calendar.MonthRange(2024, time.July)
	memberships := []Membership{
		{ID: "m1", UserID: "u2", Duration: 1, StartDate: time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), Money: 50},
		{ID: "m2", UserID: "u1", Duration: 1, StartDate: time.Date(2024, time.June, 20, 0, 0, 0, 0, time.UTC), Money: 50},
		{ID: "m3", UserID: "ghost", Duration: 3, StartDate: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), Money: 120},
		{ID: "m4", UserID: "u1", Duration: 1, StartDate: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), Money: 50},
	}
	users := map[string]User{
		"u1": {UserID: "u1", Name: "Asha", Email: "asha@example.com", PhoneNo: "9876543210"},
		"u2": {UserID: "u2", Name: "Ravi", Email: "ravi@example.com", PhoneNo: "9123456780"},
	}

	rows := BuildExpiringReport(memberships, users, from, to, now)
	require.Len(t, rows, 3)

	require.Equal(t, "ghost", rows[0].UserID)
	require.Nil(t, rows[0].Name)
	require.Nil(t, rows[0].Email)
	require.Nil(t, rows[0].PhoneNo)
	require.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), rows[0].EndDate)

	require.Equal(t, "u1", rows[1].UserID)
	require.Equal(t, "Asha", *rows[1].Name)
	require.Equal(t, "u2", rows[2].UserID)
	require.Equal(t, "9123456780", *rows[2].PhoneNo)
}

func TestBuildExpiringReportEmptyIsNotNil(t *testing.T) {
	from, to := calendar.MonthRange(2030, time.January)
	rows := BuildExpiringReport(nil, nil, from, to, now)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

func TestInactiveUsersCutoffIsInclusive(t *testing.T) {
	cutoff := InactivityCutoff(now, 30)
	require.Equal(t, now.AddDate(0, 0, -30), cutoff)

	users := []User{
		{UserID: "boundary", Name: "On cutoff"},
		{UserID: "stale", Name: "Before cutoff"},
		{UserID: "never", Name: "No sessions"},
		{UserID: "recent", Name: "Yesterday"},
	}
	latest := map[string]time.Time{
		"boundary": cutoff,
		"stale":    cutoff.Add(-time.Second),
		"recent":   now.AddDate(0, 0, -1),
	}

	rows := InactiveUsers(users, latest, cutoff)
	require.Len(t, rows, 2)
	require.Equal(t, "stale", rows[0].UserID)
	require.NotNil(t, rows[0].LastSessionDate)
	require.Equal(t, "never", rows[1].UserID)
	require.Nil(t, rows[1].LastSessionDate)
}

func TestIsDueForTestBoundaries(t *testing.T) {
	require.True(t, IsDueForTest(nil, now))

	threshold := calendar.AddMonths(now, -3)
	exactly := FitnessTest{Date: threshold}
	require.True(t, IsDueForTest(&exactly, now), "a test exactly three months old is due")

	dayShort := FitnessTest{Date: threshold.AddDate(0, 0, 1)}
	require.False(t, IsDueForTest(&dayShort, now), "a test three months minus one day old is current")
}

func TestUsersDueForTestFallbacks(t *testing.T) {
	users := []User{
		{UserID: "none", Name: "", PhoneNo: "", FitnessGoal: "Lose weight"},
		{UserID: "stale", Name: "Meera", PhoneNo: "9000000001", FitnessGoal: "Strength"},
		{UserID: "fresh", Name: "Kiran", PhoneNo: "9000000002"},
		{UserID: "bare", Name: "Dev", PhoneNo: "9000000003"},
	}
	latest := map[string]FitnessTest{
		"stale": {UserID: "stale", Date: time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), Goal: "Endurance"},
		"fresh": {UserID: "fresh", Date: now.AddDate(0, 0, -10)},
	}

	rows := UsersDueForTest(users, latest, now)
	require.Len(t, rows, 3)

	require.Equal(t, DueForTest{UserID: "none", PhoneNo: NotAvailable, Name: UnknownName, LastTestDate: NoTestRecorded, Goal: "Lose weight"}, rows[0])
	require.Equal(t, DueForTest{UserID: "stale", PhoneNo: "9000000001", Name: "Meera", LastTestDate: "2024-01-02", Goal: "Endurance"}, rows[1])
	require.Equal(t, DueForTest{UserID: "bare", PhoneNo: "9000000003", Name: "Dev", LastTestDate: NoTestRecorded, Goal: NotAvailable}, rows[2])
}
