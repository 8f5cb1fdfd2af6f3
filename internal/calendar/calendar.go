// Package calendar holds the date arithmetic shared by every membership, report and
// workout computation. All results are in UTC.
package calendar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the date-only wire format accepted and emitted by the API.
const DateLayout = "2006-01-02"

// AddMonths adds n calendar months to t. When the source day does not exist in the
// target month the result is clamped to that month's last day, so Jan 31 + 1 month
// is Feb 29 in a leap year and Feb 28 otherwise. Time of day is preserved.
func AddMonths(t time.Time, n int) time.Time {
	t = t.UTC()
	year, month, day := t.Date()

	offset := int(month) - 1 + n
	year += offset / 12
	offset %= 12
	if offset < 0 {
		offset += 12
		year--
	}
	target := time.Month(offset + 1)

	if last := daysIn(year, target); day > last {
		day = last
	}
	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysUntil returns the number of days from "from" to "to", rounded up.
// Past instants yield negative values.
func DaysUntil(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// WeekdayName returns the English weekday name of t's UTC date.
func WeekdayName(t time.Time) string {
	return t.UTC().Weekday().String()
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the half-open interval [first instant of month, first instant of next month).
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return from, AddMonths(from, 1)
}

// ParseDate accepts either a date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t.UTC(), nil
}

// IsWeekday reports whether name is an English weekday name (case-sensitive).
func IsWeekday(name string) bool {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return true
		}
	}
	return false
}
