package domain

import (
	"fmt"
	"strings"
	"time"

	"example.com/gym/internal/calendar"
)

// WorkoutExercise is one entry of a planned workout. Reps and Duration are optional.
type WorkoutExercise struct {
	Name     string `json:"name" bson:"name"`
	Sets     int    `json:"sets" bson:"sets"`
	Reps     *int   `json:"reps" bson:"reps"`
	Duration *int   `json:"duration" bson:"duration"`
}

// Workout is a recurring weekly plan valid between StartDate and EndDate inclusive.
type Workout struct {
	ID           string            `json:"workout_id" bson:"workout_id"`
	UserID       string            `json:"user_id" bson:"user_id"`
	StartDate    time.Time         `json:"start_date" bson:"start_date"`
	EndDate      time.Time         `json:"end_date" bson:"end_date"`
	RecurringDay string            `json:"recurring_day" bson:"recurring_day"`
	Exercises    []WorkoutExercise `json:"exercises" bson:"exercises"`
}

// Validate checks plan invariants.
func (w Workout) Validate() error {
	if strings.TrimSpace(w.UserID) == "" {
		return invalid("user_id is required")
	}
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return invalid("start_date and end_date are required")
	}
	if w.EndDate.Before(w.StartDate) {
		return invalid("end_date must not be before start_date")
	}
	if !calendar.IsWeekday(w.RecurringDay) {
		return invalid("recurring_day must be a weekday name")
	}
	if len(w.Exercises) == 0 {
		return invalid("exercises are required")
	}
	for i, ex := range w.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return invalid(fmt.Sprintf("exercises[%d].name is required", i))
		}
		if ex.Sets < 1 {
			return invalid(fmt.Sprintf("exercises[%d].sets must be >= 1", i))
		}
	}
	return nil
}

// AppliesOn reports whether the plan is scheduled for the given date.
func (w Workout) AppliesOn(target time.Time) bool {
	if w.RecurringDay != calendar.WeekdayName(target) {
		return false
	}
	return !target.Before(w.StartDate) && !target.After(w.EndDate)
}

// ResolveWorkoutForDate returns the first plan in candidates that applies on target.
// Overlapping plans are not merged.
func ResolveWorkoutForDate(candidates []Workout, target time.Time) (Workout, bool) {
	for _, w := range candidates {
		if w.AppliesOn(target) {
			return w, true
		}
	}
	return Workout{}, false
}

// WorkoutFilter narrows ListWorkouts. The date range applies only when both bounds are set
// and selects plans overlapping [StartDate, EndDate].
type WorkoutFilter struct {
	UserID       string
	RecurringDay string
	StartDate    *time.Time
	EndDate      *time.Time
}

// HasRange reports whether the overlap filter is active.
func (f WorkoutFilter) HasRange() bool {
	return f.StartDate != nil && f.EndDate != nil
}

// Matches applies the filter to a single plan.
func (f WorkoutFilter) Matches(w Workout) bool {
	if f.UserID != "" && w.UserID != f.UserID {
		return false
	}
	if f.RecurringDay != "" && w.RecurringDay != f.RecurringDay {
		return false
	}
	if f.HasRange() {
		if w.StartDate.After(*f.EndDate) || w.EndDate.Before(*f.StartDate) {
			return false
		}
	}
	return true
}
