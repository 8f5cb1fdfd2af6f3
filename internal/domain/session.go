package domain

import (
	"strings"
	"time"
)

// CompletedExercise is one entry of a logged session.
type CompletedExercise struct {
	Name      string `json:"name" bson:"name"`
	Sets      int    `json:"sets" bson:"sets"`
	Reps      *int   `json:"reps" bson:"reps"`
	Duration  *int   `json:"duration" bson:"duration"`
	Completed bool   `json:"completed" bson:"completed"`
}

// Session is an immutable history entry for a completed workout.
type Session struct {
	ID                      string              `json:"session_id" bson:"session_id"`
	UserID                  string              `json:"user_id" bson:"user_id"`
	Date                    time.Time           `json:"date" bson:"date"`
	ExercisesCompleted      []CompletedExercise `json:"exercises_completed" bson:"exercises_completed"`
	TotalDuration           int                 `json:"total_duration" bson:"total_duration"`
	ActualTimeMinutes       float64             `json:"actual_time_minutes" bson:"actual_time_minutes"`
	CompletedExercisesCount int                 `json:"completed_exercises_count" bson:"completed_exercises_count"`
	TotalExercisesCount     int                 `json:"total_exercises_count" bson:"total_exercises_count"`
}

// LogSessionInput is the write model for a session. Zero counts are derived from the entries.
type LogSessionInput struct {
	UserID                  string
	Date                    time.Time
	ExercisesCompleted      []CompletedExercise
	TotalDuration           int
	ActualTimeMinutes       float64
	CompletedExercisesCount int
	TotalExercisesCount     int
}

// Validate requires user_id, date, the completed list and a positive actual time.
func (in LogSessionInput) Validate() error {
	if strings.TrimSpace(in.UserID) == "" || in.Date.IsZero() || in.ExercisesCompleted == nil || in.ActualTimeMinutes == 0 {
		return invalid("Missing required fields")
	}
	if in.ActualTimeMinutes <= 0 {
		return invalid("Actual time must be greater than 0")
	}
	return nil
}

func (in LogSessionInput) toSession(id string) Session {
	completed := in.CompletedExercisesCount
	if completed == 0 {
		for _, ex := range in.ExercisesCompleted {
			if ex.Completed {
				completed++
			}
		}
	}
	total := in.TotalExercisesCount
	if total == 0 {
		total = len(in.ExercisesCompleted)
	}
	return Session{
		ID:                      id,
		UserID:                  in.UserID,
		Date:                    in.Date.UTC(),
		ExercisesCompleted:      in.ExercisesCompleted,
		TotalDuration:           in.TotalDuration,
		ActualTimeMinutes:       in.ActualTimeMinutes,
		CompletedExercisesCount: completed,
		TotalExercisesCount:     total,
	}
}
