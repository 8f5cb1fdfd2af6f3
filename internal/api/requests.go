package api

import (
	"errors"
	"strings"
	"time"

	"example.com/gym/internal/calendar"
	"example.com/gym/internal/domain"
)

var errInvalidDate = errors.New("Invalid date")

// parseOptionalDate returns the zero time for an empty value.
func parseOptionalDate(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, err := calendar.ParseDate(value)
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return t, nil
}

// parseDatePtr returns nil for an empty value.
func parseDatePtr(value string) (*time.Time, error) {
	t, err := parseOptionalDate(value)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

// UpsertUserRequest is the payload for POST /api/user.
type UpsertUserRequest struct {
	UserID           string   `json:"user_id"`
	Name             string   `json:"name"`
	PhoneNo          string   `json:"phone_no"`
	Email            string   `json:"email"`
	Gender           string   `json:"gender"`
	Age              int      `json:"age"`
	Injury           []string `json:"injury"`
	Disease          []string `json:"disease"`
	FitnessGoal      string   `json:"fitness_goal"`
	EmergencyContact string   `json:"emergency_contact"`
}

func (r UpsertUserRequest) toDomain() domain.User {
	return domain.User{
		UserID:           strings.TrimSpace(r.UserID),
		Name:             strings.TrimSpace(r.Name),
		PhoneNo:          strings.TrimSpace(r.PhoneNo),
		Email:            strings.TrimSpace(r.Email),
		Gender:           r.Gender,
		Age:              r.Age,
		Injury:           r.Injury,
		Disease:          r.Disease,
		FitnessGoal:      strings.TrimSpace(r.FitnessGoal),
		EmergencyContact: strings.TrimSpace(r.EmergencyContact),
	}
}

// CreateMembershipRequest is the payload for POST /api/membership.
type CreateMembershipRequest struct {
	UserID    string  `json:"user_id"`
	Duration  int     `json:"duration"`
	StartDate string  `json:"start_date"`
	Money     float64 `json:"money"`
}

func (r CreateMembershipRequest) toDomain() (domain.Membership, error) {
	start, err := parseOptionalDate(r.StartDate)
	if err != nil {
		return domain.Membership{}, err
	}
	return domain.Membership{
		UserID:    strings.TrimSpace(r.UserID),
		Duration:  r.Duration,
		StartDate: start,
		Money:     r.Money,
	}, nil
}

// UpsertExerciseRequest is the payload for POST /api/exercises.
type UpsertExerciseRequest struct {
	ID           string `json:"exercise_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	FocusArea    string `json:"focus_area"`
	VideoURL     string `json:"video_url"`
	DefaultSets  int    `json:"default_sets"`
	DefaultReps  int    `json:"default_reps"`
	RestInterval int    `json:"rest_interval"`
	Difficulty   string `json:"difficulty"`
}

func (r UpsertExerciseRequest) toDomain() domain.Exercise {
	return domain.Exercise{
		ID:           strings.TrimSpace(r.ID),
		Name:         strings.TrimSpace(r.Name),
		Description:  r.Description,
		FocusArea:    strings.TrimSpace(r.FocusArea),
		VideoURL:     r.VideoURL,
		DefaultSets:  r.DefaultSets,
		DefaultReps:  r.DefaultReps,
		RestInterval: r.RestInterval,
		Difficulty:   r.Difficulty,
	}
}

// CreateWorkoutRequest is the payload for POST /api/workout.
type CreateWorkoutRequest struct {
	UserID       string                   `json:"user_id"`
	StartDate    string                   `json:"start_date"`
	EndDate      string                   `json:"end_date"`
	RecurringDay string                   `json:"recurring_day"`
	Exercises    []domain.WorkoutExercise `json:"exercises"`
}

func (r CreateWorkoutRequest) toDomain() (domain.Workout, error) {
	start, err := parseOptionalDate(r.StartDate)
	if err != nil {
		return domain.Workout{}, err
	}
	end, err := parseOptionalDate(r.EndDate)
	if err != nil {
		return domain.Workout{}, err
	}
	return domain.Workout{
		UserID:       strings.TrimSpace(r.UserID),
		StartDate:    start,
		EndDate:      end,
		RecurringDay: r.RecurringDay,
		Exercises:    r.Exercises,
	}, nil
}

// LogSessionRequest is the payload for POST /api/session.
type LogSessionRequest struct {
	UserID                  string                     `json:"user_id"`
	Date                    string                     `json:"date"`
	ExercisesCompleted      []domain.CompletedExercise `json:"exercises_completed"`
	TotalDuration           int                        `json:"total_duration"`
	ActualTimeMinutes       float64                    `json:"actual_time_minutes"`
	CompletedExercisesCount int                        `json:"completed_exercises_count"`
	TotalExercisesCount     int                        `json:"total_exercises_count"`
}

func (r LogSessionRequest) toDomain() (domain.LogSessionInput, error) {
	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return domain.LogSessionInput{}, err
	}
	return domain.LogSessionInput{
		UserID:                  strings.TrimSpace(r.UserID),
		Date:                    date,
		ExercisesCompleted:      r.ExercisesCompleted,
		TotalDuration:           r.TotalDuration,
		ActualTimeMinutes:       r.ActualTimeMinutes,
		CompletedExercisesCount: r.CompletedExercisesCount,
		TotalExercisesCount:     r.TotalExercisesCount,
	}, nil
}

// RecordFitnessTestRequest is the payload for POST /api/fitness-test.
type RecordFitnessTestRequest struct {
	UserID       string               `json:"user_id"`
	Date         string               `json:"date"`
	Goal         string               `json:"goal"`
	Exercises    domain.TestExercises `json:"exercises"`
	PhysicalData domain.PhysicalData  `json:"physical_data"`
}

func (r RecordFitnessTestRequest) toDomain() (domain.FitnessTest, error) {
	date, err := parseOptionalDate(r.Date)
	if err != nil {
		return domain.FitnessTest{}, err
	}
	return domain.FitnessTest{
		UserID:       strings.TrimSpace(r.UserID),
		Date:         date,
		Goal:         strings.TrimSpace(r.Goal),
		Exercises:    r.Exercises,
		PhysicalData: r.PhysicalData,
	}, nil
}
