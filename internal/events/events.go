// Package events defines the payloads the gym service publishes and how each is routed.
package events

import (
	"time"

	"example.com/gym/internal/domain"
)

// Event types.
const (
	TypeUserUpserted        = "user.upserted"
	TypeMembershipCreated   = "membership.created"
	TypeWorkoutPlanned      = "workout.planned"
	TypeSessionLogged       = "session.logged"
	TypeFitnessTestRecorded = "fitness_test.recorded"
)

// Topics.
const (
	TopicMemberEvents   = "gym_member_events"
	TopicTrainingEvents = "gym_training_events"
)

// Route describes where an event type is published.
type Route struct {
	Topic         string
	SchemaSubject string
	AggregateType string
}

// Catalog maps each event type to its route. Subjects follow the topic-record naming
// strategy because both topics carry more than one record type.
var Catalog = map[string]Route{
	TypeUserUpserted:        {Topic: TopicMemberEvents, SchemaSubject: TopicMemberEvents + "-" + TypeUserUpserted, AggregateType: "user"},
	TypeMembershipCreated:   {Topic: TopicMemberEvents, SchemaSubject: TopicMemberEvents + "-" + TypeMembershipCreated, AggregateType: "membership"},
	TypeWorkoutPlanned:      {Topic: TopicTrainingEvents, SchemaSubject: TopicTrainingEvents + "-" + TypeWorkoutPlanned, AggregateType: "workout"},
	TypeSessionLogged:       {Topic: TopicTrainingEvents, SchemaSubject: TopicTrainingEvents + "-" + TypeSessionLogged, AggregateType: "session"},
	TypeFitnessTestRecorded: {Topic: TopicTrainingEvents, SchemaSubject: TopicTrainingEvents + "-" + TypeFitnessTestRecorded, AggregateType: "fitness_test"},
}

// Lookup returns the route for eventType.
func Lookup(eventType string) (Route, bool) {
	route, ok := Catalog[eventType]
	return route, ok
}

// UserUpserted is emitted when a profile is created or replaced.
type UserUpserted struct {
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	PhoneNo     string    `json:"phone_no"`
	Email       string    `json:"email"`
	FitnessGoal string    `json:"fitness_goal"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// MembershipCreated is emitted when a membership is sold.
type MembershipCreated struct {
	MembershipID string    `json:"membership_id"`
	UserID       string    `json:"user_id"`
	Duration     int       `json:"duration"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Money        float64   `json:"money"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// WorkoutPlanned is emitted when a recurring plan is stored.
type WorkoutPlanned struct {
	WorkoutID     string    `json:"workout_id"`
	UserID        string    `json:"user_id"`
	RecurringDay  string    `json:"recurring_day"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	ExerciseCount int       `json:"exercise_count"`
}

// SessionLogged is emitted for each completed session.
type SessionLogged struct {
	SessionID               string    `json:"session_id"`
	UserID                  string    `json:"user_id"`
	Date                    time.Time `json:"date"`
	ActualTimeMinutes       float64   `json:"actual_time_minutes"`
	CompletedExercisesCount int       `json:"completed_exercises_count"`
	TotalExercisesCount     int       `json:"total_exercises_count"`
}

// FitnessTestRecorded is emitted when an assessment is stored.
type FitnessTestRecorded struct {
	TestID string    `json:"test_id"`
	UserID string    `json:"user_id"`
	Date   time.Time `json:"date"`
	Goal   string    `json:"goal"`
	BMI    *float64  `json:"bmi"`
}

// NewUserUpserted builds the payload for u.
func NewUserUpserted(u domain.User) UserUpserted {
	return UserUpserted{
		UserID:      u.UserID,
		Name:        u.Name,
		PhoneNo:     u.PhoneNo,
		Email:       u.Email,
		FitnessGoal: u.FitnessGoal,
		OccurredAt:  u.UpdatedAt,
	}
}

// NewMembershipCreated builds the payload for m.
func NewMembershipCreated(m domain.Membership) MembershipCreated {
	return MembershipCreated{
		MembershipID: m.ID,
		UserID:       m.UserID,
		Duration:     m.Duration,
		StartDate:    m.StartDate,
		EndDate:      m.EndDate(),
		Money:        m.Money,
		OccurredAt:   m.CreatedAt,
	}
}

// NewWorkoutPlanned builds the payload for w.
func NewWorkoutPlanned(w domain.Workout) WorkoutPlanned {
	return WorkoutPlanned{
		WorkoutID:     w.ID,
		UserID:        w.UserID,
		RecurringDay:  w.RecurringDay,
		StartDate:     w.StartDate,
		EndDate:       w.EndDate,
		ExerciseCount: len(w.Exercises),
	}
}

// NewSessionLogged builds the payload for s.
func NewSessionLogged(s domain.Session) SessionLogged {
	return SessionLogged{
		SessionID:               s.ID,
		UserID:                  s.UserID,
		Date:                    s.Date,
		ActualTimeMinutes:       s.ActualTimeMinutes,
		CompletedExercisesCount: s.CompletedExercisesCount,
		TotalExercisesCount:     s.TotalExercisesCount,
	}
}

// NewFitnessTestRecorded builds the payload for f.
func NewFitnessTestRecorded(f domain.FitnessTest) FitnessTestRecorded {
	return FitnessTestRecorded{
		TestID: f.ID,
		UserID: f.UserID,
		Date:   f.Date,
		Goal:   f.Goal,
		BMI:    f.PhysicalData.BMI,
	}
}
