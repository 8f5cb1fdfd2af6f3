package domain

import (
	"context"
	"time"
)

// Lookups return (nil, nil) when no record matches. "Store order" below means
// insertion order.

// UserRepository persists member profiles.
type UserRepository interface {
	// UpsertUser writes the profile keyed on UserID, keeping the stored CreatedAt, and
	// returns the stored record.
	UpsertUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	GetUserByPhone(ctx context.Context, phoneNo string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// MembershipRepository persists memberships. End dates are derived with calendar.AddMonths
// semantics wherever a backend filters on them.
type MembershipRepository interface {
	CreateMembership(ctx context.Context, membership Membership) error
	// ListMembershipsByUser returns the user's memberships in store order.
	ListMembershipsByUser(ctx context.Context, userID string) ([]Membership, error)
	// ListMembershipsEndingBetween returns memberships whose derived end date is in [from, to).
	ListMembershipsEndingBetween(ctx context.Context, from, to time.Time) ([]Membership, error)
}

// ExerciseRepository persists the exercise catalog.
type ExerciseRepository interface {
	// ListExercises filters on focus area when it is non-empty.
	ListExercises(ctx context.Context, focusArea string) ([]Exercise, error)
	UpsertExercise(ctx context.Context, exercise Exercise) error
}

// WorkoutRepository persists recurring workout plans.
type WorkoutRepository interface {
	CreateWorkout(ctx context.Context, workout Workout) error
	// ListWorkouts applies the filter and sorts by start date, newest first.
	ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]Workout, error)
	// ListWorkoutsForDay returns the user's plans recurring on day, in store order.
	ListWorkoutsForDay(ctx context.Context, userID, day string) ([]Workout, error)
}

// SessionRepository persists workout history.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	// ListSessions filters on user when userID is non-empty and sorts by date, newest first.
	ListSessions(ctx context.Context, userID string) ([]Session, error)
	// LatestSessionDates returns the most recent session date per user.
	LatestSessionDates(ctx context.Context) (map[string]time.Time, error)
}

// FitnessTestRepository persists fitness assessments.
type FitnessTestRepository interface {
	CreateFitnessTest(ctx context.Context, test FitnessTest) error
	GetFitnessTest(ctx context.Context, id string) (*FitnessTest, error)
	// ListFitnessTestsByUser applies each non-nil bound inclusively and sorts by date, newest first.
	ListFitnessTestsByUser(ctx context.Context, userID string, from, to *time.Time) ([]FitnessTest, error)
	// LatestFitnessTests returns the most recent test per user.
	LatestFitnessTests(ctx context.Context) (map[string]FitnessTest, error)
}

// Repository aggregates every store the service needs.
type Repository interface {
	UserRepository
	MembershipRepository
	ExerciseRepository
	WorkoutRepository
	SessionRepository
	FitnessTestRepository
}
