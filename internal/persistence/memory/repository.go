// Package memory provides an in-process store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/gym/internal/domain"
)

// Repository stores every record set in insertion-ordered slices.
type Repository struct {
	mu          sync.RWMutex
	users       []domain.User
	memberships []domain.Membership
	exercises   []domain.Exercise
	workouts    []domain.Workout
	sessions    []domain.Session
	tests       []domain.FitnessTest
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository constructs an empty repository.
func NewRepository() *Repository {
	return &Repository{}
}

// NewSeededRepository constructs a repository populated with a starter exercise catalog.
func NewSeededRepository() *Repository {
	repo := NewRepository()
	repo.seed()
	return repo
}

func (r *Repository) seed() {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog := []domain.Exercise{
		{Name: "Bodyweight Squat", Description: "Feet shoulder-width apart, sit back and stand up.", FocusArea: "Legs"},
		{Name: "Push-up", Description: "Lower the chest to the floor and press back up.", FocusArea: "Chest"},
		{Name: "Plank", Description: "Hold a straight line from head to heels.", FocusArea: "Core", DefaultReps: 1, RestInterval: 45},
		{Name: "Bent-over Row", Description: "Pull the weight towards the lower ribs.", FocusArea: "Back", Difficulty: domain.DifficultyIntermediate},
		{Name: "Burpee", Description: "Squat, kick back, push up, jump.", FocusArea: "Cardio", Difficulty: domain.DifficultyAdvanced, DefaultReps: 10},
	}
	for _, ex := range catalog {
		ex.ID = uuid.NewString()
		ex.ApplyDefaults()
		r.exercises = append(r.exercises, ex)
	}
}

// UpsertUser implements domain.UserRepository.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.users {
		if existing.UserID == user.UserID {
			user.CreatedAt = existing.CreatedAt
			r.users[i] = user
			return user, nil
		}
	}
	r.users = append(r.users, user)
	return user, nil
}

// GetUser implements domain.UserRepository.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.UserID == userID {
			return &u, nil
		}
	}
	return nil, nil
}

// GetUserByPhone implements domain.UserRepository.
func (r *Repository) GetUserByPhone(ctx context.Context, phoneNo string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.PhoneNo == phoneNo {
			return &u, nil
		}
	}
	return nil, nil
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

// CreateMembership implements domain.MembershipRepository.
func (r *Repository) CreateMembership(ctx context.Context, membership domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.memberships = append(r.memberships, membership)
	return nil
}

// ListMembershipsByUser implements domain.MembershipRepository.
func (r *Repository) ListMembershipsByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Membership, 0)
	for _, m := range r.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListMembershipsEndingBetween implements domain.MembershipRepository.
func (r *Repository) ListMembershipsEndingBetween(ctx context.Context, from, to time.Time) ([]domain.Membership, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Membership, 0)
	for _, m := range r.memberships {
		end := m.EndDate()
		if !end.Before(from) && end.Before(to) {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListExercises implements domain.ExerciseRepository.
func (r *Repository) ListExercises(ctx context.Context, focusArea string) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		if focusArea == "" || ex.FocusArea == focusArea {
			out = append(out, ex)
		}
	}
	return out, nil
}

// UpsertExercise implements domain.ExerciseRepository.
func (r *Repository) UpsertExercise(ctx context.Context, exercise domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.exercises {
		if existing.ID == exercise.ID {
			r.exercises[i] = exercise
			return nil
		}
	}
	r.exercises = append(r.exercises, exercise)
	return nil
}

// CreateWorkout implements domain.WorkoutRepository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.workouts = append(r.workouts, workout)
	return nil
}

// ListWorkouts implements domain.WorkoutRepository.
func (r *Repository) ListWorkouts(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range r.workouts {
		if filter.Matches(w) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

// ListWorkoutsForDay implements domain.WorkoutRepository.
func (r *Repository) ListWorkoutsForDay(ctx context.Context, userID, day string) ([]domain.Workout, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range r.workouts {
		if w.UserID == userID && w.RecurringDay == day {
			out = append(out, w)
		}
	}
	return out, nil
}

// CreateSession implements domain.SessionRepository.
func (r *Repository) CreateSession(ctx context.Context, session domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = append(r.sessions, session)
	return nil
}

// ListSessions implements domain.SessionRepository.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Session, 0)
	for _, s := range r.sessions {
		if userID == "" || s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// LatestSessionDates implements domain.SessionRepository.
func (r *Repository) LatestSessionDates(ctx context.Context) (map[string]time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]time.Time)
	for _, s := range r.sessions {
		if last, ok := out[s.UserID]; !ok || s.Date.After(last) {
			out[s.UserID] = s.Date
		}
	}
	return out, nil
}

// CreateFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) CreateFitnessTest(ctx context.Context, test domain.FitnessTest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tests = append(r.tests, test)
	return nil
}

// GetFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) GetFitnessTest(ctx context.Context, id string) (*domain.FitnessTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tests {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

// ListFitnessTestsByUser implements domain.FitnessTestRepository.
func (r *Repository) ListFitnessTestsByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.FitnessTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FitnessTest, 0)
	for _, t := range r.tests {
		if t.UserID != userID {
			continue
		}
		if from != nil && t.Date.Before(*from) {
			continue
		}
		if to != nil && t.Date.After(*to) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

// LatestFitnessTests implements domain.FitnessTestRepository.
func (r *Repository) LatestFitnessTests(ctx context.Context) (map[string]domain.FitnessTest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]domain.FitnessTest)
	for _, t := range r.tests {
		if last, ok := out[t.UserID]; !ok || t.Date.After(last.Date) {
			out[t.UserID] = t
		}
	}
	return out, nil
}
