// Package domain defines the business logic of the gym service: entities, their
// invariants and the membership, activity and fitness-test derivations.
package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/gym/internal/cache"
	"example.com/gym/internal/calendar"
	"example.com/gym/internal/observability"
)

const expiringScope = "expiring"

// Service orchestrates gym workflows over a Repository.
type Service struct {
	repo    Repository
	reports cache.ReportCache
	now     func() time.Time
	logger  *log.Logger
}

// Option configures optional Service behaviour.
type Option func(*Service)

// WithClock overrides the source of "now".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger overrides the logger used for non-fatal cache errors.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService constructs a Service. A nil cache disables report caching.
func NewService(repo Repository, reports cache.ReportCache, opts ...Option) *Service {
	if reports == nil {
		reports = cache.NoopCache{}
	}
	s := &Service{
		repo:    repo,
		reports: reports,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  log.New(log.Writer(), "[domain] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListExercises returns the catalog, optionally narrowed to one focus area.
func (s *Service) ListExercises(ctx context.Context, focusArea string) ([]Exercise, error) {
	return s.repo.ListExercises(ctx, strings.TrimSpace(focusArea))
}

// UpsertExercise creates or replaces a catalog entry.
func (s *Service) UpsertExercise(ctx context.Context, exercise Exercise) (Exercise, error) {
	exercise.ApplyDefaults()
	if err := exercise.Validate(); err != nil {
		return Exercise{}, err
	}
	if strings.TrimSpace(exercise.ID) == "" {
		exercise.ID = uuid.NewString()
	}
	if err := s.repo.UpsertExercise(ctx, exercise); err != nil {
		return Exercise{}, err
	}
	observability.RecordCreated("exercise", s.now())
	return exercise, nil
}

// CreateWorkout stores a new recurring plan.
func (s *Service) CreateWorkout(ctx context.Context, workout Workout) (Workout, error) {
	if err := workout.Validate(); err != nil {
		return Workout{}, err
	}
	workout.ID = uuid.NewString()
	workout.StartDate = workout.StartDate.UTC()
	workout.EndDate = workout.EndDate.UTC()
	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return Workout{}, err
	}
	observability.RecordCreated("workout", s.now())
	return workout, nil
}

// WorkoutForDate resolves the plan scheduled for the user on target, or nil.
func (s *Service) WorkoutForDate(ctx context.Context, userID string, target time.Time) (*Workout, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user_id is required")
	}
	target = target.UTC()
	candidates, err := s.repo.ListWorkoutsForDay(ctx, userID, calendar.WeekdayName(target))
	if err != nil {
		return nil, err
	}
	workout, ok := ResolveWorkoutForDate(candidates, target)
	if !ok {
		return nil, nil
	}
	return &workout, nil
}

// ListWorkouts returns plans matching the filter, newest start first.
func (s *Service) ListWorkouts(ctx context.Context, filter WorkoutFilter) ([]Workout, error) {
	if filter.RecurringDay != "" && !calendar.IsWeekday(filter.RecurringDay) {
		return nil, invalid("recurring_day must be a weekday name")
	}
	return s.repo.ListWorkouts(ctx, filter)
}

// ListSessions returns history, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	return s.repo.ListSessions(ctx, strings.TrimSpace(userID))
}

// LogSession stores a completed session, deriving missing counts.
func (s *Service) LogSession(ctx context.Context, input LogSessionInput) (Session, error) {
	if err := input.Validate(); err != nil {
		return Session{}, err
	}
	session := input.toSession(uuid.NewString())
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return Session{}, err
	}
	observability.RecordCreated("session", s.now())
	return session, nil
}

// GetUser fetches a profile by user id.
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// GetUserByPhone fetches a profile by phone number.
func (s *Service) GetUserByPhone(ctx context.Context, phoneNo string) (*User, error) {
	user, err := s.repo.GetUserByPhone(ctx, phoneNo)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns every profile.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// UpsertUser creates or updates a profile and drops cached reports that embed user data.
func (s *Service) UpsertUser(ctx context.Context, user User) (User, error) {
	user.normalize()
	if err := user.Validate(); err != nil {
		return User{}, err
	}
	now := s.now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if err := s.reports.Invalidate(ctx, expiringScope); err != nil {
		return User{}, fmt.Errorf("cache invalidation: %w", err)
	}
	stored, err := s.repo.UpsertUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	s.invalidateAfterCommit(ctx, expiringScope)
	observability.RecordCreated("user", now)
	return stored, nil
}

// CreateMembership stores a new membership for an existing user.
func (s *Service) CreateMembership(ctx context.Context, membership Membership) (Membership, error) {
	if err := membership.Validate(); err != nil {
		return Membership{}, err
	}
	user, err := s.repo.GetUser(ctx, membership.UserID)
	if err != nil {
		return Membership{}, err
	}
	if user == nil {
		return Membership{}, ErrUserNotFound
	}

	membership.ID = uuid.NewString()
	membership.StartDate = membership.StartDate.UTC()
	membership.CreatedAt = s.now()
	if err := s.reports.Invalidate(ctx, expiringScope); err != nil {
		return Membership{}, fmt.Errorf("cache invalidation: %w", err)
	}
	if err := s.repo.CreateMembership(ctx, membership); err != nil {
		return Membership{}, err
	}
	s.invalidateAfterCommit(ctx, expiringScope)
	observability.RecordCreated("membership", membership.CreatedAt)
	return membership, nil
}

// invalidateAfterCommit retires entries computed while a write was in flight. The write
// is already stored, so a failure here is logged and the caller still succeeds.
func (s *Service) invalidateAfterCommit(ctx context.Context, scope string) {
	if err := s.reports.Invalidate(ctx, scope); err != nil {
		s.logger.Printf("report cache invalidate %s after commit: %v", scope, err)
	}
}

// ActiveMembership returns the first of the user's memberships that has not ended.
func (s *Service) ActiveMembership(ctx context.Context, userID string) (ActiveMembership, error) {
	memberships, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return ActiveMembership{}, err
	}
	now := s.now()
	m, ok := SelectActive(memberships, now)
	if !ok {
		return ActiveMembership{}, ErrMembershipNotFound
	}
	return newActiveMembership(m, now), nil
}

// ExpiringMemberships reports memberships ending in the given month.
func (s *Service) ExpiringMemberships(ctx context.Context, month, year int) ([]ExpiringMembership, error) {
	if month < 1 || month > 12 || year < 1 {
		return nil, invalid("Invalid month or year")
	}
	defer observability.ObserveReport("expiring", time.Now())

	gen, err := s.reports.Generation(ctx, expiringScope)
	cacheable := err == nil
	if err != nil {
		s.logger.Printf("report cache generation %s: %v", expiringScope, err)
	}
	key := cache.Key(expiringScope, gen, fmt.Sprintf("%04d-%02d", year, month))
	if cacheable {
		if raw, ok, err := s.reports.Get(ctx, key); err != nil {
			s.logger.Printf("report cache get %s: %v", key, err)
		} else if ok {
			var rows []ExpiringMembership
			if err := json.Unmarshal(raw, &rows); err == nil {
				observability.RecordCacheLookup("expiring", true)
				return s.refreshWindows(rows), nil
			}
		}
	}
	observability.RecordCacheLookup("expiring", false)

	from, to := calendar.MonthRange(year, time.Month(month))
	memberships, err := s.repo.ListMembershipsEndingBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]User, len(users))
	for _, u := range users {
		byID[u.UserID] = u
	}

	rows := BuildExpiringReport(memberships, byID, from, to, s.now())
	if !cacheable {
		return rows, nil
	}
	if raw, err := json.Marshal(rows); err == nil {
		if err := s.reports.Set(ctx, key, raw); err != nil {
			s.logger.Printf("report cache set %s: %v", key, err)
		}
	}
	return rows, nil
}

// refreshWindows recomputes the now-dependent columns of cached rows.
func (s *Service) refreshWindows(rows []ExpiringMembership) []ExpiringMembership {
	now := s.now()
	for i := range rows {
		rows[i].DaysRemaining = calendar.DaysUntil(now, rows[i].EndDate)
		rows[i].Status = classify(rows[i].DaysRemaining)
	}
	return rows
}

// InactiveUsers lists users without a session in the last lookbackDays days.
func (s *Service) InactiveUsers(ctx context.Context, lookbackDays int) ([]InactiveUser, error) {
	if lookbackDays <= 0 {
		return nil, invalid("days must be a positive number")
	}
	defer observability.ObserveReport("inactive", time.Now())

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.repo.LatestSessionDates(ctx)
	if err != nil {
		return nil, err
	}
	return InactiveUsers(users, latest, InactivityCutoff(s.now(), lookbackDays)), nil
}

// UsersDueForTest lists users whose latest fitness test is missing or stale.
func (s *Service) UsersDueForTest(ctx context.Context) ([]DueForTest, error) {
	defer observability.ObserveReport("due_for_test", time.Now())

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	latest, err := s.repo.LatestFitnessTests(ctx)
	if err != nil {
		return nil, err
	}
	return UsersDueForTest(users, latest, s.now()), nil
}

// RecordFitnessTest stores an assessment with its BMI computed once.
func (s *Service) RecordFitnessTest(ctx context.Context, test FitnessTest) (FitnessTest, error) {
	if err := test.Validate(); err != nil {
		return FitnessTest{}, err
	}
	now := s.now()
	test.ID = uuid.NewString()
	test.Date = test.Date.UTC()
	test.PhysicalData.BMI = ComputeBMI(test.PhysicalData.WeightKg, test.PhysicalData.Height)
	test.CreatedAt = now
	test.UpdatedAt = now
	if err := s.repo.CreateFitnessTest(ctx, test); err != nil {
		return FitnessTest{}, err
	}
	observability.RecordCreated("fitness_test", now)
	return test, nil
}

// GetFitnessTest fetches an assessment by id.
func (s *Service) GetFitnessTest(ctx context.Context, id string) (*FitnessTest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	test, err := s.repo.GetFitnessTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test == nil {
		return nil, ErrFitnessTestNotFound
	}
	return test, nil
}

// ListFitnessTestsByUser returns a user's assessments, newest first. An empty result
// is reported as ErrFitnessTestNotFound.
func (s *Service) ListFitnessTestsByUser(ctx context.Context, userID string, from, to *time.Time) ([]FitnessTest, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user_id is required")
	}
	tests, err := s.repo.ListFitnessTestsByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, ErrFitnessTestNotFound
	}
	return tests, nil
}
