// Package postgres provides the Postgres-backed gym store. Each aggregate is stored as a
// JSONB document; domain events are written to the outbox in the same transaction.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/gym/internal/domain"
	"example.com/gym/internal/events"
)

// Repository implements domain.Repository on Postgres.
type Repository struct {
	pool   *pgxpool.Pool
	outbox bool
}

var _ domain.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithOutbox records a domain event in the outbox table for every write.
func WithOutbox() Option {
	return func(r *Repository) {
		r.outbox = true
	}
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool, opts ...Option) *Repository {
	r := &Repository{pool: pool}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// withTx runs fn in a transaction, committing when it returns nil.
func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, eventType, aggregateID, partitionKey string, payload any) error {
	if !r.outbox {
		return nil
	}
	route, ok := events.Lookup(eventType)
	if !ok {
		return fmt.Errorf("unknown event type: %s", eventType)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err = tx.Exec(ctx, stmt, route.AggregateType, aggregateID, eventType, route.Topic, route.SchemaSubject, partitionKey, body)
	return err
}

// UpsertUser implements domain.UserRepository. The stored created_at survives updates.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	doc, err := json.Marshal(user)
	if err != nil {
		return domain.User{}, err
	}

	var stored domain.User
	err = r.withTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO gym_users (user_id, phone_no, doc, created_at, updated_at)
            VALUES ($1,$2,$3,$4,$5)
            ON CONFLICT (user_id) DO UPDATE SET
                phone_no = EXCLUDED.phone_no,
                doc = jsonb_set(EXCLUDED.doc, '{created_at}', gym_users.doc->'created_at'),
                updated_at = EXCLUDED.updated_at
            RETURNING doc`

		var raw []byte
		if err := tx.QueryRow(ctx, stmt, user.UserID, user.PhoneNo, doc, user.CreatedAt, user.UpdatedAt).Scan(&raw); err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &stored); err != nil {
			return fmt.Errorf("decode user: %w", err)
		}
		return r.insertOutbox(ctx, tx, events.TypeUserUpserted, stored.UserID, stored.UserID, events.NewUserUpserted(stored))
	})
	if err != nil {
		return domain.User{}, err
	}
	return stored, nil
}

// GetUser implements domain.UserRepository.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return queryOne[domain.User](ctx, r.pool, `SELECT doc FROM gym_users WHERE user_id = $1`, userID)
}

// GetUserByPhone implements domain.UserRepository.
func (r *Repository) GetUserByPhone(ctx context.Context, phoneNo string) (*domain.User, error) {
	return queryOne[domain.User](ctx, r.pool, `SELECT doc FROM gym_users WHERE phone_no = $1 ORDER BY seq LIMIT 1`, phoneNo)
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return queryDocs[domain.User](ctx, r.pool, `SELECT doc FROM gym_users ORDER BY seq`)
}

// CreateMembership implements domain.MembershipRepository. The derived end date is stored
// alongside the document so range scans can use an index.
func (r *Repository) CreateMembership(ctx context.Context, membership domain.Membership) error {
	doc, err := json.Marshal(membership)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO gym_memberships (membership_id, user_id, start_date, end_date, doc)
            VALUES ($1,$2,$3,$4,$5)`
		if _, err := tx.Exec(ctx, stmt, membership.ID, membership.UserID, membership.StartDate, membership.EndDate(), doc); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, events.TypeMembershipCreated, membership.ID, membership.UserID, events.NewMembershipCreated(membership))
	})
}

// ListMembershipsByUser implements domain.MembershipRepository.
func (r *Repository) ListMembershipsByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	return queryDocs[domain.Membership](ctx, r.pool, `SELECT doc FROM gym_memberships WHERE user_id = $1 ORDER BY seq`, userID)
}

// ListMembershipsEndingBetween implements domain.MembershipRepository.
func (r *Repository) ListMembershipsEndingBetween(ctx context.Context, from, to time.Time) ([]domain.Membership, error) {
	return queryDocs[domain.Membership](ctx, r.pool,
		`SELECT doc FROM gym_memberships WHERE end_date >= $1 AND end_date < $2 ORDER BY seq`, from, to)
}

// ListExercises implements domain.ExerciseRepository.
func (r *Repository) ListExercises(ctx context.Context, focusArea string) ([]domain.Exercise, error) {
	return queryDocs[domain.Exercise](ctx, r.pool,
		`SELECT doc FROM gym_exercises WHERE ($1 = '' OR focus_area = $1) ORDER BY seq`, focusArea)
}

// UpsertExercise implements domain.ExerciseRepository.
func (r *Repository) UpsertExercise(ctx context.Context, exercise domain.Exercise) error {
	doc, err := json.Marshal(exercise)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO gym_exercises (exercise_id, focus_area, doc) VALUES ($1,$2,$3)
         ON CONFLICT (exercise_id) DO UPDATE SET focus_area = EXCLUDED.focus_area, doc = EXCLUDED.doc`,
		exercise.ID, exercise.FocusArea, doc)
	return err
}

// CreateWorkout implements domain.WorkoutRepository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	doc, err := json.Marshal(workout)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO gym_workouts (workout_id, user_id, recurring_day, start_date, end_date, doc)
            VALUES ($1,$2,$3,$4,$5,$6)`
		if _, err := tx.Exec(ctx, stmt, workout.ID, workout.UserID, workout.RecurringDay, workout.StartDate, workout.EndDate, doc); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, events.TypeWorkoutPlanned, workout.ID, workout.UserID, events.NewWorkoutPlanned(workout))
	})
}

// ListWorkouts implements domain.WorkoutRepository.
func (r *Repository) ListWorkouts(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	query, args := workoutQuery(filter)
	return queryDocs[domain.Workout](ctx, r.pool, query, args...)
}

// workoutQuery translates filter into SQL with the same semantics as WorkoutFilter.Matches.
func workoutQuery(filter domain.WorkoutFilter) (string, []any) {
	conditions := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.RecurringDay != "" {
		add("recurring_day = $%d", filter.RecurringDay)
	}
	if filter.HasRange() {
		add("start_date <= $%d", *filter.EndDate)
		add("end_date >= $%d", *filter.StartDate)
	}

	query := `SELECT doc FROM gym_workouts`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	return query + " ORDER BY start_date DESC, seq", args
}

// ListWorkoutsForDay implements domain.WorkoutRepository.
func (r *Repository) ListWorkoutsForDay(ctx context.Context, userID, day string) ([]domain.Workout, error) {
	return queryDocs[domain.Workout](ctx, r.pool,
		`SELECT doc FROM gym_workouts WHERE user_id = $1 AND recurring_day = $2 ORDER BY seq`, userID, day)
}

// CreateSession implements domain.SessionRepository.
func (r *Repository) CreateSession(ctx context.Context, session domain.Session) error {
	doc, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO gym_sessions (session_id, user_id, session_date, doc) VALUES ($1,$2,$3,$4)`
		if _, err := tx.Exec(ctx, stmt, session.ID, session.UserID, session.Date, doc); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, events.TypeSessionLogged, session.ID, session.UserID, events.NewSessionLogged(session))
	})
}

// ListSessions implements domain.SessionRepository.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	return queryDocs[domain.Session](ctx, r.pool,
		`SELECT doc FROM gym_sessions WHERE ($1 = '' OR user_id = $1) ORDER BY session_date DESC, seq`, userID)
}

// LatestSessionDates implements domain.SessionRepository with a single grouped query.
func (r *Repository) LatestSessionDates(ctx context.Context) (map[string]time.Time, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, MAX(session_date) FROM gym_sessions GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var userID string
		var latest time.Time
		if err := rows.Scan(&userID, &latest); err != nil {
			return nil, err
		}
		out[userID] = latest.UTC()
	}
	return out, rows.Err()
}

// CreateFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) CreateFitnessTest(ctx context.Context, test domain.FitnessTest) error {
	doc, err := json.Marshal(test)
	if err != nil {
		return err
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		const stmt = `INSERT INTO gym_fitness_tests (test_id, user_id, test_date, doc) VALUES ($1,$2,$3,$4)`
		if _, err := tx.Exec(ctx, stmt, test.ID, test.UserID, test.Date, doc); err != nil {
			return err
		}
		return r.insertOutbox(ctx, tx, events.TypeFitnessTestRecorded, test.ID, test.UserID, events.NewFitnessTestRecorded(test))
	})
}

// GetFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) GetFitnessTest(ctx context.Context, id string) (*domain.FitnessTest, error) {
	return queryOne[domain.FitnessTest](ctx, r.pool, `SELECT doc FROM gym_fitness_tests WHERE test_id = $1`, id)
}

// ListFitnessTestsByUser implements domain.FitnessTestRepository.
func (r *Repository) ListFitnessTestsByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.FitnessTest, error) {
	return queryDocs[domain.FitnessTest](ctx, r.pool,
		`SELECT doc FROM gym_fitness_tests
          WHERE user_id = $1
            AND ($2::timestamptz IS NULL OR test_date >= $2)
            AND ($3::timestamptz IS NULL OR test_date <= $3)
          ORDER BY test_date DESC, seq`,
		userID, from, to)
}

// LatestFitnessTests implements domain.FitnessTestRepository.
func (r *Repository) LatestFitnessTests(ctx context.Context) (map[string]domain.FitnessTest, error) {
	tests, err := queryDocs[domain.FitnessTest](ctx, r.pool,
		`SELECT DISTINCT ON (user_id) doc FROM gym_fitness_tests ORDER BY user_id, test_date DESC, seq`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.FitnessTest, len(tests))
	for _, t := range tests {
		out[t.UserID] = t
	}
	return out, nil
}

func queryDocs[T any](ctx context.Context, q querier, sql string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	raws, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}

func queryOne[T any](ctx context.Context, q querier, sql string, args ...any) (*T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	raw, err := pgx.CollectOneRow(rows, pgx.RowTo[[]byte])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &v, nil
}
