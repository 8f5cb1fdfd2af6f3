// Package mongodb provides the MongoDB-backed gym store.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"example.com/gym/internal/domain"
)

const (
	usersCollection        = "users"
	membershipsCollection  = "memberships"
	exercisesCollection    = "exercises"
	workoutsCollection     = "workouts"
	sessionsCollection     = "histories"
	fitnessTestsCollection = "fitnesstests"
)

// Repository implements domain.Repository on a MongoDB database.
type Repository struct {
	db *mongo.Database
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository constructs a Repository over db.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{db: db}
}

// EnsureIndexes creates the lookup indexes. It is safe to call on every start.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "phone_no", Value: 1}}},
		},
		membershipsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		exercisesCollection: {
			{Keys: bson.D{{Key: "exercise_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "focus_area", Value: 1}}},
		},
		workoutsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "recurring_day", Value: 1}}},
		},
		sessionsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		},
		fitnessTestsCollection: {
			{Keys: bson.D{{Key: "test_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
		},
	}
	for name, models := range indexes {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

// UpsertUser implements domain.UserRepository. created_at is only written on insert.
func (r *Repository) UpsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	fields, err := toDocument(user)
	if err != nil {
		return domain.User{}, err
	}
	delete(fields, "created_at")

	update := bson.M{
		"$set":         fields,
		"$setOnInsert": bson.M{"created_at": user.CreatedAt},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var stored domain.User
	err = r.db.Collection(usersCollection).
		FindOneAndUpdate(ctx, bson.M{"user_id": user.UserID}, update, opts).
		Decode(&stored)
	if err != nil {
		return domain.User{}, err
	}
	return stored, nil
}

// GetUser implements domain.UserRepository.
func (r *Repository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.db.Collection(usersCollection), bson.M{"user_id": userID})
}

// GetUserByPhone implements domain.UserRepository.
func (r *Repository) GetUserByPhone(ctx context.Context, phoneNo string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.db.Collection(usersCollection), bson.M{"phone_no": phoneNo})
}

// ListUsers implements domain.UserRepository.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	return find[domain.User](ctx, r.db.Collection(usersCollection), bson.D{}, storeOrder)
}

// CreateMembership implements domain.MembershipRepository.
func (r *Repository) CreateMembership(ctx context.Context, membership domain.Membership) error {
	_, err := r.db.Collection(membershipsCollection).InsertOne(ctx, membership)
	return err
}

// ListMembershipsByUser implements domain.MembershipRepository.
func (r *Repository) ListMembershipsByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	return find[domain.Membership](ctx, r.db.Collection(membershipsCollection), bson.D{{Key: "user_id", Value: userID}}, storeOrder)
}

// ListMembershipsEndingBetween implements domain.MembershipRepository.
func (r *Repository) ListMembershipsEndingBetween(ctx context.Context, from, to time.Time) ([]domain.Membership, error) {
	return aggregate[domain.Membership](ctx, r.db.Collection(membershipsCollection), membershipsEndingBetween(from, to))
}

// ListExercises implements domain.ExerciseRepository.
func (r *Repository) ListExercises(ctx context.Context, focusArea string) ([]domain.Exercise, error) {
	filter := bson.D{}
	if focusArea != "" {
		filter = append(filter, bson.E{Key: "focus_area", Value: focusArea})
	}
	return find[domain.Exercise](ctx, r.db.Collection(exercisesCollection), filter, storeOrder)
}

// UpsertExercise implements domain.ExerciseRepository.
func (r *Repository) UpsertExercise(ctx context.Context, exercise domain.Exercise) error {
	_, err := r.db.Collection(exercisesCollection).ReplaceOne(ctx,
		bson.M{"exercise_id": exercise.ID}, exercise, options.Replace().SetUpsert(true))
	return err
}

// CreateWorkout implements domain.WorkoutRepository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	_, err := r.db.Collection(workoutsCollection).InsertOne(ctx, workout)
	return err
}

// ListWorkouts implements domain.WorkoutRepository.
func (r *Repository) ListWorkouts(ctx context.Context, filter domain.WorkoutFilter) ([]domain.Workout, error) {
	sort := bson.D{{Key: "start_date", Value: -1}, {Key: "_id", Value: 1}}
	return find[domain.Workout](ctx, r.db.Collection(workoutsCollection), workoutFilter(filter), sort)
}

// ListWorkoutsForDay implements domain.WorkoutRepository.
func (r *Repository) ListWorkoutsForDay(ctx context.Context, userID, day string) ([]domain.Workout, error) {
	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "recurring_day", Value: day}}
	return find[domain.Workout](ctx, r.db.Collection(workoutsCollection), filter, storeOrder)
}

// CreateSession implements domain.SessionRepository.
func (r *Repository) CreateSession(ctx context.Context, session domain.Session) error {
	_, err := r.db.Collection(sessionsCollection).InsertOne(ctx, session)
	return err
}

// ListSessions implements domain.SessionRepository.
func (r *Repository) ListSessions(ctx context.Context, userID string) ([]domain.Session, error) {
	filter := bson.D{}
	if userID != "" {
		filter = append(filter, bson.E{Key: "user_id", Value: userID})
	}
	sort := bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}
	return find[domain.Session](ctx, r.db.Collection(sessionsCollection), filter, sort)
}

// LatestSessionDates implements domain.SessionRepository.
func (r *Repository) LatestSessionDates(ctx context.Context) (map[string]time.Time, error) {
	type row struct {
		UserID string    `bson:"_id"`
		Latest time.Time `bson:"latest"`
	}
	rows, err := aggregate[row](ctx, r.db.Collection(sessionsCollection), latestSessionDates())
	if err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, rw := range rows {
		out[rw.UserID] = rw.Latest.UTC()
	}
	return out, nil
}

// CreateFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) CreateFitnessTest(ctx context.Context, test domain.FitnessTest) error {
	_, err := r.db.Collection(fitnessTestsCollection).InsertOne(ctx, test)
	return err
}

// GetFitnessTest implements domain.FitnessTestRepository.
func (r *Repository) GetFitnessTest(ctx context.Context, id string) (*domain.FitnessTest, error) {
	return findOne[domain.FitnessTest](ctx, r.db.Collection(fitnessTestsCollection), bson.M{"test_id": id})
}

// ListFitnessTestsByUser implements domain.FitnessTestRepository.
func (r *Repository) ListFitnessTestsByUser(ctx context.Context, userID string, from, to *time.Time) ([]domain.FitnessTest, error) {
	sort := bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: 1}}
	return find[domain.FitnessTest](ctx, r.db.Collection(fitnessTestsCollection), dateRange(userID, from, to), sort)
}

// LatestFitnessTests implements domain.FitnessTestRepository.
func (r *Repository) LatestFitnessTests(ctx context.Context) (map[string]domain.FitnessTest, error) {
	type row struct {
		Doc domain.FitnessTest `bson:"doc"`
	}
	rows, err := aggregate[row](ctx, r.db.Collection(fitnessTestsCollection), latestFitnessTests())
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.FitnessTest, len(rows))
	for _, rw := range rows {
		out[rw.Doc.UserID] = rw.Doc
	}
	return out, nil
}

func toDocument(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var v T
	err := coll.FindOne(ctx, filter, options.FindOne().SetSort(storeOrder)).Decode(&v)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func find[T any](ctx context.Context, coll *mongo.Collection, filter, sort bson.D) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func aggregate[T any](ctx context.Context, coll *mongo.Collection, pipeline mongo.Pipeline) ([]T, error) {
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
