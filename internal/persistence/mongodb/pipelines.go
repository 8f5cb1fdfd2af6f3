package mongodb

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"example.com/gym/internal/domain"
)

// storeOrder sorts by insertion; ObjectIDs generated by the driver are monotonic per process.
var storeOrder = bson.D{{Key: "_id", Value: 1}}

// membershipsEndingBetween derives each membership's end date with $dateAdd, which clamps
// to the last day of the month the same way calendar.AddMonths does, and keeps those in
// [from, to).
func membershipsEndingBetween(from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{{Key: "end_date", Value: bson.D{{Key: "$dateAdd", Value: bson.D{
			{Key: "startDate", Value: "$start_date"},
			{Key: "unit", Value: "month"},
			{Key: "amount", Value: "$duration"},
		}}}}}}},
		{{Key: "$match", Value: bson.D{{Key: "end_date", Value: bson.D{
			{Key: "$gte", Value: from},
			{Key: "$lt", Value: to},
		}}}}},
		{{Key: "$sort", Value: storeOrder}},
		{{Key: "$unset", Value: "end_date"}},
	}
}

func latestSessionDates() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "latest", Value: bson.D{{Key: "$max", Value: "$date"}}},
		}}},
	}
}

// latestFitnessTests keeps the first stored test among those sharing a user's latest date.
func latestFitnessTests() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$user_id"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
	}
}

func workoutFilter(filter domain.WorkoutFilter) bson.D {
	query := bson.D{}
	if filter.UserID != "" {
		query = append(query, bson.E{Key: "user_id", Value: filter.UserID})
	}
	if filter.RecurringDay != "" {
		query = append(query, bson.E{Key: "recurring_day", Value: filter.RecurringDay})
	}
	if filter.HasRange() {
		query = append(query,
			bson.E{Key: "start_date", Value: bson.D{{Key: "$lte", Value: *filter.EndDate}}},
			bson.E{Key: "end_date", Value: bson.D{{Key: "$gte", Value: *filter.StartDate}}},
		)
	}
	return query
}

func dateRange(userID string, from, to *time.Time) bson.D {
	query := bson.D{{Key: "user_id", Value: userID}}
	bounds := bson.D{}
	if from != nil {
		bounds = append(bounds, bson.E{Key: "$gte", Value: *from})
	}
	if to != nil {
		bounds = append(bounds, bson.E{Key: "$lte", Value: *to})
	}
	if len(bounds) > 0 {
		query = append(query, bson.E{Key: "date", Value: bounds})
	}
	return query
}
