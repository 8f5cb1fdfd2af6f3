package outbox

import "example.com/gym/internal/events"

const userUpsertedSchema = `{
  "type": "object",
  "title": "UserUpserted",
  "properties": {
    "user_id": {"type": "string"},
    "name": {"type": "string"},
    "phone_no": {"type": "string"},
    "email": {"type": "string"},
    "fitness_goal": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "name", "phone_no", "email", "occurred_at"],
  "additionalProperties": false
}`

const membershipCreatedSchema = `{
  "type": "object",
  "title": "MembershipCreated",
  "properties": {
    "membership_id": {"type": "string"},
    "user_id": {"type": "string"},
    "duration": {"type": "integer", "enum": [1, 3, 6, 12]},
    "start_date": {"type": "string", "format": "date-time"},
    "end_date": {"type": "string", "format": "date-time"},
    "money": {"type": "number"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["membership_id", "user_id", "duration", "start_date", "end_date", "occurred_at"],
  "additionalProperties": false
}`

const workoutPlannedSchema = `{
  "type": "object",
  "title": "WorkoutPlanned",
  "properties": {
    "workout_id": {"type": "string"},
    "user_id": {"type": "string"},
    "recurring_day": {"type": "string"},
    "start_date": {"type": "string", "format": "date-time"},
    "end_date": {"type": "string", "format": "date-time"},
    "exercise_count": {"type": "integer"}
  },
  "required": ["workout_id", "user_id", "recurring_day", "start_date", "end_date"],
  "additionalProperties": false
}`

const sessionLoggedSchema = `{
  "type": "object",
  "title": "SessionLogged",
  "properties": {
    "session_id": {"type": "string"},
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date-time"},
    "actual_time_minutes": {"type": "number"},
    "completed_exercises_count": {"type": "integer"},
    "total_exercises_count": {"type": "integer"}
  },
  "required": ["session_id", "user_id", "date", "actual_time_minutes"],
  "additionalProperties": false
}`

const fitnessTestRecordedSchema = `{
  "type": "object",
  "title": "FitnessTestRecorded",
  "properties": {
    "test_id": {"type": "string"},
    "user_id": {"type": "string"},
    "date": {"type": "string", "format": "date-time"},
    "goal": {"type": "string"},
    "bmi": {"type": ["number", "null"]}
  },
  "required": ["test_id", "user_id", "date"],
  "additionalProperties": false
}`

// schemaCatalog maps event type to the JSON schema registered for it.
var schemaCatalog = map[string]string{
	events.TypeUserUpserted:        userUpsertedSchema,
	events.TypeMembershipCreated:   membershipCreatedSchema,
	events.TypeWorkoutPlanned:      workoutPlannedSchema,
	events.TypeSessionLogged:       sessionLoggedSchema,
	events.TypeFitnessTestRecorded: fitnessTestRecordedSchema,
}
