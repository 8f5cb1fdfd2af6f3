package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"example.com/gym/internal/domain"
	"example.com/gym/internal/persistence/memory"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	service := domain.NewService(memory.NewSeededRepository(), nil)
	mux := http.NewServeMux()
	NewHandler(service).RegisterRoutes(mux)
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
}

func userPayload(id, phone string) UpsertUserRequest {
	return UpsertUserRequest{
		UserID:           id,
		Name:             "Member " + id,
		PhoneNo:          phone,
		Email:            id + "@example.com",
		Gender:           domain.GenderMale,
		Age:              28,
		FitnessGoal:      "Weight loss",
		EmergencyContact: "9999999999",
	}
}

func TestUserLifecycle(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/api/user", userPayload("u1", "9876543210"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}
	var created domain.User
	decodeBody(t, rr, &created)
	if created.Injury == nil || created.Disease == nil {
		t.Fatalf("expected empty lists, got %+v", created)
	}

	rr = do(t, mux, http.MethodGet, "/api/user/u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/user/by-phone/9876543210", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var byPhone domain.User
	decodeBody(t, rr, &byPhone)
	if byPhone.UserID != "u1" {
		t.Fatalf("expected u1 got %q", byPhone.UserID)
	}

	rr = do(t, mux, http.MethodGet, "/api/user/ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
	var msg map[string]string
	decodeBody(t, rr, &msg)
	if msg["msg"] != "User not found" {
		t.Fatalf("unexpected body %v", msg)
	}

	rr = do(t, mux, http.MethodGet, "/api/users", nil)
	var users []domain.User
	decodeBody(t, rr, &users)
	if len(users) != 1 {
		t.Fatalf("expected 1 user got %d", len(users))
	}
}

func TestUpsertUserValidation(t *testing.T) {
	mux := newTestMux(t)

	bad := userPayload("u1", "123")
	rr := do(t, mux, http.MethodPost, "/api/user", bad)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/user", bytes.NewBufferString("{not json"))
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body got %d", rr.Code)
	}
}

func TestMembershipEndpoints(t *testing.T) {
	mux := newTestMux(t)
	do(t, mux, http.MethodPost, "/api/user", userPayload("u1", "9876543210"))

	rr := do(t, mux, http.MethodGet, "/api/membership/u1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}

	start := time.Now().UTC().AddDate(0, 0, -5).Format("2006-01-02")
	rr = do(t, mux, http.MethodPost, "/api/membership", CreateMembershipRequest{UserID: "u1", Duration: 3, StartDate: start, Money: 90})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/membership/u1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var active domain.ActiveMembership
	decodeBody(t, rr, &active)
	if active.Status != domain.MembershipActive {
		t.Fatalf("expected active got %q", active.Status)
	}

	rr = do(t, mux, http.MethodPost, "/api/membership", CreateMembershipRequest{UserID: "ghost", Duration: 1, StartDate: start})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodPost, "/api/membership", CreateMembershipRequest{UserID: "u1", Duration: 2, StartDate: start})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid duration got %d", rr.Code)
	}
}

func TestExpiringMembershipsQueryValidation(t *testing.T) {
	mux := newTestMux(t)

	cases := map[string]string{
		"/api/users/expiring":                    "Month and year are required",
		"/api/users/expiring?month=7":            "Month and year are required",
		"/api/users/expiring?month=x&year=2024":  "Invalid month or year",
		"/api/users/expiring?month=13&year=2024": "Invalid month or year",
	}
	for target, want := range cases {
		rr := do(t, mux, http.MethodGet, target, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, rr.Code)
		}
		var msg map[string]string
		decodeBody(t, rr, &msg)
		if msg["msg"] != want {
			t.Fatalf("%s: expected %q got %q", target, want, msg["msg"])
		}
	}

	rr := do(t, mux, http.MethodGet, "/api/users/expiring?month=7&year=2024", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if got := bytes.TrimSpace(rr.Body.Bytes()); string(got) != "[]" {
		t.Fatalf("expected empty array got %s", got)
	}
}

func TestWorkoutEndpoints(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/api/workout", CreateWorkoutRequest{
		UserID:       "u1",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-31",
		RecurringDay: "Monday",
		Exercises:    []domain.WorkoutExercise{{Name: "Push-up", Sets: 3}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/workouts/by-date?user_id=u1&date=2024-01-08", nil)
	var matches []domain.Workout
	decodeBody(t, rr, &matches)
	if len(matches) != 1 {
		t.Fatalf("expected one workout got %d", len(matches))
	}

	rr = do(t, mux, http.MethodGet, "/api/workouts/by-date?user_id=u1&date=2024-01-09", nil)
	decodeBody(t, rr, &matches)
	if len(matches) != 0 {
		t.Fatalf("expected no workout on Tuesday got %d", len(matches))
	}

	rr = do(t, mux, http.MethodGet, "/api/workouts/by-date?user_id=u1", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/workouts?user_id=u1&recurring_day=Monday", nil)
	decodeBody(t, rr, &matches)
	if len(matches) != 1 {
		t.Fatalf("expected one workout got %d", len(matches))
	}

	rr = do(t, mux, http.MethodGet, "/api/workouts?start_date=nope", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad date got %d", rr.Code)
	}
}

func TestSessionEndpoints(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/api/session", LogSessionRequest{UserID: "u1", Date: "2024-03-01"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	var msg map[string]string
	decodeBody(t, rr, &msg)
	if msg["msg"] != "Missing required fields" {
		t.Fatalf("unexpected message %q", msg["msg"])
	}

	rr = do(t, mux, http.MethodPost, "/api/session", LogSessionRequest{
		UserID:            "u1",
		Date:              "2024-03-01",
		ActualTimeMinutes: 45,
		ExercisesCompleted: []domain.CompletedExercise{
			{Name: "Plank", Sets: 3, Completed: true},
			{Name: "Burpee", Sets: 3},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}
	var session domain.Session
	decodeBody(t, rr, &session)
	if session.CompletedExercisesCount != 1 || session.TotalExercisesCount != 2 {
		t.Fatalf("unexpected derived counts %+v", session)
	}

	rr = do(t, mux, http.MethodGet, "/api/history?user_id=u1", nil)
	var history []domain.Session
	decodeBody(t, rr, &history)
	if len(history) != 1 {
		t.Fatalf("expected 1 session got %d", len(history))
	}
}

func TestExerciseCatalog(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodGet, "/api/exercises?focus_area=Core", nil)
	var exercises []domain.Exercise
	decodeBody(t, rr, &exercises)
	if len(exercises) != 1 || exercises[0].Name != "Plank" {
		t.Fatalf("unexpected catalog %+v", exercises)
	}

	rr = do(t, mux, http.MethodPost, "/api/exercises", UpsertExerciseRequest{Name: "Lunge", FocusArea: "Legs"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing description got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodPost, "/api/exercises", UpsertExerciseRequest{Name: "Lunge", Description: "Alternating forward lunge", FocusArea: "Legs"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(t, mux, http.MethodGet, "/api/exercises?focus_area=Legs", nil)
	decodeBody(t, rr, &exercises)
	if len(exercises) != 2 {
		t.Fatalf("expected 2 leg exercises got %d", len(exercises))
	}
}

func TestFitnessTestEndpoints(t *testing.T) {
	mux := newTestMux(t)

	rr := do(t, mux, http.MethodPost, "/api/fitness-test", RecordFitnessTestRequest{
		UserID: "u1",
		Date:   "2024-05-01",
		Goal:   "Endurance",
		PhysicalData: domain.PhysicalData{
			WeightKg: 70,
			Height:   domain.Height{Feet: 5, Inches: 10},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rr.Code, rr.Body.String())
	}
	var saved domain.FitnessTest
	decodeBody(t, rr, &saved)
	if saved.PhysicalData.BMI == nil || *saved.PhysicalData.BMI != 22.14 {
		t.Fatalf("unexpected bmi %v", saved.PhysicalData.BMI)
	}

	rr = do(t, mux, http.MethodGet, "/api/fitness-tests/"+saved.ID, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/fitness-tests/not-a-uuid", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	var msg map[string]string
	decodeBody(t, rr, &msg)
	if msg["message"] != "Invalid ID" {
		t.Fatalf("unexpected body %v", msg)
	}

	rr = do(t, mux, http.MethodGet, "/api/fitness-tests/user/u1?start_date=2024-04-01&end_date=2024-06-01", nil)
	var tests []domain.FitnessTest
	decodeBody(t, rr, &tests)
	if len(tests) != 1 {
		t.Fatalf("expected 1 test got %d", len(tests))
	}

	rr = do(t, mux, http.MethodGet, "/api/fitness-tests/user/nobody", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
	decodeBody(t, rr, &msg)
	if msg["message"] != "No fitness tests found for user" {
		t.Fatalf("unexpected body %v", msg)
	}

	rr = do(t, mux, http.MethodPost, "/api/fitness-test", RecordFitnessTestRequest{UserID: "u1"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}
	decodeBody(t, rr, &msg)
	if msg["message"] != "Invalid data" || msg["error"] == "" {
		t.Fatalf("unexpected body %v", msg)
	}
}

func TestDerivedUserReports(t *testing.T) {
	mux := newTestMux(t)
	do(t, mux, http.MethodPost, "/api/user", userPayload("u1", "9876543210"))

	rr := do(t, mux, http.MethodGet, "/api/users/inactive?days=30", nil)
	var inactive []domain.InactiveUser
	decodeBody(t, rr, &inactive)
	if len(inactive) != 1 {
		t.Fatalf("expected 1 inactive user got %d", len(inactive))
	}

	rr = do(t, mux, http.MethodGet, "/api/users/inactive?days=abc", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rr.Code)
	}

	rr = do(t, mux, http.MethodGet, "/api/users/due-for-test", nil)
	var due []domain.DueForTest
	decodeBody(t, rr, &due)
	if len(due) != 1 || due[0].LastTestDate != "no test recorded" {
		t.Fatalf("unexpected due list %+v", due)
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(t)
	rr := do(t, mux, http.MethodGet, "/healthz", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("unexpected healthz response %d %q", rr.Code, rr.Body.String())
	}
}
