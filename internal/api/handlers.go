// Package api exposes HTTP handlers for the gym service.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"example.com/gym/internal/domain"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
	logger  *log.Logger
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{
		service: service,
		logger:  log.New(log.Writer(), "[api] ", log.LstdFlags|log.Lshortfile),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/exercises", h.listExercises)
	mux.HandleFunc("POST /api/exercises", h.upsertExercise)

	mux.HandleFunc("POST /api/workout", h.createWorkout)
	mux.HandleFunc("GET /api/workouts/by-date", h.workoutsByDate)
	mux.HandleFunc("GET /api/workouts", h.listWorkouts)

	mux.HandleFunc("GET /api/history", h.listHistory)
	mux.HandleFunc("POST /api/session", h.logSession)

	mux.HandleFunc("GET /api/user/by-phone/{phone_no}", h.getUserByPhone)
	mux.HandleFunc("GET /api/user/{user_id}", h.getUser)
	mux.HandleFunc("POST /api/user", h.upsertUser)
	mux.HandleFunc("GET /api/users", h.listUsers)
	mux.HandleFunc("GET /api/users/expiring", h.expiringMemberships)
	mux.HandleFunc("GET /api/users/inactive", h.inactiveUsers)
	mux.HandleFunc("GET /api/users/due-for-test", h.usersDueForTest)

	mux.HandleFunc("POST /api/membership", h.createMembership)
	mux.HandleFunc("GET /api/membership/{user_id}", h.activeMembership)

	mux.HandleFunc("POST /api/fitness-test", h.recordFitnessTest)
	mux.HandleFunc("GET /api/fitness-tests/user/{user_id}", h.fitnessTestsByUser)
	mux.HandleFunc("GET /api/fitness-tests/{id}", h.getFitnessTest)

	mux.HandleFunc("GET /healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) listExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.service.ListExercises(r.Context(), r.URL.Query().Get("focus_area"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (h *Handler) upsertExercise(w http.ResponseWriter, r *http.Request) {
	var req UpsertExerciseRequest
	if !decode(w, r, &req) {
		return
	}
	exercise, err := h.service.UpsertExercise(r.Context(), req.toDomain())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exercise": exercise})
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkoutRequest
	if !decode(w, r, &req) {
		return
	}
	workout, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.service.CreateWorkout(r.Context(), workout)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) workoutsByDate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	userID := strings.TrimSpace(query.Get("user_id"))
	rawDate := query.Get("date")
	if userID == "" || strings.TrimSpace(rawDate) == "" {
		writeError(w, http.StatusBadRequest, "date and user_id are required")
		return
	}
	target, err := parseOptionalDate(rawDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workout, err := h.service.WorkoutForDate(r.Context(), userID, target)
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]domain.Workout, 0, 1)
	if workout != nil {
		out = append(out, *workout)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	start, err := parseDatePtr(query.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	end, err := parseDatePtr(query.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	workouts, err := h.service.ListWorkouts(r.Context(), domain.WorkoutFilter{
		UserID:       strings.TrimSpace(query.Get("user_id")),
		RecurringDay: strings.TrimSpace(query.Get("recurring_day")),
		StartDate:    start,
		EndDate:      end,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) logSession(w http.ResponseWriter, r *http.Request) {
	var req LogSessionRequest
	if !decode(w, r, &req) {
		return
	}
	input, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	session, err := h.service.LogSession(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) getUserByPhone(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByPhone(r.Context(), r.PathValue("phone_no"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) upsertUser(w http.ResponseWriter, r *http.Request) {
	var req UpsertUserRequest
	if !decode(w, r, &req) {
		return
	}
	user, err := h.service.UpsertUser(r.Context(), req.toDomain())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) expiringMemberships(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	rawMonth, rawYear := strings.TrimSpace(query.Get("month")), strings.TrimSpace(query.Get("year"))
	if rawMonth == "" || rawYear == "" {
		writeError(w, http.StatusBadRequest, "Month and year are required")
		return
	}
	month, monthErr := strconv.Atoi(rawMonth)
	year, yearErr := strconv.Atoi(rawYear)
	if monthErr != nil || yearErr != nil || month < 1 || month > 12 || year < 1 {
		writeError(w, http.StatusBadRequest, "Invalid month or year")
		return
	}

	rows, err := h.service.ExpiringMemberships(r.Context(), month, year)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) inactiveUsers(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("days")))
	if err != nil || days <= 0 {
		writeError(w, http.StatusBadRequest, "days must be a positive number")
		return
	}
	rows, err := h.service.InactiveUsers(r.Context(), days)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) usersDueForTest(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.UsersDueForTest(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *Handler) createMembership(w http.ResponseWriter, r *http.Request) {
	var req CreateMembershipRequest
	if !decode(w, r, &req) {
		return
	}
	membership, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.service.CreateMembership(r.Context(), membership)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) activeMembership(w http.ResponseWriter, r *http.Request) {
	active, err := h.service.ActiveMembership(r.Context(), r.PathValue("user_id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, active)
}

func (h *Handler) recordFitnessTest(w http.ResponseWriter, r *http.Request) {
	var req RecordFitnessTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}
	test, err := req.toDomain()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}
	saved, err := h.service.RecordFitnessTest(r.Context(), test)
	if err != nil {
		h.failFitness(w, err, "Fitness test not found")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *Handler) getFitnessTest(w http.ResponseWriter, r *http.Request) {
	test, err := h.service.GetFitnessTest(r.Context(), r.PathValue("id"))
	if err != nil {
		h.failFitness(w, err, "Fitness test not found")
		return
	}
	writeJSON(w, http.StatusOK, test)
}

func (h *Handler) fitnessTestsByUser(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	from, err := parseDatePtr(query.Get("start_date"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}
	to, err := parseDatePtr(query.Get("end_date"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid data", err.Error())
		return
	}

	tests, err := h.service.ListFitnessTestsByUser(r.Context(), r.PathValue("user_id"), from, to)
	if err != nil {
		h.failFitness(w, err, "No fitness tests found for user")
		return
	}
	writeJSON(w, http.StatusOK, tests)
}

// fail maps domain errors onto {"msg": ...} responses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, domain.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, domain.ErrMembershipNotFound):
		writeError(w, http.StatusNotFound, "No active membership found")
	default:
		h.logger.Printf("request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

// failFitness maps domain errors onto {"message": ...} responses used by fitness-test routes.
func (h *Handler) failFitness(w http.ResponseWriter, err error, notFound string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeMessage(w, http.StatusBadRequest, "Invalid data", verr.Message)
	case errors.Is(err, domain.ErrInvalidID):
		writeMessage(w, http.StatusBadRequest, "Invalid ID", "")
	case errors.Is(err, domain.ErrFitnessTestNotFound):
		writeMessage(w, http.StatusNotFound, notFound, "")
	default:
		h.logger.Printf("fitness test request failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Server error", "")
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "unable to parse body")
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"msg": msg})
}

func writeMessage(w http.ResponseWriter, status int, message, detail string) {
	payload := map[string]string{"message": message}
	if detail != "" {
		payload["error"] = detail
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
