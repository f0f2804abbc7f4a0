package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"campus-events/db"
	"campus-events/middleware"
	"campus-events/models"
	"campus-events/monitoring"
	"campus-events/services"
)

// Options toggles parts of the HTTP surface.
type Options struct {
	Version      string
	EnforceRoles bool
	Metrics      bool
}

type Handlers struct {
	DB            *db.DB
	Events        *services.EventService
	Registrations *services.RegistrationService
	Attendance    *services.AttendanceService
	Feedback      *services.FeedbackService
	Auth          *services.AuthService
	Logger        *slog.Logger
	opts          Options
}

// New wires a Handlers around store with the default services.
func New(store *db.DB, auth *services.AuthService, logger *slog.Logger, opts Options) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		DB:            store,
		Events:        services.NewEventService(store),
		Registrations: services.NewRegistrationService(store, logger),
		Attendance:    services.NewAttendanceService(store, logger),
		Feedback:      services.NewFeedbackService(store, logger),
		Auth:          auth,
		Logger:        logger,
		opts:          opts,
	}
}

// Routes registers every endpoint on mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	admin := middleware.RBAC(h.opts.EnforceRoles, models.RoleAdmin)
	student := middleware.RBAC(h.opts.EnforceRoles, models.RoleStudent)

	mux.HandleFunc("GET /{$}", h.HandleInfo)
	mux.HandleFunc("GET /health", h.HandleHealth)
	if h.opts.Metrics {
		mux.Handle("GET /metrics", monitoring.Handler())
	}

	mux.HandleFunc("GET /colleges", h.HandleListColleges)
	mux.Handle("POST /colleges", admin(http.HandlerFunc(h.HandleCreateCollege)))

	mux.HandleFunc("POST /auth/signup-admin", h.HandleSignupAdmin)
	mux.HandleFunc("POST /auth/signup-student", h.HandleSignupStudent)
	mux.HandleFunc("POST /auth/login", h.HandleLogin)
	mux.HandleFunc("POST /auth/logout", h.HandleLogout)

	mux.HandleFunc("GET /events", h.HandleListEvents)
	mux.Handle("POST /events", admin(http.HandlerFunc(h.HandleCreateEvent)))
	mux.Handle("GET /students", admin(http.HandlerFunc(h.HandleListStudents)))
	mux.Handle("GET /registrations", admin(http.HandlerFunc(h.HandleListRegistrations)))

	mux.Handle("POST /register", student(http.HandlerFunc(h.HandleRegister)))
	mux.Handle("POST /attendance", admin(http.HandlerFunc(h.HandleMarkAttendance)))
	mux.Handle("POST /feedback", student(http.HandlerFunc(h.HandleSubmitFeedback)))

	mux.Handle("GET /reports/event-popularity", admin(http.HandlerFunc(h.HandleEventPopularity)))
	mux.Handle("GET /reports/attendance", admin(http.HandlerFunc(h.HandleAttendanceReport)))
	mux.Handle("GET /reports/student-participation", admin(http.HandlerFunc(h.HandleStudentParticipation)))
	mux.Handle("GET /reports/feedback", admin(http.HandlerFunc(h.HandleFeedbackReport)))
	mux.Handle("GET /reports/top-students", admin(http.HandlerFunc(h.HandleTopStudents)))
}

// SendJSON is a helper for sending JSON responses
func SendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// errorStatus maps a service error onto an HTTP status and a stable code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidRating):
		return http.StatusBadRequest, "invalid_rating"
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, services.ErrCapacityExceeded):
		return http.StatusConflict, "capacity_exceeded"
	case errors.Is(err, services.ErrAlreadyRegistered):
		return http.StatusConflict, "already_registered"
	case errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict, "email_taken"
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError replies with the mapped status. Store failures are logged and
// hidden behind a generic message.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	}
	SendJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func badRequest(w http.ResponseWriter, msg string) {
	SendJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg, Code: "validation_error"})
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst); err != nil {
		badRequest(w, "invalid JSON body")
		return false
	}
	return true
}

// HandleInfo handles GET /
func (h *Handlers) HandleInfo(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]string{
		"message": "Campus Events API",
		"version": h.opts.Version,
		"status":  "running",
	})
}

// HandleHealth handles GET /health
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(r.Context()); err != nil {
		h.Logger.Warn("health check failed", "error", err)
		SendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryID(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
