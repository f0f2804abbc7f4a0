package handlers

import (
	"net/http"
)

// TopStudentsLimit caps GET /reports/top-students.
const TopStudentsLimit = 3

// HandleEventPopularity handles GET /reports/event-popularity[?type=]
func (h *Handlers) HandleEventPopularity(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.EventPopularity(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, rows)
}

// HandleAttendanceReport handles GET /reports/attendance
func (h *Handlers) HandleAttendanceReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.AttendanceReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, rows)
}

// HandleStudentParticipation handles GET /reports/student-participation
func (h *Handlers) HandleStudentParticipation(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.StudentParticipation(r.Context(), 0)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, rows)
}

// HandleFeedbackReport handles GET /reports/feedback
func (h *Handlers) HandleFeedbackReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.FeedbackReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, rows)
}

// HandleTopStudents handles GET /reports/top-students
func (h *Handlers) HandleTopStudents(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.StudentParticipation(r.Context(), TopStudentsLimit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, rows)
}
