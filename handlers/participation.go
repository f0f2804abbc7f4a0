package handlers

import (
	"net/http"
)

type RegisterRequest struct {
	StudentID int64 `json:"student_id"`
	EventID   int64 `json:"event_id"`
}

type AttendanceRequest struct {
	StudentID int64  `json:"student_id"`
	EventID   int64  `json:"event_id"`
	Status    string `json:"status"`
}

// FeedbackRequest keeps Rating a pointer so a missing rating is told apart
// from an out-of-range one.
type FeedbackRequest struct {
	StudentID int64  `json:"student_id"`
	EventID   int64  `json:"event_id"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

// HandleRegister handles POST /register
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	reg, err := h.Registrations.Register(r.Context(), req.StudentID, req.EventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, reg)
}

// HandleListRegistrations handles GET /registrations[?event_id=]
func (h *Handlers) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := queryID(r, "event_id")
	if !ok {
		badRequest(w, "invalid event_id")
		return
	}
	regs, err := h.Registrations.List(r.Context(), eventID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, regs)
}

// HandleMarkAttendance handles POST /attendance
func (h *Handlers) HandleMarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req AttendanceRequest
	if !decode(w, r, &req) {
		return
	}
	att, err := h.Attendance.Mark(r.Context(), req.StudentID, req.EventID, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, att)
}

// HandleSubmitFeedback handles POST /feedback
func (h *Handlers) HandleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	if req.StudentID <= 0 || req.EventID <= 0 || req.Rating == nil {
		badRequest(w, "student_id, event_id, rating required")
		return
	}
	fb, err := h.Feedback.Submit(r.Context(), req.StudentID, req.EventID, *req.Rating, req.Comment)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, fb)
}
