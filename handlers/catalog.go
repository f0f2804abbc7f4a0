package handlers

import (
	"net/http"

	"campus-events/models"
)

type CreateCollegeRequest struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	ContactEmail *string `json:"contact_email"`
}

type CreateEventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	EventType   string  `json:"event_type"`
	Date        string  `json:"date"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	Venue       string  `json:"venue"`
	MaxCapacity *int    `json:"max_capacity"`
	CollegeID   int64   `json:"college_id"`
	CreatedBy   string  `json:"created_by"`
}

// HandleListColleges handles GET /colleges
func (h *Handlers) HandleListColleges(w http.ResponseWriter, r *http.Request) {
	colleges, err := h.Events.ListColleges(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, colleges)
}

// HandleCreateCollege handles POST /colleges
func (h *Handlers) HandleCreateCollege(w http.ResponseWriter, r *http.Request) {
	var req CreateCollegeRequest
	if !decode(w, r, &req) {
		return
	}
	college, err := h.Events.CreateCollege(r.Context(), models.College{
		Name: req.Name, Location: req.Location, ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, college)
}

// HandleListEvents handles GET /events
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Events.ListEvents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, events)
}

// HandleCreateEvent handles POST /events
func (h *Handlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decode(w, r, &req) {
		return
	}
	event, err := h.Events.CreateEvent(r.Context(), models.Event{
		Title:       req.Title,
		Description: req.Description,
		EventType:   req.EventType,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Venue:       req.Venue,
		MaxCapacity: req.MaxCapacity,
		CollegeID:   req.CollegeID,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusCreated, event)
}

// HandleListStudents handles GET /students
func (h *Handlers) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.Events.ListStudents(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, students)
}
