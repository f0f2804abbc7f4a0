package services

import (
	"context"
	"errors"
	"strings"

	"campus-events/db"
	"campus-events/models"
)

const (
	DefaultCapacity  = 100
	DefaultCreatedBy = "Admin"
)

// EventService covers the admin-facing catalogue: events and colleges.
type EventService struct {
	db *db.DB
}

// NewEventService builds an EventService over store.
func NewEventService(store *db.DB) *EventService {
	return &EventService{db: store}
}

// CreateEvent validates required fields, fills defaults and stores the event.
func (s *EventService) CreateEvent(ctx context.Context, e models.Event) (*models.Event, error) {
	if strings.TrimSpace(e.Title) == "" || e.EventType == "" || e.Date == "" ||
		e.StartTime == "" || e.EndTime == "" || e.Venue == "" || e.CollegeID <= 0 {
		return nil, validationError("missing required fields")
	}
	if e.MaxCapacity == nil || *e.MaxCapacity == 0 {
		c := DefaultCapacity
		e.MaxCapacity = &c
	}
	if *e.MaxCapacity < 0 {
		return nil, validationError("max_capacity must be positive")
	}
	if e.CreatedBy == "" {
		e.CreatedBy = DefaultCreatedBy
	}

	ev, err := s.db.CreateEvent(ctx, &e)
	if ce, ok := db.AsConstraintError(err); ok && ce.Kind == db.ConstraintForeignKey {
		return nil, validationError("invalid college selected")
	}
	return ev, err
}

// ListEvents returns every event, newest date first.
func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.db.ListEvents(ctx)
}

// GetEvent loads one event, ErrEventNotFound when it does not exist.
func (s *EventService) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	ev, err := s.db.GetEvent(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	return ev, err
}

// ListColleges returns colleges ordered by name.
func (s *EventService) ListColleges(ctx context.Context) ([]models.College, error) {
	return s.db.ListColleges(ctx)
}

// CreateCollege stores a college; name and location are required.
func (s *EventService) CreateCollege(ctx context.Context, c models.College) (*models.College, error) {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Location) == "" {
		return nil, validationError("name and location required")
	}
	if c.ContactEmail != nil && *c.ContactEmail == "" {
		c.ContactEmail = nil
	}
	return s.db.CreateCollege(ctx, &c)
}

// ListStudents returns every student profile.
func (s *EventService) ListStudents(ctx context.Context) ([]models.Student, error) {
	return s.db.ListStudents(ctx)
}
