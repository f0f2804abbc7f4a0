package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"campus-events/models"
)

// CreateEvent inserts an event and returns the stored row.
func (s *Store) CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error) {
	id, err := s.Insert(ctx, TableEvents, Fields{
		"title":        e.Title,
		"description":  e.Description,
		"event_type":   e.EventType,
		"date":         e.Date,
		"start_time":   e.StartTime,
		"end_time":     e.EndTime,
		"venue":        e.Venue,
		"max_capacity": e.MaxCapacity,
		"college_id":   e.CollegeID,
		"created_by":   e.CreatedBy,
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

// GetEvent loads one event, ErrNotFound when it does not exist.
func (s *Store) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var e models.Event
	if err := s.GetByKey(ctx, TableEvents, Key{"id": id}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns every event, newest date first.
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	if err := sqlx.SelectContext(ctx, s.ext, &events, `SELECT * FROM events ORDER BY date DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// GetRegistration loads a registration by id.
func (s *Store) GetRegistration(ctx context.Context, id int64) (*models.Registration, error) {
	var r models.Registration
	if err := s.GetByKey(ctx, TableRegistrations, Key{"id": id}, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CountRegistrations counts active registrations for an event.
func (s *Store) CountRegistrations(ctx context.Context, eventID int64) (int, error) {
	return s.CountWhere(ctx, TableRegistrations, Key{"event_id": eventID, "status": models.StatusRegistered})
}

// ListRegistrations returns registrations, optionally narrowed to one event.
func (s *Store) ListRegistrations(ctx context.Context, eventID int64) ([]models.Registration, error) {
	regs := []models.Registration{}
	query := `SELECT * FROM registrations`
	var args []any
	if eventID > 0 {
		query += ` WHERE event_id = ?`
		args = append(args, eventID)
	}
	query += ` ORDER BY id`
	if err := sqlx.SelectContext(ctx, s.ext, &regs, query, args...); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// GetAttendance loads the attendance row for a student at an event.
func (s *Store) GetAttendance(ctx context.Context, studentID, eventID int64) (*models.Attendance, error) {
	var a models.Attendance
	if err := s.GetByKey(ctx, TableAttendance, Key{"student_id": studentID, "event_id": eventID}, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// GetFeedback loads the feedback row for a student at an event.
func (s *Store) GetFeedback(ctx context.Context, studentID, eventID int64) (*models.Feedback, error) {
	var f models.Feedback
	if err := s.GetByKey(ctx, TableFeedback, Key{"student_id": studentID, "event_id": eventID}, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
