package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"campus-events/db"
	"campus-events/models"
	"campus-events/monitoring"
)

// RegistrationService books students onto events without exceeding capacity.
type RegistrationService struct {
	db     *db.DB
	logger *slog.Logger
}

// NewRegistrationService builds a RegistrationService. A nil logger uses slog.Default.
func NewRegistrationService(store *db.DB, logger *slog.Logger) *RegistrationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistrationService{db: store, logger: logger}
}

// Register books studentID onto eventID and returns the stored row.
//
// The capacity count and the insert share one transaction on the single
// store connection, so concurrent callers cannot both take the last seat.
// The (student_id, event_id) unique constraint is the final guard against
// duplicates.
func (s *RegistrationService) Register(ctx context.Context, studentID, eventID int64) (*models.Registration, error) {
	if studentID <= 0 || eventID <= 0 {
		return nil, validationError("student_id and event_id required")
	}

	var reg *models.Registration
	err := s.db.WithTx(ctx, func(tx *db.Store) error {
		event, err := tx.GetEvent(ctx, eventID)
		if errors.Is(err, db.ErrNotFound) {
			return ErrEventNotFound
		}
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}

		// A student already holding a seat is a duplicate even when the
		// event is full.
		held, err := tx.CountWhere(ctx, db.TableRegistrations, db.Key{"student_id": studentID, "event_id": eventID})
		if err != nil {
			return err
		}
		if held > 0 {
			return ErrAlreadyRegistered
		}

		if limit, ok := event.Capacity(); ok {
			count, err := tx.CountRegistrations(ctx, eventID)
			if err != nil {
				return err
			}
			if count >= limit {
				return ErrCapacityExceeded
			}
		}

		id, err := tx.Insert(ctx, db.TableRegistrations, db.Fields{
			"student_id": studentID,
			"event_id":   eventID,
			"status":     models.StatusRegistered,
		})
		if err != nil {
			return translateWriteError(err, db.TableRegistrations)
		}

		reg, err = tx.GetRegistration(ctx, id)
		return err
	})

	monitoring.TrackRegistration(outcome(err))
	if err != nil {
		s.logger.Debug("registration rejected", "student_id", studentID, "event_id", eventID, "error", err)
		return nil, err
	}

	s.logger.Info("student registered", "student_id", studentID, "event_id", eventID, "registration_id", reg.ID)
	return reg, nil
}

// List returns registrations, for one event when eventID > 0.
func (s *RegistrationService) List(ctx context.Context, eventID int64) ([]models.Registration, error) {
	return s.db.ListRegistrations(ctx, eventID)
}

// translateWriteError maps the store constraints a keyed write can hit onto
// domain errors. Unrecognised failures pass through unchanged.
func translateWriteError(err error, table string) error {
	ce, ok := db.AsConstraintError(err)
	if !ok {
		return err
	}
	switch {
	case ce.Kind == db.ConstraintUnique && ce.On(table, "student_id", "event_id"):
		if table == db.TableRegistrations {
			return ErrAlreadyRegistered
		}
	case ce.Kind == db.ConstraintForeignKey:
		return fmt.Errorf("student or event %w", ErrNotFound)
	}
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_rating"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrAlreadyRegistered):
		return "already_registered"
	default:
		return "error"
	}
}
