package services

import (
	"context"
	"log/slog"
	"time"

	"campus-events/db"
	"campus-events/models"
	"campus-events/monitoring"
)

// AttendanceService records whether a student showed up. Re-marking the
// same student for the same event overwrites the earlier mark.
type AttendanceService struct {
	db     *db.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewAttendanceService builds an AttendanceService. A nil logger uses slog.Default.
func NewAttendanceService(store *db.DB, logger *slog.Logger) *AttendanceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AttendanceService{db: store, logger: logger, now: time.Now}
}

// NormalizeStatus maps anything other than "absent" to "present".
func NormalizeStatus(status string) string {
	if status == models.AttendanceAbsent {
		return models.AttendanceAbsent
	}
	return models.AttendancePresent
}

// Mark upserts the attendance row for (studentID, eventID) and returns it.
func (s *AttendanceService) Mark(ctx context.Context, studentID, eventID int64, status string) (*models.Attendance, error) {
	if studentID <= 0 || eventID <= 0 {
		return nil, validationError("student_id and event_id required")
	}
	status = NormalizeStatus(status)

	key := db.Key{"student_id": studentID, "event_id": eventID}
	err := s.db.Upsert(ctx, db.TableAttendance, key, db.Fields{
		"status":    status,
		"marked_at": s.now().UTC(),
	})
	if err != nil {
		err = translateWriteError(err, db.TableAttendance)
		monitoring.TrackUpsert("attendance", outcome(err))
		return nil, err
	}
	monitoring.TrackUpsert("attendance", "ok")

	s.logger.Info("attendance marked", "student_id", studentID, "event_id", eventID, "status", status)
	return s.db.GetAttendance(ctx, studentID, eventID)
}
