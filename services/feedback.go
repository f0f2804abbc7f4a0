package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campus-events/db"
	"campus-events/models"
	"campus-events/monitoring"
)

const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackService stores one rating per student per event; resubmitting
// replaces it.
type FeedbackService struct {
	db     *db.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewFeedbackService builds a FeedbackService. A nil logger uses slog.Default.
func NewFeedbackService(store *db.DB, logger *slog.Logger) *FeedbackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackService{db: store, logger: logger, now: time.Now}
}

// Submit validates the rating, upserts the feedback row and returns it. A
// blank comment is stored as NULL.
func (s *FeedbackService) Submit(ctx context.Context, studentID, eventID int64, rating int, comment string) (*models.Feedback, error) {
	if studentID <= 0 || eventID <= 0 {
		return nil, validationError("student_id and event_id required")
	}
	if rating < MinRating || rating > MaxRating {
		monitoring.TrackUpsert("feedback", outcome(ErrInvalidRating))
		return nil, ErrInvalidRating
	}

	var c *string
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		c = &comment
	}

	key := db.Key{"student_id": studentID, "event_id": eventID}
	err := s.db.Upsert(ctx, db.TableFeedback, key, db.Fields{
		"rating":       rating,
		"comment":      c,
		"submitted_at": s.now().UTC(),
	})
	if err != nil {
		err = translateWriteError(err, db.TableFeedback)
		monitoring.TrackUpsert("feedback", outcome(err))
		return nil, err
	}
	monitoring.TrackUpsert("feedback", "ok")

	s.logger.Info("feedback submitted", "student_id", studentID, "event_id", eventID, "rating", rating)
	return s.db.GetFeedback(ctx, studentID, eventID)
}
