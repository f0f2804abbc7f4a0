package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"campus-events/models"
)

// EventPopularity ranks events by registration count, optionally for one
// event type.
func (s *Store) EventPopularity(ctx context.Context, eventType string) ([]models.EventPopularity, error) {
	query := `
		SELECT e.id, e.title, e.event_type, e.date, COUNT(r.id) AS registrations
		FROM events e
		LEFT JOIN registrations r ON e.id = r.event_id`
	var args []any
	if eventType != "" {
		query += ` WHERE e.event_type = ?`
		args = append(args, eventType)
	}
	query += ` GROUP BY e.id ORDER BY registrations DESC, e.id ASC`

	rows := []models.EventPopularity{}
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("event popularity report: %w", err)
	}
	return rows, nil
}

// AttendanceReport counts registered students who were marked present.
func (s *Store) AttendanceReport(ctx context.Context) ([]models.AttendanceSummary, error) {
	rows := []models.AttendanceSummary{}
	err := sqlx.SelectContext(ctx, s.ext, &rows, `
		SELECT e.id, e.title,
		       COUNT(r.id) AS registrations,
		       COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0) AS presents
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		LEFT JOIN attendance a ON a.event_id = e.id AND a.student_id = r.student_id
		GROUP BY e.id
		ORDER BY e.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	for i := range rows {
		rows[i].AttendancePercentage = percentage(rows[i].Presents, rows[i].Registrations)
	}
	return rows, nil
}

// StudentParticipation counts events each student attended. limit <= 0
// returns every student.
func (s *Store) StudentParticipation(ctx context.Context, limit int) ([]models.StudentParticipation, error) {
	query := `
		SELECT s.id AS student_id, s.name, s.email,
		       COALESCE(SUM(CASE WHEN a.status = 'present' THEN 1 ELSE 0 END), 0) AS events_attended
		FROM students s
		LEFT JOIN attendance a ON s.id = a.student_id
		GROUP BY s.id
		ORDER BY events_attended DESC, s.name ASC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows := []models.StudentParticipation{}
	if err := sqlx.SelectContext(ctx, s.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("student participation report: %w", err)
	}
	return rows, nil
}

// FeedbackReport averages ratings per event.
func (s *Store) FeedbackReport(ctx context.Context) ([]models.FeedbackSummary, error) {
	rows := []models.FeedbackSummary{}
	err := sqlx.SelectContext(ctx, s.ext, &rows, `
		SELECT e.id, e.title, AVG(f.rating) AS avg_rating, COUNT(f.id) AS feedback_count
		FROM events e
		LEFT JOIN feedback f ON e.id = f.event_id
		GROUP BY e.id
		ORDER BY avg_rating DESC, e.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("feedback report: %w", err)
	}
	for i := range rows {
		if rows[i].AvgRating != nil {
			v := round2(decimal.NewFromFloat(*rows[i].AvgRating))
			rows[i].AvgRating = &v
		}
	}
	return rows, nil
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(decimal.NewFromInt(int64(part)).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(int64(whole))))
}

func round2(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
