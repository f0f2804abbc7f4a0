package models

// EventPopularity is one row of the event popularity report.
type EventPopularity struct {
	ID            int64  `json:"id" db:"id"`
	Title         string `json:"title" db:"title"`
	EventType     string `json:"event_type" db:"event_type"`
	Date          string `json:"date" db:"date"`
	Registrations int    `json:"registrations" db:"registrations"`
}

type AttendanceSummary struct {
	ID                   int64   `json:"id" db:"id"`
	Title                string  `json:"title" db:"title"`
	Registrations        int     `json:"registrations" db:"registrations"`
	Presents             int     `json:"presents" db:"presents"`
	AttendancePercentage float64 `json:"attendance_percentage" db:"-"`
}

type StudentParticipation struct {
	StudentID      int64  `json:"student_id" db:"student_id"`
	Name           string `json:"name" db:"name"`
	Email          string `json:"email" db:"email"`
	EventsAttended int    `json:"events_attended" db:"events_attended"`
}

// FeedbackSummary carries a nil AvgRating for events nobody rated.
type FeedbackSummary struct {
	ID            int64    `json:"id" db:"id"`
	Title         string   `json:"title" db:"title"`
	AvgRating     *float64 `json:"avg_rating" db:"avg_rating"`
	FeedbackCount int      `json:"feedback_count" db:"feedback_count"`
}
