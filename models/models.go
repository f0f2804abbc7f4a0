package models

import "time"

const (
	StatusRegistered = "registered"

	AttendancePresent = "present"
	AttendanceAbsent  = "absent"

	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// College groups admins, students and events.
type College struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Location     string    `json:"location" db:"location"`
	ContactEmail *string   `json:"contact_email" db:"contact_email"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Event is something students can register for. A nil or zero MaxCapacity
// means the event has no seat limit.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	EventType   string    `json:"event_type" db:"event_type"`
	Date        string    `json:"date" db:"date"`
	StartTime   string    `json:"start_time" db:"start_time"`
	EndTime     string    `json:"end_time" db:"end_time"`
	Venue       string    `json:"venue" db:"venue"`
	MaxCapacity *int      `json:"max_capacity" db:"max_capacity"`
	CollegeID   int64     `json:"college_id" db:"college_id"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Capacity reports the seat limit and whether one applies.
func (e *Event) Capacity() (int, bool) {
	if e.MaxCapacity == nil || *e.MaxCapacity <= 0 {
		return 0, false
	}
	return *e.MaxCapacity, true
}

type Student struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone" db:"phone"`
	CollegeID int64     `json:"college_id" db:"college_id"`
	Course    *string   `json:"course" db:"course"`
	Year      *int      `json:"year" db:"year"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Registration is a student's seat at an event. At most one exists per
// (student, event) and it is never overwritten.
type Registration struct {
	ID           int64     `json:"id" db:"id"`
	StudentID    int64     `json:"student_id" db:"student_id"`
	EventID      int64     `json:"event_id" db:"event_id"`
	Status       string    `json:"status" db:"status"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"`
}

// Attendance is overwritten in place each time a student is re-marked.
type Attendance struct {
	ID        int64     `json:"id" db:"id"`
	StudentID int64     `json:"student_id" db:"student_id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	Status    string    `json:"status" db:"status"`
	MarkedAt  time.Time `json:"marked_at" db:"marked_at"`
}

// Feedback is overwritten in place when a student revises it.
type Feedback struct {
	ID          int64     `json:"id" db:"id"`
	StudentID   int64     `json:"student_id" db:"student_id"`
	EventID     int64     `json:"event_id" db:"event_id"`
	Rating      int       `json:"rating" db:"rating"`
	Comment     *string   `json:"comment" db:"comment"`
	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
}

// AdminUser is an admin login. PasswordHash never leaves the server.
type AdminUser struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CollegeID    int64     `json:"college_id" db:"college_id"`
	CollegeName  *string   `json:"college_name" db:"college_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// StudentLogin joins a student_users row with its student profile.
type StudentLogin struct {
	StudentID    int64   `db:"student_id"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	Name         string  `db:"name"`
	CollegeID    int64   `db:"college_id"`
	CollegeName  *string `db:"college_name"`
	Course       *string `db:"course"`
	Year         *int    `db:"year"`
}

// User is what login and signup hand back to the client.
type User struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CollegeID   int64   `json:"college_id"`
	CollegeName *string `json:"college_name"`
	Course      *string `json:"course,omitempty"`
	Year        *int    `json:"year,omitempty"`
}
