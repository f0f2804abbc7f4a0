package db

import (
	"context"
	"fmt"

	"campus-events/models"
)

// HasData reports whether any college exists yet.
func (db *DB) HasData(ctx context.Context) (bool, error) {
	n, err := db.CountWhere(ctx, TableColleges, nil)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func ptr[T any](v T) *T { return &v }

// Seed fills an empty store with sample colleges, students and events. It is
// a no-op once any college exists.
func (db *DB) Seed(ctx context.Context) (bool, error) {
	has, err := db.HasData(ctx)
	if err != nil || has {
		return false, err
	}

	err = db.WithTx(ctx, func(tx *Store) error {
		colleges := []models.College{
			{Name: "Webknot Institute of Technology", Location: "Bengaluru", ContactEmail: ptr("admin@wit.edu")},
			{Name: "City College of Engineering", Location: "Mysuru", ContactEmail: ptr("office@cce.edu")},
		}
		ids := make([]int64, len(colleges))
		for i := range colleges {
			c, err := tx.CreateCollege(ctx, &colleges[i])
			if err != nil {
				return fmt.Errorf("seed college: %w", err)
			}
			ids[i] = c.ID
		}

		students := []models.Student{
			{Name: "Aarav Sharma", Email: "aarav@wit.edu", CollegeID: ids[0], Course: ptr("CSE"), Year: ptr(3)},
			{Name: "Diya Patel", Email: "diya@wit.edu", CollegeID: ids[0], Course: ptr("ECE"), Year: ptr(2)},
			{Name: "Rohan Iyer", Email: "rohan@cce.edu", CollegeID: ids[1], Course: ptr("ME"), Year: ptr(4)},
		}
		for i := range students {
			if _, err := tx.CreateStudent(ctx, &students[i]); err != nil {
				return fmt.Errorf("seed student: %w", err)
			}
		}

		events := []models.Event{
			{Title: "Intro to Go Workshop", EventType: "Workshop", Date: "2025-11-05", StartTime: "10:00", EndTime: "13:00",
				Venue: "Lab 2", MaxCapacity: ptr(40), CollegeID: ids[0], CreatedBy: "Admin"},
			{Title: "Campus Hackathon", EventType: "Hackathon", Date: "2025-11-20", StartTime: "09:00", EndTime: "21:00",
				Venue: "Main Hall", MaxCapacity: ptr(100), CollegeID: ids[0], CreatedBy: "Admin"},
			{Title: "Industry Tech Talk", EventType: "Tech Talk", Date: "2025-12-02", StartTime: "15:00", EndTime: "16:30",
				Venue: "Auditorium", MaxCapacity: ptr(200), CollegeID: ids[1], CreatedBy: "Admin"},
		}
		for i := range events {
			if _, err := tx.CreateEvent(ctx, &events[i]); err != nil {
				return fmt.Errorf("seed event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
