package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-events/db"
	"campus-events/models"
)

func strategies() map[string]db.Option {
	return map[string]db.Option{
		"native":   db.WithNativeUpsert(true),
		"fallback": db.WithNativeUpsert(false),
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "present", NormalizeStatus(""))
	assert.Equal(t, "present", NormalizeStatus("present"))
	assert.Equal(t, "absent", NormalizeStatus("absent"))
	assert.Equal(t, "present", NormalizeStatus("late"))
	assert.Equal(t, "present", NormalizeStatus("ABSENT"))
}

func TestMarkAttendance_DefaultsToPresent(t *testing.T) {
	store := newTestDB(t)
	svc := NewAttendanceService(store, quietLogger)
	college := createCollege(t, store)
	event := createEvent(t, store, college, 0)
	student := createStudents(t, store, college, 1)[0]

	att, err := svc.Mark(context.Background(), student, event, "")
	require.NoError(t, err)
	assert.Equal(t, student, att.StudentID)
	assert.Equal(t, event, att.EventID)
	assert.Equal(t, "present", att.Status)
	assert.False(t, att.MarkedAt.IsZero())
}

func TestMarkAttendance_Overwrites(t *testing.T) {
	for name, opt := range strategies() {
		t.Run(name, func(t *testing.T) {
			store := newTestDB(t, opt)
			svc := NewAttendanceService(store, quietLogger)
			ctx := context.Background()
			college := createCollege(t, store)
			event := createEvent(t, store, college, 0)
			student := createStudents(t, store, college, 1)[0]

			clock := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return clock }
			first, err := svc.Mark(ctx, student, event, "present")
			require.NoError(t, err)

			clock = clock.Add(90 * time.Minute)
			second, err := svc.Mark(ctx, student, event, "absent")
			require.NoError(t, err)

			assert.Equal(t, first.ID, second.ID, "row is updated in place")
			assert.Equal(t, "absent", second.Status)
			assert.True(t, second.MarkedAt.Equal(clock), "marked_at %v, want %v", second.MarkedAt, clock)

			n, err := store.CountWhere(ctx, db.TableAttendance, db.Key{"student_id": student, "event_id": event})
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestMarkAttendance_Validation(t *testing.T) {
	store := newTestDB(t)
	svc := NewAttendanceService(store, quietLogger)

	_, err := svc.Mark(context.Background(), 0, 3, "present")
	require.ErrorIs(t, err, ErrValidation)
}

func TestMarkAttendance_UnknownReference(t *testing.T) {
	for name, opt := range strategies() {
		t.Run(name, func(t *testing.T) {
			store := newTestDB(t, opt)
			svc := NewAttendanceService(store, quietLogger)

			_, err := svc.Mark(context.Background(), 7, 3, "")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

// markAttendance(7, 3) with no status stores "present".
func TestMarkAttendance_StudentSevenEventThree(t *testing.T) {
	store := newTestDB(t)
	svc := NewAttendanceService(store, quietLogger)
	college := createCollege(t, store)
	var event int64
	for i := 0; i < 3; i++ {
		event = createEvent(t, store, college, 0)
	}
	students := createStudents(t, store, college, 7)
	require.Equal(t, int64(3), event)
	require.Equal(t, int64(7), students[6])

	att, err := svc.Mark(context.Background(), 7, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "present", att.Status)
}

func TestSubmitFeedback_Overwrites(t *testing.T) {
	for name, opt := range strategies() {
		t.Run(name, func(t *testing.T) {
			store := newTestDB(t, opt)
			svc := NewFeedbackService(store, quietLogger)
			ctx := context.Background()
			college := createCollege(t, store)
			event := createEvent(t, store, college, 0)
			student := createStudents(t, store, college, 1)[0]

			_, err := svc.Submit(ctx, student, event, 4, "ok")
			require.NoError(t, err)

			fb, err := svc.Submit(ctx, student, event, 2, "meh")
			require.NoError(t, err)
			assert.Equal(t, 2, fb.Rating)
			require.NotNil(t, fb.Comment)
			assert.Equal(t, "meh", *fb.Comment)

			n, err := store.CountWhere(ctx, db.TableFeedback, db.Key{"student_id": student, "event_id": event})
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		})
	}
}

func TestSubmitFeedback_ClearsComment(t *testing.T) {
	store := newTestDB(t)
	svc := NewFeedbackService(store, quietLogger)
	ctx := context.Background()
	college := createCollege(t, store)
	event := createEvent(t, store, college, 0)
	student := createStudents(t, store, college, 1)[0]

	_, err := svc.Submit(ctx, student, event, 5, "great")
	require.NoError(t, err)

	fb, err := svc.Submit(ctx, student, event, 5, "   ")
	require.NoError(t, err)
	assert.Nil(t, fb.Comment)
}

func TestSubmitFeedback_RatingBounds(t *testing.T) {
	store := newTestDB(t)
	svc := NewFeedbackService(store, quietLogger)
	ctx := context.Background()
	college := createCollege(t, store)
	event := createEvent(t, store, college, 0)
	student := createStudents(t, store, college, 1)[0]

	for _, rating := range []int{0, 6, -1, 100} {
		_, err := svc.Submit(ctx, student, event, rating, "x")
		require.ErrorIs(t, err, ErrInvalidRating, "rating %d", rating)
		require.ErrorIs(t, err, ErrValidation)
	}

	n, err := store.CountWhere(ctx, db.TableFeedback, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n, "invalid ratings must not persist anything")

	for _, rating := range []int{1, 5} {
		fb, err := svc.Submit(ctx, student, event, rating, "")
		require.NoError(t, err)
		assert.Equal(t, rating, fb.Rating)
	}
}

func TestTranslateWriteError(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	college := createCollege(t, store)
	event := createEvent(t, store, college, 0)
	student := createStudents(t, store, college, 1)[0]

	fields := db.Fields{"student_id": student, "event_id": event, "status": models.StatusRegistered}
	_, err := store.Insert(ctx, db.TableRegistrations, fields)
	require.NoError(t, err)

	_, err = store.Insert(ctx, db.TableRegistrations, fields)
	require.ErrorIs(t, translateWriteError(err, db.TableRegistrations), ErrAlreadyRegistered)

	// Unique violations elsewhere are not a registration duplicate.
	_, err = store.Insert(ctx, db.TableStudents, db.Fields{"name": "Dup", "email": "s1-0@test.edu", "college_id": college})
	require.Error(t, err)
	translated := translateWriteError(err, db.TableStudents)
	assert.NotErrorIs(t, translated, ErrAlreadyRegistered)
	assert.Equal(t, err, translated)
}
