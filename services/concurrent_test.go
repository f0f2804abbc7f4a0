package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-events/db"
)

// TestConcurrentRegistration fires 100 registrations at a 5-seat event.
func TestConcurrentRegistration(t *testing.T) {
	store := newTestDB(t)
	svc := NewRegistrationService(store, quietLogger)
	ctx := context.Background()

	const totalCapacity = 5
	const numRequests = 100
	college := createCollege(t, store)
	event := createEvent(t, store, college, totalCapacity)
	students := createStudents(t, store, college, numRequests)

	var successCount, soldOutCount, errorCount int32
	var wg sync.WaitGroup
	wg.Add(numRequests)

	for i := 0; i < numRequests; i++ {
		go func(studentID int64) {
			defer wg.Done()

			_, err := svc.Register(ctx, studentID, event)
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, ErrCapacityExceeded):
				atomic.AddInt32(&soldOutCount, 1)
			default:
				t.Logf("unexpected error for student %d: %v", studentID, err)
				atomic.AddInt32(&errorCount, 1)
			}
		}(students[i])
	}
	wg.Wait()

	t.Logf("successes: %d | sold out: %d | errors: %d", successCount, soldOutCount, errorCount)

	assert.Equal(t, int32(totalCapacity), successCount)
	assert.Equal(t, int32(numRequests-totalCapacity), soldOutCount)
	assert.Equal(t, int32(0), errorCount)

	n, err := store.CountRegistrations(ctx, event)
	require.NoError(t, err)
	assert.Equal(t, totalCapacity, n)
}

// TestConcurrentDuplicateRegistration has one student race themselves.
func TestConcurrentDuplicateRegistration(t *testing.T) {
	store := newTestDB(t)
	svc := NewRegistrationService(store, quietLogger)
	ctx := context.Background()
	college := createCollege(t, store)
	event := createEvent(t, store, college, 0)
	student := createStudents(t, store, college, 1)[0]

	const numRequests = 20
	var successCount, dupCount int32
	var wg sync.WaitGroup
	wg.Add(numRequests)
	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, student, event)
			if err == nil {
				atomic.AddInt32(&successCount, 1)
			} else if errors.Is(err, ErrAlreadyRegistered) {
				atomic.AddInt32(&dupCount, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount)
	assert.Equal(t, int32(numRequests-1), dupCount)
}

// TestConcurrentAttendanceMarks re-marks one student from many goroutines;
// exactly one row must survive.
func TestConcurrentAttendanceMarks(t *testing.T) {
	for _, native := range []bool{true, false} {
		store := newTestDB(t, db.WithNativeUpsert(native))
		svc := NewAttendanceService(store, quietLogger)
		ctx := context.Background()
		college := createCollege(t, store)
		event := createEvent(t, store, college, 0)
		student := createStudents(t, store, college, 1)[0]

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				status := "present"
				if i%2 == 1 {
					status = "absent"
				}
				_, err := svc.Mark(ctx, student, event, status)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		n, err := store.CountWhere(ctx, db.TableAttendance, db.Key{"student_id": student, "event_id": event})
		require.NoError(t, err)
		assert.Equal(t, 1, n, "native=%v", native)
	}
}
