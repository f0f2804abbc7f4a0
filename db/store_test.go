package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-events/models"
)

type fixture struct {
	college  *models.College
	students []int64
	event    *models.Event
}

func seedFixture(t *testing.T, db *DB, capacity *int, numStudents int) fixture {
	t.Helper()
	ctx := context.Background()

	c, err := db.CreateCollege(ctx, &models.College{Name: "Test College", Location: "Test City"})
	require.NoError(t, err)

	ev, err := db.CreateEvent(ctx, &models.Event{
		Title: "Test Event", EventType: "Workshop", Date: "2025-10-01",
		StartTime: "10:00", EndTime: "12:00", Venue: "Hall A",
		MaxCapacity: capacity, CollegeID: c.ID, CreatedBy: "Admin",
	})
	require.NoError(t, err)

	f := fixture{college: c, event: ev}
	for i := 0; i < numStudents; i++ {
		id, err := db.CreateStudent(ctx, &models.Student{
			Name: "Student", Email: "student" + string(rune('a'+i)) + "@test.edu", CollegeID: c.ID,
		})
		require.NoError(t, err)
		f.students = append(f.students, id)
	}
	return f
}

func TestStore_InsertAndGetByKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db, ptr(10), 1)

	id, err := db.Insert(ctx, TableRegistrations, Fields{
		"student_id": f.students[0], "event_id": f.event.ID, "status": models.StatusRegistered,
	})
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	var reg models.Registration
	require.NoError(t, db.GetByKey(ctx, TableRegistrations, Key{"id": id}, &reg))
	assert.Equal(t, f.students[0], reg.StudentID)
	assert.Equal(t, f.event.ID, reg.EventID)
	assert.Equal(t, models.StatusRegistered, reg.Status)
	assert.False(t, reg.RegisteredAt.IsZero())
}

func TestStore_GetByKey_NotFound(t *testing.T) {
	db := newTestDB(t)

	var ev models.Event
	err := db.GetByKey(context.Background(), TableEvents, Key{"id": 999}, &ev)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = db.GetEvent(context.Background(), 999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Insert_UniqueViolation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db, nil, 1)

	fields := Fields{"student_id": f.students[0], "event_id": f.event.ID, "status": models.StatusRegistered}
	_, err := db.Insert(ctx, TableRegistrations, fields)
	require.NoError(t, err)

	_, err = db.Insert(ctx, TableRegistrations, fields)
	require.Error(t, err)

	ce, ok := AsConstraintError(err)
	require.True(t, ok, "expected a constraint error, got %v", err)
	assert.Equal(t, ConstraintUnique, ce.Kind)
	assert.Equal(t, "registrations(event_id,student_id)", ce.Constraint())
	assert.True(t, ce.On(TableRegistrations, "student_id", "event_id"))
	assert.False(t, ce.On(TableAttendance, "student_id", "event_id"))
	assert.True(t, IsUniqueOn(err, TableRegistrations, "event_id", "student_id"))
}

func TestStore_Insert_ForeignKeyViolation(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Insert(context.Background(), TableRegistrations, Fields{
		"student_id": 42, "event_id": 42, "status": models.StatusRegistered,
	})
	ce, ok := AsConstraintError(err)
	require.True(t, ok, "expected a constraint error, got %v", err)
	assert.Equal(t, ConstraintForeignKey, ce.Kind)
}

func TestStore_Insert_CheckViolation(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db, nil, 1)

	_, err := db.Insert(context.Background(), TableFeedback, Fields{
		"student_id": f.students[0], "event_id": f.event.ID, "rating": 9,
	})
	ce, ok := AsConstraintError(err)
	require.True(t, ok, "expected a constraint error, got %v", err)
	assert.Equal(t, ConstraintCheck, ce.Kind)
}

func TestStore_RejectsBadIdentifiers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, "events; DROP TABLE events", Fields{"title": "x"})
	require.Error(t, err)

	_, err = db.CountWhere(ctx, TableEvents, Key{"id = 1 OR 1": 1})
	require.Error(t, err)
}

func TestStore_CountWhereAndUpdateByKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db, nil, 3)

	for _, sid := range f.students {
		_, err := db.Insert(ctx, TableRegistrations, Fields{
			"student_id": sid, "event_id": f.event.ID, "status": models.StatusRegistered,
		})
		require.NoError(t, err)
	}

	n, err := db.CountRegistrations(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = db.CountWhere(ctx, TableRegistrations, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	affected, err := db.UpdateByKey(ctx, TableRegistrations,
		Key{"student_id": f.students[0], "event_id": f.event.ID}, Fields{"status": "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	n, err = db.CountRegistrations(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only registered rows count against capacity")

	affected, err = db.UpdateByKey(ctx, TableRegistrations, Key{"id": 999}, Fields{"status": "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestStore_Upsert_BothStrategies(t *testing.T) {
	for _, native := range []bool{true, false} {
		name := "fallback"
		if native {
			name = "native"
		}
		t.Run(name, func(t *testing.T) {
			db := newTestDB(t, WithNativeUpsert(native))
			ctx := context.Background()
			f := seedFixture(t, db, nil, 1)
			key := Key{"student_id": f.students[0], "event_id": f.event.ID}

			first := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
			require.NoError(t, db.Upsert(ctx, TableAttendance, key, Fields{"status": "present", "marked_at": first}))

			second := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, db.Upsert(ctx, TableAttendance, key, Fields{"status": "absent", "marked_at": second}))

			n, err := db.CountWhere(ctx, TableAttendance, key)
			require.NoError(t, err)
			assert.Equal(t, 1, n)

			a, err := db.GetAttendance(ctx, f.students[0], f.event.ID)
			require.NoError(t, err)
			assert.Equal(t, "absent", a.Status)
			assert.WithinDuration(t, second, a.MarkedAt, time.Second)
		})
	}
}

func TestStore_Upsert_PropagatesOtherViolations(t *testing.T) {
	for _, native := range []bool{true, false} {
		db := newTestDB(t, WithNativeUpsert(native))
		ctx := context.Background()

		err := db.Upsert(ctx, TableAttendance,
			Key{"student_id": 404, "event_id": 404}, Fields{"status": "present", "marked_at": time.Now()})
		ce, ok := AsConstraintError(err)
		require.True(t, ok, "native=%v: expected constraint error, got %v", native, err)
		assert.Equal(t, ConstraintForeignKey, ce.Kind)
	}
}

func TestDB_WithTx_RollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	f := seedFixture(t, db, nil, 1)

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *Store) error {
		_, err := tx.Insert(ctx, TableRegistrations, Fields{
			"student_id": f.students[0], "event_id": f.event.ID, "status": models.StatusRegistered,
		})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	n, err := db.CountRegistrations(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
