package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campus-events/models"
)

func newAuth(t *testing.T) (*AuthService, int64) {
	t.Helper()
	store := newTestDB(t)
	return NewAuthService(store, bcrypt.MinCost, quietLogger), createCollege(t, store)
}

func TestSignupAdmin_AndLogin(t *testing.T) {
	svc, college := newAuth(t)
	ctx := context.Background()

	user, err := svc.SignupAdmin(ctx, AdminSignup{Name: "Ana", Email: " Ana@Campus.edu ", Password: "secret1", CollegeID: college})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "ana@campus.edu", user.Email)
	require.NotNil(t, user.CollegeName)
	assert.Equal(t, "Test College", *user.CollegeName)

	got, err := svc.Login(ctx, "ANA@campus.edu", "secret1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(ctx, "ana@campus.edu", "wrong-pass", models.RoleAdmin)
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Admin credentials do not work for the student role.
	_, err = svc.Login(ctx, "ana@campus.edu", "secret1", models.RoleStudent)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupAdmin_Rejections(t *testing.T) {
	svc, college := newAuth(t)
	ctx := context.Background()

	_, err := svc.SignupAdmin(ctx, AdminSignup{Name: "Ana", Email: "ana@campus.edu", Password: "123", CollegeID: college})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SignupAdmin(ctx, AdminSignup{Email: "ana@campus.edu", Password: "secret1", CollegeID: college})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SignupAdmin(ctx, AdminSignup{Name: "Ana", Email: "ana@campus.edu", Password: "secret1", CollegeID: 404})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.SignupAdmin(ctx, AdminSignup{Name: "Ana", Email: "ana@campus.edu", Password: "secret1", CollegeID: college})
	require.NoError(t, err)
	_, err = svc.SignupAdmin(ctx, AdminSignup{Name: "Other", Email: "ANA@campus.edu", Password: "secret2", CollegeID: college})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupStudent_CreatesProfile(t *testing.T) {
	svc, college := newAuth(t)
	ctx := context.Background()
	course := "CSE"
	year := 2

	user, err := svc.SignupStudent(ctx, StudentSignup{
		Name: "Ravi", Email: "ravi@campus.edu", Password: "secret1", CollegeID: college, Course: &course, Year: &year,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.Course)
	assert.Equal(t, "CSE", *user.Course)

	profile, err := svc.db.GetStudent(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ravi@campus.edu", profile.Email)

	got, err := svc.Login(ctx, "ravi@campus.edu", "secret1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.Year)
	assert.Equal(t, 2, *got.Year)

	_, err = svc.SignupStudent(ctx, StudentSignup{Name: "Ravi", Email: "ravi@campus.edu", Password: "secret1", CollegeID: college})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignupStudent_LinksExistingProfile(t *testing.T) {
	svc, college := newAuth(t)
	ctx := context.Background()
	existing := createStudents(t, svc.db, college, 1)[0]

	user, err := svc.SignupStudent(ctx, StudentSignup{
		Name: "Someone Else", Email: "s1-0@test.edu", Password: "secret1", CollegeID: college,
	})
	require.NoError(t, err)
	assert.Equal(t, existing, user.ID)
	assert.Equal(t, "Student 0", user.Name, "existing profile wins")

	students, err := svc.db.ListStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestSignupStudent_LinkedProfileKeepsItsCollege(t *testing.T) {
	svc, home := newAuth(t)
	ctx := context.Background()
	existing := createStudents(t, svc.db, home, 1)[0]
	other, err := svc.db.CreateCollege(ctx, &models.College{Name: "Other College", Location: "Elsewhere"})
	require.NoError(t, err)

	user, err := svc.SignupStudent(ctx, StudentSignup{
		Name: "Someone Else", Email: "s1-0@test.edu", Password: "secret1", CollegeID: other.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, existing, user.ID)
	assert.Equal(t, home, user.CollegeID)
	require.NotNil(t, user.CollegeName)
	assert.Equal(t, "Test College", *user.CollegeName)

	got, err := svc.Login(ctx, "s1-0@test.edu", "secret1", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, user.CollegeID, got.CollegeID)
	assert.Equal(t, *user.CollegeName, *got.CollegeName)
	assert.Equal(t, user.Name, got.Name)
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := newAuth(t)

	_, err := svc.Login(context.Background(), "", "x", models.RoleAdmin)
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Login(context.Background(), "nobody@campus.edu", "secret1", models.RoleStudent)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
