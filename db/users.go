package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"campus-events/models"
)

func (s *Store) ListColleges(ctx context.Context) ([]models.College, error) {
	colleges := []models.College{}
	if err := sqlx.SelectContext(ctx, s.ext, &colleges, `SELECT * FROM colleges ORDER BY name ASC`); err != nil {
		return nil, fmt.Errorf("list colleges: %w", err)
	}
	return colleges, nil
}

func (s *Store) CreateCollege(ctx context.Context, c *models.College) (*models.College, error) {
	id, err := s.Insert(ctx, TableColleges, Fields{
		"name":          c.Name,
		"location":      c.Location,
		"contact_email": c.ContactEmail,
	})
	if err != nil {
		return nil, err
	}
	return s.GetCollege(ctx, id)
}

// GetCollege loads a college by id.
func (s *Store) GetCollege(ctx context.Context, id int64) (*models.College, error) {
	var c models.College
	if err := s.GetByKey(ctx, TableColleges, Key{"id": id}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateAdmin stores an admin account. The email must be unused.
func (s *Store) CreateAdmin(ctx context.Context, a *models.AdminUser) (int64, error) {
	return s.Insert(ctx, TableAdminUsers, Fields{
		"name":          a.Name,
		"email":         a.Email,
		"password_hash": a.PasswordHash,
		"college_id":    a.CollegeID,
	})
}

// GetAdminByEmail loads an admin together with the college name.
func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var a models.AdminUser
	err := sqlx.GetContext(ctx, s.ext, &a, `
		SELECT au.id, au.name, au.email, au.password_hash, au.college_id, au.created_at,
		       c.name AS college_name
		FROM admin_users au
		LEFT JOIN colleges c ON au.college_id = c.id
		WHERE au.email = ?`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Store) CreateStudent(ctx context.Context, st *models.Student) (int64, error) {
	return s.Insert(ctx, TableStudents, Fields{
		"name":       st.Name,
		"email":      st.Email,
		"phone":      st.Phone,
		"college_id": st.CollegeID,
		"course":     st.Course,
		"year":       st.Year,
	})
}

func (s *Store) CreateStudentUser(ctx context.Context, studentID int64, email, passwordHash string) (int64, error) {
	return s.Insert(ctx, TableStudentUsers, Fields{
		"student_id":    studentID,
		"email":         email,
		"password_hash": passwordHash,
	})
}

// GetStudent loads a student profile by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	var st models.Student
	if err := s.GetByKey(ctx, TableStudents, Key{"id": id}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *Store) ListStudents(ctx context.Context) ([]models.Student, error) {
	students := []models.Student{}
	if err := sqlx.SelectContext(ctx, s.ext, &students, `SELECT * FROM students ORDER BY name ASC, id ASC`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// GetStudentLoginByEmail loads a student's credentials with profile fields.
func (s *Store) GetStudentLoginByEmail(ctx context.Context, email string) (*models.StudentLogin, error) {
	var l models.StudentLogin
	err := sqlx.GetContext(ctx, s.ext, &l, `
		SELECT su.student_id, su.email, su.password_hash,
		       s.name, s.college_id, s.course, s.year,
		       c.name AS college_name
		FROM student_users su
		JOIN students s ON su.student_id = s.id
		LEFT JOIN colleges c ON s.college_id = c.id
		WHERE su.email = ?`, email)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// EmailInUse reports whether table already holds a row with this email.
func (s *Store) EmailInUse(ctx context.Context, table, email string) (bool, error) {
	n, err := s.CountWhere(ctx, table, Key{"email": email})
	return n > 0, err
}
