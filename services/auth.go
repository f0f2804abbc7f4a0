package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"campus-events/db"
	"campus-events/models"
)

const MinPasswordLength = 6

// AuthService handles signup and the single-shot login check. There is no
// session: login just returns the matching user.
type AuthService struct {
	db     *db.DB
	cost   int
	logger *slog.Logger
}

func NewAuthService(store *db.DB, cost int, logger *slog.Logger) *AuthService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{db: store, cost: cost, logger: logger}
}

type AdminSignup struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	CollegeID int64  `json:"college_id"`
}

type StudentSignup struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone"`
	CollegeID int64   `json:"college_id"`
	Course    *string `json:"course"`
	Year      *int    `json:"year"`
}

func checkSignup(name, email, password string, collegeID int64) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" || collegeID <= 0 {
		return validationError("name, email, password, college required")
	}
	if len(password) < MinPasswordLength {
		return validationError(fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	return nil
}

func (s *AuthService) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func collegeOf(ctx context.Context, tx *db.Store, id int64) (*models.College, error) {
	c, err := tx.GetCollege(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, validationError("invalid college selected")
	}
	return c, err
}

// SignupAdmin creates an admin account.
func (s *AuthService) SignupAdmin(ctx context.Context, req AdminSignup) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := checkSignup(req.Name, req.Email, req.Password, req.CollegeID); err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *db.Store) error {
		taken, err := tx.EmailInUse(ctx, db.TableAdminUsers, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		college, err := collegeOf(ctx, tx, req.CollegeID)
		if err != nil {
			return err
		}
		id, err := tx.CreateAdmin(ctx, &models.AdminUser{
			Name: req.Name, Email: req.Email, PasswordHash: hash, CollegeID: req.CollegeID,
		})
		if db.IsUniqueOn(err, db.TableAdminUsers, "email") {
			return ErrEmailTaken
		}
		if err != nil {
			return err
		}
		user = &models.User{
			ID: id, Name: req.Name, Email: req.Email, Role: models.RoleAdmin,
			CollegeID: college.ID, CollegeName: &college.Name,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("admin account created", "admin_id", user.ID, "college_id", user.CollegeID)
	return user, nil
}

// SignupStudent creates a student login. A student profile that already
// exists under the same email (e.g. seeded) is linked instead of duplicated,
// and the reply carries that profile's name and college.
func (s *AuthService) SignupStudent(ctx context.Context, req StudentSignup) (*models.User, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := checkSignup(req.Name, req.Email, req.Password, req.CollegeID); err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.db.WithTx(ctx, func(tx *db.Store) error {
		taken, err := tx.EmailInUse(ctx, db.TableStudentUsers, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailTaken
		}
		college, err := collegeOf(ctx, tx, req.CollegeID)
		if err != nil {
			return err
		}

		var profile models.Student
		err = tx.GetByKey(ctx, db.TableStudents, db.Key{"email": req.Email}, &profile)
		switch {
		case errors.Is(err, db.ErrNotFound):
			profile = models.Student{
				Name: req.Name, Email: req.Email, Phone: req.Phone,
				CollegeID: req.CollegeID, Course: req.Course, Year: req.Year,
			}
			profile.ID, err = tx.CreateStudent(ctx, &profile)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		case profile.CollegeID != college.ID:
			// The linked profile keeps its own college.
			college, err = tx.GetCollege(ctx, profile.CollegeID)
			if err != nil {
				return err
			}
		}

		if _, err := tx.CreateStudentUser(ctx, profile.ID, req.Email, hash); err != nil {
			if ce, ok := db.AsConstraintError(err); ok && ce.Kind == db.ConstraintUnique {
				return ErrEmailTaken
			}
			return err
		}
		user = &models.User{
			ID: profile.ID, Name: profile.Name, Email: req.Email, Role: models.RoleStudent,
			CollegeID: college.ID, CollegeName: &college.Name, Course: profile.Course, Year: profile.Year,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("student account created", "student_id", user.ID, "college_id", user.CollegeID)
	return user, nil
}

// Login checks email and password for the given role ("admin", anything
// else means student).
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	if role == models.RoleAdmin {
		admin, err := s.db.GetAdminByEmail(ctx, email)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
			return nil, ErrInvalidCredentials
		}
		return &models.User{
			ID: admin.ID, Name: admin.Name, Email: admin.Email, Role: models.RoleAdmin,
			CollegeID: admin.CollegeID, CollegeName: admin.CollegeName,
		}, nil
	}

	login, err := s.db.GetStudentLoginByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.User{
		ID: login.StudentID, Name: login.Name, Email: login.Email, Role: models.RoleStudent,
		CollegeID: login.CollegeID, CollegeName: login.CollegeName, Course: login.Course, Year: login.Year,
	}, nil
}
