package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type identityAccountRepository interface {
	ExistsUsername(ctx context.Context, username string) (bool, error)
}

type identityStudentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
	ExistsEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.Student, error)
	CreateWithAccount(ctx context.Context, student *models.Student, account *models.Account) error
	UpdateWithAccount(ctx context.Context, previousEmail string, student *models.Student, account *models.Account) error
}

type identityInstructorRepository interface {
	ExistsEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.Instructor, error)
	CreateWithAccount(ctx context.Context, instructor *models.Instructor, account *models.Account) error
}

// CreateStudentRequest describes student onboarding payload.
type CreateStudentRequest struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Bio       string     `json:"bio"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Username  string     `json:"username" validate:"required"`
	Password  string     `json:"password" validate:"required,min=8"`
}

// CreateInstructorRequest describes instructor onboarding payload.
type CreateInstructorRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
}

// UpdateStudentRequest describes a full student rewrite.
type UpdateStudentRequest struct {
	FirstName string     `json:"first_name" validate:"required"`
	LastName  string     `json:"last_name" validate:"required"`
	Email     string     `json:"email" validate:"required,email"`
	Bio       string     `json:"bio"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Username  string     `json:"username" validate:"required"`
	Password  string     `json:"password" validate:"required,min=8"`
}

// IdentityService onboards and maintains student and instructor accounts.
type IdentityService struct {
	accounts    identityAccountRepository
	students    identityStudentRepository
	instructors identityInstructorRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewIdentityService constructs IdentityService.
func NewIdentityService(accounts identityAccountRepository, students identityStudentRepository, instructors identityInstructorRepository, validate *validator.Validate, logger *zap.Logger) *IdentityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{accounts: accounts, students: students, instructors: instructors, validator: validate, logger: logger}
}

// CreateStudent registers a student profile together with its login account.
// Both rows commit in one transaction.
func (s *IdentityService) CreateStudent(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.checkUsername(ctx, req.Username); err != nil {
		return nil, err
	}
	taken, err := s.students.ExistsEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Bio:       req.Bio,
		Birthday:  req.Birthday,
	}
	account := &models.Account{Username: req.Username, PasswordHash: string(hash)}
	if err := s.students.CreateWithAccount(ctx, student, account); err != nil {
		return nil, normalizeStorageError(err, "failed to create student")
	}

	s.logger.Info("student created", zap.Int64("student_id", student.ID))
	return student, nil
}

// CreateInstructor registers an instructor profile with its login account.
func (s *IdentityService) CreateInstructor(ctx context.Context, req CreateInstructorRequest) (*models.Instructor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid instructor payload")
	}
	if err := s.checkUsername(ctx, req.Username); err != nil {
		return nil, err
	}
	taken, err := s.instructors.ExistsEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateEmail, "")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	instructor := &models.Instructor{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}
	account := &models.Account{Username: req.Username, PasswordHash: string(hash)}
	if err := s.instructors.CreateWithAccount(ctx, instructor, account); err != nil {
		return nil, normalizeStorageError(err, "failed to create instructor")
	}

	s.logger.Info("instructor created", zap.Int64("instructor_id", instructor.ID))
	return instructor, nil
}

// UpdateStudent rewrites a student profile and its account transactionally.
// The account row is matched through the student's stored email.
func (s *IdentityService) UpdateStudent(ctx context.Context, studentID int64, req UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	current, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	student := &models.Student{
		ID:        studentID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Bio:       req.Bio,
		Birthday:  req.Birthday,
	}
	account := &models.Account{Username: req.Username, PasswordHash: string(hash)}
	if err := s.students.UpdateWithAccount(ctx, current.Email, student, account); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, normalizeStorageError(err, "failed to update student")
	}

	return student, nil
}

// ListStudents returns every student profile.
func (s *IdentityService) ListStudents(ctx context.Context) ([]models.Student, error) {
	students, err := s.students.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// ListInstructors returns every instructor profile.
func (s *IdentityService) ListInstructors(ctx context.Context) ([]models.Instructor, error) {
	instructors, err := s.instructors.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list instructors")
	}
	return instructors, nil
}

func (s *IdentityService) checkUsername(ctx context.Context, username string) error {
	taken, err := s.accounts.ExistsUsername(ctx, username)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}
	if taken {
		return appErrors.Clone(appErrors.ErrDuplicateUsername, "")
	}
	return nil
}

// normalizeStorageError keeps typed conflicts intact and wraps everything
// else as an internal failure.
func normalizeStorageError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
