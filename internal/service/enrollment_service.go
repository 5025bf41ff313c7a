package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type enrollmentRepository interface {
	FindByStudentAndSection(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error)
	ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	DeleteByStudentAndSection(ctx context.Context, studentID, sectionID int64) error
	DeleteByID(ctx context.Context, id int64) error
	ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error)
	ListForSection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error)
	ListAllJoined(ctx context.Context) ([]models.EnrollmentDetail, error)
}

type enrollmentStudentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

type enrollmentCourseReader interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
}

type enrollmentSectionReader interface {
	FindByID(ctx context.Context, id int64) (*models.Section, error)
}

type dashboardInvalidator interface {
	InvalidateCourseMap(ctx context.Context)
	InvalidateStudentDashboard(ctx context.Context, studentID int64)
}

// EnrollStudentRequest describes enrollment creation.
type EnrollStudentRequest struct {
	StudentID int64 `json:"student_id" validate:"required"`
	CourseID  int64 `json:"course_id" validate:"required"`
	SectionID int64 `json:"section_id" validate:"required"`
}

// EnrollmentService enforces the enrollment uniqueness rules.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  enrollmentStudentReader
	courses   enrollmentCourseReader
	sections  enrollmentSectionReader
	rosters   dashboardInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students enrollmentStudentReader, courses enrollmentCourseReader, sections enrollmentSectionReader, rosters dashboardInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, courses: courses, sections: sections, rosters: rosters, validator: validate, logger: logger}
}

// Enroll registers a student into a section. The same (student, section)
// pair is rejected as ALREADY_ENROLLED; any other section of the same course
// is rejected as COURSE_CONFLICT. Unique constraints back both checks.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollStudentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	section, err := s.sections.FindByID(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if section.CourseID != req.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "section does not belong to course")
	}

	if _, err := s.repo.FindByStudentAndSection(ctx, req.StudentID, req.SectionID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrAlreadyEnrolled, "")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	inCourse, err := s.repo.ExistsForCourse(ctx, req.StudentID, req.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course enrollment")
	}
	if inCourse {
		return nil, appErrors.Clone(appErrors.ErrCourseConflict, "")
	}

	enrollment := &models.Enrollment{StudentID: req.StudentID, CourseID: req.CourseID, SectionID: req.SectionID}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, normalizeStorageError(err, "failed to create enrollment")
	}

	s.invalidate(ctx, req.StudentID)
	s.logger.Info("enrollment created",
		zap.Int64("student_id", req.StudentID),
		zap.Int64("section_id", req.SectionID))
	return enrollment, nil
}

// Drop removes the enrollment matching (studentID, sectionID).
func (s *EnrollmentService) Drop(ctx context.Context, studentID, sectionID int64) error {
	if err := s.repo.DeleteByStudentAndSection(ctx, studentID, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop enrollment")
	}
	s.invalidate(ctx, studentID)
	return nil
}

// DeleteByID is the admin path keyed by surrogate id.
func (s *EnrollmentService) DeleteByID(ctx context.Context, id int64) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	s.invalidate(ctx, 0)
	return nil
}

// ListForStudent returns the student's enrollments with joined names.
func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListForSection returns the section's enrollments with joined names.
func (s *EnrollmentService) ListForSection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListForSection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListAll returns every enrollment for the admin overview.
func (s *EnrollmentService) ListAll(ctx context.Context) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.repo.ListAllJoined(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

func (s *EnrollmentService) invalidate(ctx context.Context, studentID int64) {
	if s.rosters == nil {
		return
	}
	s.rosters.InvalidateCourseMap(ctx)
	if studentID > 0 {
		s.rosters.InvalidateStudentDashboard(ctx, studentID)
	}
}
