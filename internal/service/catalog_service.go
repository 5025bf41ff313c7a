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

type catalogCourseRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context) ([]models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
}

type catalogSectionRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Section, error)
	FindByCourseAndLabel(ctx context.Context, courseID int64, label string) (*models.Section, error)
	ListByCourse(ctx context.Context, courseID int64) ([]models.Section, error)
	Create(ctx context.Context, section *models.Section) error
	SetInstructor(ctx context.Context, id, instructorID int64) error
	Update(ctx context.Context, section *models.Section) error
}

type catalogInstructorReader interface {
	FindByID(ctx context.Context, id int64) (*models.Instructor, error)
}

type rosterInvalidator interface {
	InvalidateCourseMap(ctx context.Context)
}

// CreateCourseRequest describes catalog course creation.
type CreateCourseRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// AssignSectionRequest describes a section-instructor assignment.
type AssignSectionRequest struct {
	CourseID     int64  `json:"course_id" validate:"required"`
	Label        string `json:"label" validate:"required"`
	InstructorID int64  `json:"instructor_id" validate:"required"`
}

// EditSectionRequest describes the administrative section overwrite.
type EditSectionRequest struct {
	CourseID     int64  `json:"course_id" validate:"required"`
	Label        string `json:"label" validate:"required"`
	InstructorID *int64 `json:"instructor_id"`
}

// CatalogService manages courses and section-instructor assignment.
type CatalogService struct {
	courses     catalogCourseRepository
	sections    catalogSectionRepository
	instructors catalogInstructorReader
	rosters     rosterInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCatalogService constructs CatalogService.
func NewCatalogService(courses catalogCourseRepository, sections catalogSectionRepository, instructors catalogInstructorReader, rosters rosterInvalidator, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{courses: courses, sections: sections, instructors: instructors, rosters: rosters, validator: validate, logger: logger}
}

// CreateCourse adds a catalog entry with a unique code.
func (s *CatalogService) CreateCourse(ctx context.Context, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	taken, err := s.courses.ExistsCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrDuplicateCourseCode, "")
	}

	course := &models.Course{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, normalizeStorageError(err, "failed to create course")
	}

	s.invalidate(ctx)
	return course, nil
}

// EditCourse overwrites all course fields.
func (s *CatalogService) EditCourse(ctx context.Context, courseID int64, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{ID: courseID, Code: req.Code, Name: req.Name, Description: req.Description}
	if err := s.courses.Update(ctx, course); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, normalizeStorageError(err, "failed to update course")
	}

	s.invalidate(ctx)
	return course, nil
}

// GetCourse returns one catalog entry.
func (s *CatalogService) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// ListCourses returns the catalog.
func (s *CatalogService) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// ListSections returns the sections of a course.
func (s *CatalogService) ListSections(ctx context.Context, courseID int64) ([]models.Section, error) {
	sections, err := s.sections.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}

// AssignSectionInstructor runs the three-way section assignment branch:
// no section with (courseID, label) -> insert one with the instructor;
// section exists with an instructor -> conflict, assignments are never
// silently overwritten; section exists without one -> update in place.
func (s *CatalogService) AssignSectionInstructor(ctx context.Context, req AssignSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if _, err := s.instructors.FindByID(ctx, req.InstructorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "instructor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructor")
	}

	existing, err := s.sections.FindByCourseAndLabel(ctx, req.CourseID, req.Label)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	if existing == nil {
		section := &models.Section{CourseID: req.CourseID, Label: req.Label, InstructorID: &req.InstructorID}
		if err := s.sections.Create(ctx, section); err != nil {
			return nil, normalizeStorageError(err, "failed to create section")
		}
		s.invalidate(ctx)
		return section, nil
	}

	if existing.InstructorID != nil {
		return nil, appErrors.Clone(appErrors.ErrSectionAssigned, "")
	}

	if err := s.sections.SetInstructor(ctx, existing.ID, req.InstructorID); err != nil {
		return nil, normalizeStorageError(err, "failed to assign instructor")
	}
	existing.InstructorID = &req.InstructorID
	s.invalidate(ctx)
	return existing, nil
}

// EditSection is the administrative override: a full overwrite that does not
// recheck the occupied-instructor rule.
func (s *CatalogService) EditSection(ctx context.Context, sectionID int64, req EditSectionRequest) (*models.Section, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section payload")
	}
	section := &models.Section{ID: sectionID, CourseID: req.CourseID, Label: req.Label, InstructorID: req.InstructorID}
	if err := s.sections.Update(ctx, section); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, normalizeStorageError(err, "failed to update section")
	}

	s.invalidate(ctx)
	return section, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.rosters != nil {
		s.rosters.InvalidateCourseMap(ctx)
	}
}
