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

type lessonRepository interface {
	ListBySection(ctx context.Context, courseID, sectionID int64) ([]models.LessonContent, error)
	Append(ctx context.Context, item *models.LessonContent) error
	UpdateContentBatch(ctx context.Context, courseID, sectionID int64, updates []models.LessonContentUpdate) error
	DeleteItem(ctx context.Context, item models.LessonContent) error
	DeleteGroup(ctx context.Context, courseID, sectionID int64, lessonName string) error
}

type lessonSectionResolver interface {
	FindForInstructor(ctx context.Context, instructorID int64, courseCode, label string) (*models.SectionDetail, error)
}

// SectionRef addresses a section the way instructors do: by their own id
// plus course code and section label. Every lesson mutation resolves it
// before touching storage.
type SectionRef struct {
	InstructorID int64  `json:"instructor_id" validate:"required"`
	CourseCode   string `json:"course_code" validate:"required"`
	SectionLabel string `json:"section_label" validate:"required"`
}

// AddLessonContentRequest describes one appended lesson item. Adding the
// first item of a new lesson name and adding content to an existing one are
// the same append; only the caller's intent differs.
type AddLessonContentRequest struct {
	LessonName string            `json:"lesson_name" validate:"required"`
	Type       models.LessonType `json:"type" validate:"required"`
	Content    string            `json:"content" validate:"required"`
	Link       *string           `json:"link,omitempty"`
}

// DeleteLessonItemRequest addresses one item by its full natural key.
type DeleteLessonItemRequest struct {
	LessonName string            `json:"lesson_name" validate:"required"`
	OrderIndex int               `json:"order_index" validate:"required,min=1"`
	Type       models.LessonType `json:"type" validate:"required"`
	Content    string            `json:"content" validate:"required"`
}

// LessonService manages the ordered lesson content of sections.
type LessonService struct {
	lessons   lessonRepository
	sections  lessonSectionResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService constructs LessonService.
func NewLessonService(lessons lessonRepository, sections lessonSectionResolver, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{lessons: lessons, sections: sections, validator: validate, logger: logger}
}

func (s *LessonService) resolve(ctx context.Context, ref SectionRef) (*models.SectionDetail, error) {
	if err := s.validator.Struct(ref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid section reference")
	}
	section, err := s.sections.FindForInstructor(ctx, ref.InstructorID, ref.CourseCode, ref.SectionLabel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no section for instructor, course code and label")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve section")
	}
	return section, nil
}

// List returns the section's lesson content grouped and ordered.
func (s *LessonService) List(ctx context.Context, ref SectionRef) ([]models.LessonContent, error) {
	section, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.listResolved(ctx, section.CourseID, section.ID)
}

// AddContent appends one item to a lesson group, creating the group when the
// name is new. order_index continues at max+1 and is never reused.
func (s *LessonService) AddContent(ctx context.Context, ref SectionRef, req AddLessonContentRequest) ([]models.LessonContent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if !models.ValidLessonType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lesson content type")
	}
	section, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	item := &models.LessonContent{
		CourseID:   section.CourseID,
		SectionID:  section.ID,
		LessonName: req.LessonName,
		Type:       req.Type,
		Content:    req.Content,
		Link:       req.Link,
	}
	if err := s.lessons.Append(ctx, item); err != nil {
		return nil, normalizeStorageError(err, "failed to append lesson content")
	}

	s.logger.Info("lesson content added",
		zap.Int64("section_id", section.ID),
		zap.String("lesson", req.LessonName),
		zap.Int("order_index", item.OrderIndex))
	return s.listResolved(ctx, section.CourseID, section.ID)
}

// UpdateContent rewrites the content text of the addressed items in one
// transaction.
func (s *LessonService) UpdateContent(ctx context.Context, ref SectionRef, updates []models.LessonContentUpdate) ([]models.LessonContent, error) {
	if len(updates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no lesson updates provided")
	}
	for _, update := range updates {
		if err := s.validator.Struct(update); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson update")
		}
	}
	section, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.lessons.UpdateContentBatch(ctx, section.CourseID, section.ID, updates); err != nil {
		return nil, normalizeStorageError(err, "failed to update lesson content")
	}
	return s.listResolved(ctx, section.CourseID, section.ID)
}

// DeleteItem removes one item matched on its full natural key.
func (s *LessonService) DeleteItem(ctx context.Context, ref SectionRef, req DeleteLessonItemRequest) ([]models.LessonContent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid delete payload")
	}
	section, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	item := models.LessonContent{
		CourseID:   section.CourseID,
		SectionID:  section.ID,
		LessonName: req.LessonName,
		OrderIndex: req.OrderIndex,
		Type:       req.Type,
		Content:    req.Content,
	}
	if err := s.lessons.DeleteItem(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson item not found")
		}
		return nil, normalizeStorageError(err, "failed to delete lesson item")
	}
	return s.listResolved(ctx, section.CourseID, section.ID)
}

// DeleteGroup removes an entire lesson group.
func (s *LessonService) DeleteGroup(ctx context.Context, ref SectionRef, lessonName string) ([]models.LessonContent, error) {
	if lessonName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson name required")
	}
	section, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	if err := s.lessons.DeleteGroup(ctx, section.CourseID, section.ID, lessonName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson group not found")
		}
		return nil, normalizeStorageError(err, "failed to delete lesson group")
	}
	return s.listResolved(ctx, section.CourseID, section.ID)
}

func (s *LessonService) listResolved(ctx context.Context, courseID, sectionID int64) ([]models.LessonContent, error) {
	lessons, err := s.lessons.ListBySection(ctx, courseID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, nil
}
