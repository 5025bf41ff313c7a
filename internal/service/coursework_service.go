package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Assignment, error)
	ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error)
	SectionIDForAssignment(ctx context.Context, assignmentID int64) (int64, error)
	CreateWithLink(ctx context.Context, sectionID int64, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	DeleteWithLink(ctx context.Context, sectionID, assignmentID int64) error
}

type submissionRepository interface {
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error)
	Upsert(ctx context.Context, submission *models.Submission) error
	UpdateGrade(ctx context.Context, assignmentID, studentID int64, grade float64) error
	ListByStudentAndSection(ctx context.Context, studentID, sectionID int64) ([]models.Submission, error)
}

type courseworkSectionReader interface {
	FindByID(ctx context.Context, id int64) (*models.Section, error)
}

// AddAssignmentRequest describes assignment creation for a section.
type AddAssignmentRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description" validate:"required"`
	DueDate     time.Time `json:"due_date" validate:"required"`
}

// SubmitAssignmentRequest describes a submission upsert.
type SubmitAssignmentRequest struct {
	AssignmentID   int64  `json:"assignment_id" validate:"required"`
	StudentID      int64  `json:"student_id" validate:"required"`
	SubmissionLink string `json:"submission_link" validate:"required,url"`
}

// UpdateGradeRequest describes a grading call.
type UpdateGradeRequest struct {
	AssignmentID int64   `json:"assignment_id" validate:"required"`
	StudentID    int64   `json:"student_id" validate:"required"`
	Grade        float64 `json:"grade" validate:"min=0,max=100"`
}

// CourseworkService manages assignments, their section links, submissions
// and grades. Every mutating call returns the refreshed collection so the
// caller reads its own write.
type CourseworkService struct {
	assignments assignmentRepository
	submissions submissionRepository
	sections    courseworkSectionReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourseworkService constructs CourseworkService.
func NewCourseworkService(assignments assignmentRepository, submissions submissionRepository, sections courseworkSectionReader, validate *validator.Validate, logger *zap.Logger) *CourseworkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseworkService{assignments: assignments, submissions: submissions, sections: sections, validator: validate, logger: logger}
}

// ListAssignments returns the assignments linked to a section.
func (s *CourseworkService) ListAssignments(ctx context.Context, sectionID int64) ([]models.Assignment, error) {
	assignments, err := s.assignments.ListBySection(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// GetAssignment returns one assignment by id.
func (s *CourseworkService) GetAssignment(ctx context.Context, assignmentID int64) (*models.Assignment, error) {
	assignment, err := s.assignments.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return assignment, nil
}

// AddAssignment creates an assignment and links it to the section in one
// transaction, then returns the section's refreshed assignment list.
func (s *CourseworkService) AddAssignment(ctx context.Context, sectionID int64, req AddAssignmentRequest) ([]models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.sections.FindByID(ctx, sectionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}

	assignment := &models.Assignment{Name: req.Name, Description: req.Description, DueDate: req.DueDate}
	if err := s.assignments.CreateWithLink(ctx, sectionID, assignment); err != nil {
		return nil, normalizeStorageError(err, "failed to create assignment")
	}

	s.logger.Info("assignment created",
		zap.Int64("assignment_id", assignment.ID),
		zap.Int64("section_id", sectionID))
	return s.ListAssignments(ctx, sectionID)
}

// EditAssignment overwrites the assignment fields without touching its
// section link, then returns the owning section's refreshed list.
func (s *CourseworkService) EditAssignment(ctx context.Context, assignmentID int64, req AddAssignmentRequest) ([]models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	sectionID, err := s.assignments.SectionIDForAssignment(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assignment section")
	}

	assignment := &models.Assignment{ID: assignmentID, Name: req.Name, Description: req.Description, DueDate: req.DueDate}
	if err := s.assignments.Update(ctx, assignment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, normalizeStorageError(err, "failed to update assignment")
	}

	return s.ListAssignments(ctx, sectionID)
}

// DeleteAssignment removes the section link and the assignment atomically,
// then returns the refreshed list.
func (s *CourseworkService) DeleteAssignment(ctx context.Context, sectionID, assignmentID int64) ([]models.Assignment, error) {
	if err := s.assignments.DeleteWithLink(ctx, sectionID, assignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not linked to section")
		}
		return nil, normalizeStorageError(err, "failed to delete assignment")
	}
	return s.ListAssignments(ctx, sectionID)
}

// SubmitAssignment upserts the student's submission by its natural key and
// returns the student's refreshed submissions for the owning section. A
// resubmission rewrites link and date; it never duplicates the row and never
// clears an existing grade.
func (s *CourseworkService) SubmitAssignment(ctx context.Context, req SubmitAssignmentRequest) ([]models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	sectionID, err := s.assignments.SectionIDForAssignment(ctx, req.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assignment section")
	}

	submission := &models.Submission{
		AssignmentID:   req.AssignmentID,
		StudentID:      req.StudentID,
		SubmissionLink: req.SubmissionLink,
	}
	if err := s.submissions.Upsert(ctx, submission); err != nil {
		return nil, normalizeStorageError(err, "failed to store submission")
	}

	return s.ListSubmissions(ctx, req.StudentID, sectionID)
}

// ListSubmissions returns the student's submissions within a section.
func (s *CourseworkService) ListSubmissions(ctx context.Context, studentID, sectionID int64) ([]models.Submission, error) {
	submissions, err := s.submissions.ListByStudentAndSection(ctx, studentID, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// UpdateGrade grades an existing submission. A missing submission is an
// expected state, reported as a NO_SUBMISSION outcome instead of an error so
// callers can render "cannot grade yet".
func (s *CourseworkService) UpdateGrade(ctx context.Context, req UpdateGradeRequest) (*models.GradeOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	if err := s.submissions.UpdateGrade(ctx, req.AssignmentID, req.StudentID, req.Grade); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.GradeOutcome{Status: models.GradeStatusNoSubmission}, nil
		}
		return nil, normalizeStorageError(err, "failed to update grade")
	}

	submission, err := s.submissions.FindByAssignmentAndStudent(ctx, req.AssignmentID, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load graded submission")
	}
	return &models.GradeOutcome{Status: models.GradeStatusGraded, Submission: submission}, nil
}
