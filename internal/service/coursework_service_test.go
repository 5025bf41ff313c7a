package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type mockAssignmentRepo struct {
	assignment *models.Assignment
	list       []models.Assignment
	sectionID  int64
	sectionErr error
	createErr  error
	updateErr  error
	deleteErr  error
	created    *models.Assignment
	deletedKey [2]int64
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	if m.assignment == nil {
		return nil, sql.ErrNoRows
	}
	return m.assignment, nil
}

func (m *mockAssignmentRepo) ListBySection(ctx context.Context, sectionID int64) ([]models.Assignment, error) {
	return m.list, nil
}

func (m *mockAssignmentRepo) SectionIDForAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	if m.sectionErr != nil {
		return 0, m.sectionErr
	}
	return m.sectionID, nil
}

func (m *mockAssignmentRepo) CreateWithLink(ctx context.Context, sectionID int64, assignment *models.Assignment) error {
	if m.createErr != nil {
		return m.createErr
	}
	assignment.ID = 21
	m.created = assignment
	m.list = append(m.list, *assignment)
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	return m.updateErr
}

func (m *mockAssignmentRepo) DeleteWithLink(ctx context.Context, sectionID, assignmentID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedKey = [2]int64{sectionID, assignmentID}
	return nil
}

type mockSubmissionRepo struct {
	submission *models.Submission
	list       []models.Submission
	upsertErr  error
	gradeErr   error
	upserted   *models.Submission
	gradedKey  [2]int64
	gradeValue float64
}

func (m *mockSubmissionRepo) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID int64) (*models.Submission, error) {
	if m.submission == nil {
		return nil, sql.ErrNoRows
	}
	return m.submission, nil
}

func (m *mockSubmissionRepo) Upsert(ctx context.Context, submission *models.Submission) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	submission.ID = 31
	m.upserted = submission
	return nil
}

func (m *mockSubmissionRepo) UpdateGrade(ctx context.Context, assignmentID, studentID int64, grade float64) error {
	if m.gradeErr != nil {
		return m.gradeErr
	}
	m.gradedKey = [2]int64{assignmentID, studentID}
	m.gradeValue = grade
	return nil
}

func (m *mockSubmissionRepo) ListByStudentAndSection(ctx context.Context, studentID, sectionID int64) ([]models.Submission, error) {
	return m.list, nil
}

func newCourseworkFixture(assignments *mockAssignmentRepo, submissions *mockSubmissionRepo, section *models.Section) *CourseworkService {
	return NewCourseworkService(assignments, submissions,
		&mockSectionReader{section: section}, validator.New(), zap.NewNop())
}

func TestCourseworkServiceAddAssignmentReturnsList(t *testing.T) {
	assignments := &mockAssignmentRepo{}
	svc := newCourseworkFixture(assignments, &mockSubmissionRepo{}, &models.Section{ID: 5, CourseID: 3})

	list, err := svc.AddAssignment(context.Background(), 5, AddAssignmentRequest{
		Name: "Essay", Description: "Write one", DueDate: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	require.NotNil(t, assignments.created)
	assert.Equal(t, int64(21), assignments.created.ID)
	require.Len(t, list, 1)
}

func TestCourseworkServiceAddAssignmentUnknownSection(t *testing.T) {
	svc := newCourseworkFixture(&mockAssignmentRepo{}, &mockSubmissionRepo{}, nil)

	_, err := svc.AddAssignment(context.Background(), 5, AddAssignmentRequest{
		Name: "Essay", Description: "Write one", DueDate: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCourseworkServiceDeleteAssignmentMissingLink(t *testing.T) {
	assignments := &mockAssignmentRepo{deleteErr: sql.ErrNoRows}
	svc := newCourseworkFixture(assignments, &mockSubmissionRepo{}, &models.Section{ID: 5})

	_, err := svc.DeleteAssignment(context.Background(), 5, 21)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCourseworkServiceSubmitAssignment(t *testing.T) {
	assignments := &mockAssignmentRepo{sectionID: 5}
	submissions := &mockSubmissionRepo{list: []models.Submission{{ID: 31, AssignmentID: 21, StudentID: 7}}}
	svc := newCourseworkFixture(assignments, submissions, &models.Section{ID: 5})

	list, err := svc.SubmitAssignment(context.Background(), SubmitAssignmentRequest{
		AssignmentID: 21, StudentID: 7, SubmissionLink: "https://repo.example.com/hw",
	})
	require.NoError(t, err)
	require.NotNil(t, submissions.upserted)
	assert.Equal(t, int64(31), submissions.upserted.ID)
	require.Len(t, list, 1)
}

func TestCourseworkServiceSubmitUnknownAssignment(t *testing.T) {
	assignments := &mockAssignmentRepo{sectionErr: sql.ErrNoRows}
	svc := newCourseworkFixture(assignments, &mockSubmissionRepo{}, &models.Section{ID: 5})

	_, err := svc.SubmitAssignment(context.Background(), SubmitAssignmentRequest{
		AssignmentID: 21, StudentID: 7, SubmissionLink: "https://repo.example.com/hw",
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestCourseworkServiceUpdateGrade(t *testing.T) {
	grade := 85.5
	submissions := &mockSubmissionRepo{submission: &models.Submission{ID: 31, AssignmentID: 21, StudentID: 7, Grade: &grade}}
	svc := newCourseworkFixture(&mockAssignmentRepo{}, submissions, &models.Section{ID: 5})

	outcome, err := svc.UpdateGrade(context.Background(), UpdateGradeRequest{AssignmentID: 21, StudentID: 7, Grade: 85.5})
	require.NoError(t, err)
	assert.Equal(t, models.GradeStatusGraded, outcome.Status)
	require.NotNil(t, outcome.Submission)
	assert.Equal(t, [2]int64{21, 7}, submissions.gradedKey)
	assert.Equal(t, 85.5, submissions.gradeValue)
}

func TestCourseworkServiceUpdateGradeNoSubmission(t *testing.T) {
	submissions := &mockSubmissionRepo{gradeErr: sql.ErrNoRows}
	svc := newCourseworkFixture(&mockAssignmentRepo{}, submissions, &models.Section{ID: 5})

	outcome, err := svc.UpdateGrade(context.Background(), UpdateGradeRequest{AssignmentID: 21, StudentID: 7, Grade: 85.5})
	require.NoError(t, err)
	assert.Equal(t, models.GradeStatusNoSubmission, outcome.Status)
	assert.Nil(t, outcome.Submission)
}

func TestCourseworkServiceUpdateGradeOutOfRange(t *testing.T) {
	svc := newCourseworkFixture(&mockAssignmentRepo{}, &mockSubmissionRepo{}, &models.Section{ID: 5})

	_, err := svc.UpdateGrade(context.Background(), UpdateGradeRequest{AssignmentID: 21, StudentID: 7, Grade: 120})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
