package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	existing   *models.Enrollment
	inCourse   bool
	created    *models.Enrollment
	createErr  error
	deleteErr  error
	details    []models.EnrollmentDetail
	deletedKey [2]int64
}

func (m *mockEnrollmentRepo) FindByStudentAndSection(ctx context.Context, studentID, sectionID int64) (*models.Enrollment, error) {
	if m.existing == nil {
		return nil, sql.ErrNoRows
	}
	return m.existing, nil
}

func (m *mockEnrollmentRepo) ExistsForCourse(ctx context.Context, studentID, courseID int64) (bool, error) {
	return m.inCourse, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.createErr != nil {
		return m.createErr
	}
	enrollment.ID = 42
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) DeleteByStudentAndSection(ctx context.Context, studentID, sectionID int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedKey = [2]int64{studentID, sectionID}
	return nil
}

func (m *mockEnrollmentRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.deleteErr
}

func (m *mockEnrollmentRepo) ListForStudent(ctx context.Context, studentID int64) ([]models.EnrollmentDetail, error) {
	return m.details, nil
}

func (m *mockEnrollmentRepo) ListForSection(ctx context.Context, sectionID int64) ([]models.EnrollmentDetail, error) {
	return m.details, nil
}

func (m *mockEnrollmentRepo) ListAllJoined(ctx context.Context) ([]models.EnrollmentDetail, error) {
	return m.details, nil
}

type mockStudentReader struct {
	student *models.Student
}

func (m *mockStudentReader) FindByID(ctx context.Context, id int64) (*models.Student, error) {
	if m.student == nil {
		return nil, sql.ErrNoRows
	}
	return m.student, nil
}

type mockCourseReader struct {
	course *models.Course
}

func (m *mockCourseReader) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	if m.course == nil {
		return nil, sql.ErrNoRows
	}
	return m.course, nil
}

type mockSectionReader struct {
	section *models.Section
}

func (m *mockSectionReader) FindByID(ctx context.Context, id int64) (*models.Section, error) {
	if m.section == nil {
		return nil, sql.ErrNoRows
	}
	return m.section, nil
}

func newEnrollmentFixture(repo *mockEnrollmentRepo, section *models.Section) (*EnrollmentService, *mockInvalidator) {
	inv := &mockInvalidator{}
	svc := NewEnrollmentService(repo,
		&mockStudentReader{student: &models.Student{ID: 7}},
		&mockCourseReader{course: &models.Course{ID: 3}},
		&mockSectionReader{section: section},
		inv, validator.New(), zap.NewNop())
	return svc, inv
}

func TestEnrollmentServiceEnroll(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc, inv := newEnrollmentFixture(repo, &models.Section{ID: 11, CourseID: 3})

	enrollment, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: 7, CourseID: 3, SectionID: 11})
	require.NoError(t, err)
	assert.Equal(t, int64(42), enrollment.ID)
	assert.Equal(t, 1, inv.courseMapDrops)
	assert.Equal(t, []int64{7}, inv.dashboardDrops)
}

func TestEnrollmentServiceEnrollSameSectionTwice(t *testing.T) {
	repo := &mockEnrollmentRepo{existing: &models.Enrollment{ID: 1, StudentID: 7, SectionID: 11}}
	svc, _ := newEnrollmentFixture(repo, &models.Section{ID: 11, CourseID: 3})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: 7, CourseID: 3, SectionID: 11})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyEnrolled))
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollOtherSectionSameCourse(t *testing.T) {
	repo := &mockEnrollmentRepo{inCourse: true}
	svc, _ := newEnrollmentFixture(repo, &models.Section{ID: 12, CourseID: 3})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: 7, CourseID: 3, SectionID: 12})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrCourseConflict))
	assert.Nil(t, repo.created)
}

func TestEnrollmentServiceEnrollSectionCourseMismatch(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc, _ := newEnrollmentFixture(repo, &models.Section{ID: 11, CourseID: 99})

	_, err := svc.Enroll(context.Background(), EnrollStudentRequest{StudentID: 7, CourseID: 3, SectionID: 11})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestEnrollmentServiceDrop(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc, inv := newEnrollmentFixture(repo, &models.Section{ID: 11, CourseID: 3})

	require.NoError(t, svc.Drop(context.Background(), 7, 11))
	assert.Equal(t, [2]int64{7, 11}, repo.deletedKey)
	assert.Equal(t, 1, inv.courseMapDrops)
	assert.Equal(t, []int64{7}, inv.dashboardDrops)
}

func TestEnrollmentServiceDropMissing(t *testing.T) {
	repo := &mockEnrollmentRepo{deleteErr: sql.ErrNoRows}
	svc, _ := newEnrollmentFixture(repo, &models.Section{ID: 11, CourseID: 3})

	err := svc.Drop(context.Background(), 7, 11)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
