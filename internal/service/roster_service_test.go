package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

type mockRosterRepo struct {
	courseMap []models.CourseMapRow
	dashboard []models.DashboardRow
	gradebook []models.GradebookRow
	students  []models.RosterStudent
	mapCalls  int
}

func (m *mockRosterRepo) CourseMap(ctx context.Context) ([]models.CourseMapRow, error) {
	m.mapCalls++
	return m.courseMap, nil
}

func (m *mockRosterRepo) DashboardRows(ctx context.Context, studentID int64) ([]models.DashboardRow, error) {
	return m.dashboard, nil
}

func (m *mockRosterRepo) GradebookRows(ctx context.Context, sectionID int64) ([]models.GradebookRow, error) {
	return m.gradebook, nil
}

func (m *mockRosterRepo) RosterStudents(ctx context.Context, courseID, sectionID int64) ([]models.RosterStudent, error) {
	return m.students, nil
}

func newRosterFixture(repo *mockRosterRepo) *RosterService {
	return NewRosterService(repo, nil, nil, RosterOptions{ExportEnabled: true}, zap.NewNop())
}

func TestRosterServiceDashboardGroupsAssignments(t *testing.T) {
	due := time.Now().Add(48 * time.Hour)
	aID1, aID2 := int64(21), int64(22)
	name1, name2 := "Essay", "Quiz"
	repo := &mockRosterRepo{dashboard: []models.DashboardRow{
		{CourseID: 3, CourseCode: "CS101", CourseName: "Intro", SectionID: 5, SectionLabel: "A",
			InstructorName: "Grace Hopper", InstructorEmail: "grace@example.com",
			AssignmentID: &aID1, AssignmentName: &name1, AssignmentDue: &due},
		{CourseID: 3, CourseCode: "CS101", CourseName: "Intro", SectionID: 5, SectionLabel: "A",
			InstructorName: "Grace Hopper", InstructorEmail: "grace@example.com",
			AssignmentID: &aID2, AssignmentName: &name2, AssignmentDue: &due},
		{CourseID: 4, CourseCode: "MA201", CourseName: "Calculus", SectionID: 8, SectionLabel: "B",
			InstructorName: "Emmy Noether", InstructorEmail: "emmy@example.com"},
	}}
	svc := newRosterFixture(repo)

	dashboard, err := svc.StudentDashboard(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, dashboard, 2)

	assert.Equal(t, "CS101", dashboard[0].CourseCode)
	require.Len(t, dashboard[0].Assignments, 2)
	assert.Equal(t, int64(21), dashboard[0].Assignments[0].AssignmentID)

	// a section without coursework still appears, with an empty list
	assert.Equal(t, "MA201", dashboard[1].CourseCode)
	require.NotNil(t, dashboard[1].Assignments)
	assert.Empty(t, dashboard[1].Assignments)
}

func TestRosterServiceGradebookKeepsMissingSubmissions(t *testing.T) {
	grade := 85.5
	subID := int64(31)
	repo := &mockRosterRepo{gradebook: []models.GradebookRow{
		{AssignmentID: 21, AssignmentName: "Essay", StudentID: 7, StudentName: "Ada Lovelace", SubmissionID: &subID, Grade: &grade},
		{AssignmentID: 21, AssignmentName: "Essay", StudentID: 8, StudentName: "Alan Turing"},
	}}
	svc := newRosterFixture(repo)

	rows, err := svc.SectionGradebook(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Nil(t, rows[1].SubmissionID)
	assert.Nil(t, rows[1].Grade)
}

func TestRosterServiceExportRosterCSV(t *testing.T) {
	repo := &mockRosterRepo{students: []models.RosterStudent{
		{StudentID: 7, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
	}}
	svc := newRosterFixture(repo)

	file, err := svc.ExportRoster(context.Background(), 3, 5, ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "roster_section_5.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Content)
	assert.True(t, strings.Contains(content, "Ada"))
	assert.True(t, strings.Contains(content, "ada@example.com"))
}

func TestRosterServiceExportGradebookPDF(t *testing.T) {
	repo := &mockRosterRepo{gradebook: []models.GradebookRow{
		{AssignmentID: 21, AssignmentName: "Essay", StudentID: 7, StudentName: "Ada Lovelace"},
	}}
	svc := newRosterFixture(repo)

	file, err := svc.ExportGradebook(context.Background(), 5, ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "gradebook_section_5.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.NotEmpty(t, file.Content)
}

func TestRosterServiceExportUnknownFormat(t *testing.T) {
	svc := newRosterFixture(&mockRosterRepo{})

	_, err := svc.ExportRoster(context.Background(), 3, 5, "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestRosterServiceExportDisabled(t *testing.T) {
	svc := NewRosterService(&mockRosterRepo{}, nil, nil, RosterOptions{ExportEnabled: false}, zap.NewNop())

	_, err := svc.ExportRoster(context.Background(), 3, 5, ExportFormatCSV)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}

func TestRosterServiceCourseMapWithoutCache(t *testing.T) {
	repo := &mockRosterRepo{courseMap: []models.CourseMapRow{{CourseID: 3, CourseCode: "CS101", SectionID: 5}}}
	svc := newRosterFixture(repo)

	rows, err := svc.CourseMap(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	_, err = svc.CourseMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.mapCalls)
}
