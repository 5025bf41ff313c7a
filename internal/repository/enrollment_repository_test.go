package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEnrollmentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollments (student_id, course_id, section_id, created_at)")).
		WithArgs(int64(7), int64(3), int64(11), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	enrollment := &models.Enrollment{StudentID: 7, CourseID: 3, SectionID: 11}
	require.NoError(t, repo.Create(context.Background(), enrollment))
	require.Equal(t, int64(42), enrollment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCreateSectionDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintEnrollStudentSect})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: 7, CourseID: 3, SectionID: 11})
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyEnrolled))
}

func TestEnrollmentRepositoryCreateCourseConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintEnrollStudentCrs})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: 7, CourseID: 3, SectionID: 12})
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrCourseConflict))
}

func TestEnrollmentRepositoryExistsForCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 LIMIT 1")).
		WithArgs(int64(7), int64(3)).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsForCourse(context.Background(), 7, 3)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEnrollmentRepositoryDeleteByStudentAndSectionMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE student_id = $1 AND section_id = $2")).
		WithArgs(int64(7), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteByStudentAndSection(context.Background(), 7, 11)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestEnrollmentRepositoryListForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "section_id", "created_at",
		"student_name", "student_email", "course_code", "course_name", "section_label"}).
		AddRow(int64(1), int64(7), int64(3), int64(11), time.Now(), "Ada Lovelace", "ada@example.com", "CS101", "Intro", "A")
	mock.ExpectQuery("SELECT .+ FROM enrollments e").
		WithArgs(int64(7)).
		WillReturnRows(rows)

	enrollments, err := repo.ListForStudent(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	require.Equal(t, "CS101", enrollments[0].CourseCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
