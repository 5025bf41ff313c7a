package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/academ-api/internal/models"
)

func TestSubmissionRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	// the conflict update rewrites link and date only, grade survives
	mock.ExpectQuery(regexp.QuoteMeta("DO UPDATE SET submission_link = EXCLUDED.submission_link, submission_date = EXCLUDED.submission_date")).
		WithArgs(int64(21), int64(7), "https://repo.example.com/hw", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(31)))

	submission := &models.Submission{AssignmentID: 21, StudentID: 7, SubmissionLink: "https://repo.example.com/hw"}
	require.NoError(t, repo.Upsert(context.Background(), submission))
	require.Equal(t, int64(31), submission.ID)
	require.False(t, submission.SubmissionDate.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepositoryUpdateGradeNoSubmission(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET grade = $3 WHERE assignment_id = $1 AND student_id = $2")).
		WithArgs(int64(21), int64(7), 85.5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateGrade(context.Background(), 21, 7, 85.5)
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSubmissionRepositoryUpdateGrade(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE submissions SET grade = $3")).
		WithArgs(int64(21), int64(7), 85.5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateGrade(context.Background(), 21, 7, 85.5))
	require.NoError(t, mock.ExpectationsWereMet())
}
