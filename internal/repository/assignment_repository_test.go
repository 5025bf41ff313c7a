package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/academ-api/internal/models"
)

func TestAssignmentRepositoryCreateWithLink(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments (name, description, due_date, created_at, updated_at)")).
		WithArgs("Essay", "Write one", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_assignments (section_id, assignment_id) VALUES ($1, $2)")).
		WithArgs(int64(5), int64(21)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.Assignment{Name: "Essay", Description: "Write one", DueDate: time.Now().Add(72 * time.Hour)}
	require.NoError(t, repo.CreateWithLink(context.Background(), 5, assignment))
	require.Equal(t, int64(21), assignment.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCreateWithLinkRollsBack(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO section_assignments")).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	assignment := &models.Assignment{Name: "Essay", Description: "Write one", DueDate: time.Now()}
	require.Error(t, repo.CreateWithLink(context.Background(), 5, assignment))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteWithLinkMissingLink(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM section_assignments WHERE section_id = $1 AND assignment_id = $2")).
		WithArgs(int64(5), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.DeleteWithLink(context.Background(), 5, 21)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryDeleteWithLink(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM section_assignments")).
		WithArgs(int64(5), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments WHERE id = $1")).
		WithArgs(int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.DeleteWithLink(context.Background(), 5, 21))
	require.NoError(t, mock.ExpectationsWereMet())
}
