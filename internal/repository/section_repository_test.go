package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/opencampus/academ-api/internal/models"
	appErrors "github.com/opencampus/academ-api/pkg/errors"
)

func TestSectionRepositorySetInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND instructor_id IS NULL")).
		WithArgs(int64(5), int64(9), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetInstructor(context.Background(), 5, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositorySetInstructorOccupied(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	// another assignment won the race: the NULL guard matches nothing
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND instructor_id IS NULL")).
		WithArgs(int64(5), int64(9), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetInstructor(context.Background(), 5, 9)
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrSectionAssigned))
}

func TestSectionRepositoryCreateDuplicateLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO sections")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: constraintSectionsCourseLbl})

	instructorID := int64(9)
	err := repo.Create(context.Background(), &models.Section{CourseID: 3, Label: "A", InstructorID: &instructorID})
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrSectionAssigned))
}

func TestSectionRepositoryFindForInstructor(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	instructorID := int64(9)
	name := "Grace Hopper"
	email := "grace@example.com"
	rows := sqlmock.NewRows([]string{"id", "course_id", "label", "instructor_id", "created_at", "updated_at",
		"course_code", "course_name", "instructor_name", "instructor_email"}).
		AddRow(int64(5), int64(3), "A", instructorID, time.Now(), time.Now(), "CS101", "Intro", name, email)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1 AND c.code = $2 AND s.label = $3")).
		WithArgs(instructorID, "CS101", "A").
		WillReturnRows(rows)

	detail, err := repo.FindForInstructor(context.Background(), instructorID, "CS101", "A")
	require.NoError(t, err)
	require.Equal(t, int64(5), detail.ID)
	require.Equal(t, int64(3), detail.CourseID)
	require.NoError(t, mock.ExpectationsWereMet())
}
