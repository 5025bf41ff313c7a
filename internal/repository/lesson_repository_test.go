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

func TestLessonRepositoryAppendContinuesIndex(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(order_index), 0) FROM lesson_contents")).
		WithArgs(int64(3), int64(5), "Week 1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_contents (course_id, section_id, lesson_name, order_index, type, content, link)")).
		WithArgs(int64(3), int64(5), "Week 1", 5, models.LessonTypePresentation, "Slides", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item := &models.LessonContent{CourseID: 3, SectionID: 5, LessonName: "Week 1", Type: models.LessonTypePresentation, Content: "Slides"}
	require.NoError(t, repo.Append(context.Background(), item))
	require.Equal(t, 5, item.OrderIndex)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryAppendFirstItem(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(order_index), 0)")).
		WithArgs(int64(3), int64(5), "Week 2").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lesson_contents")).
		WithArgs(int64(3), int64(5), "Week 2", 1, models.LessonTypeDiscussion, "Prompt", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item := &models.LessonContent{CourseID: 3, SectionID: 5, LessonName: "Week 2", Type: models.LessonTypeDiscussion, Content: "Prompt"}
	require.NoError(t, repo.Append(context.Background(), item))
	require.Equal(t, 1, item.OrderIndex)
}

func TestLessonRepositoryDeleteItemMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lesson_contents")).
		WithArgs(int64(3), int64(5), "Week 1", 2, models.LessonTypeDiscussion, "Prompt").
		WillReturnResult(sqlmock.NewResult(0, 0))

	item := models.LessonContent{CourseID: 3, SectionID: 5, LessonName: "Week 1", OrderIndex: 2, Type: models.LessonTypeDiscussion, Content: "Prompt"}
	require.ErrorIs(t, repo.DeleteItem(context.Background(), item), sql.ErrNoRows)
}

func TestLessonRepositoryUpdateContentBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_contents SET content = $5")).
		WithArgs(int64(3), int64(5), "Week 1", 1, "Updated slides").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lesson_contents SET content = $5")).
		WithArgs(int64(3), int64(5), "Week 1", 2, "Updated prompt").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	updates := []models.LessonContentUpdate{
		{LessonName: "Week 1", OrderIndex: 1, Content: "Updated slides"},
		{LessonName: "Week 1", OrderIndex: 2, Content: "Updated prompt"},
	}
	require.NoError(t, repo.UpdateContentBatch(context.Background(), 3, 5, updates))
	require.NoError(t, mock.ExpectationsWereMet())
}
