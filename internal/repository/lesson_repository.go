package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus/academ-api/internal/models"
)

// LessonRepository handles persistence of ordered lesson content.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs the repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListBySection returns all lesson content of a section grouped by lesson
// name and ordered inside each group.
func (r *LessonRepository) ListBySection(ctx context.Context, courseID, sectionID int64) ([]models.LessonContent, error) {
	const query = `SELECT course_id, section_id, lesson_name, order_index, type, content, link
        FROM lesson_contents WHERE course_id = $1 AND section_id = $2
        ORDER BY lesson_name, order_index`
	var lessons []models.LessonContent
	if err := r.db.SelectContext(ctx, &lessons, query, courseID, sectionID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// Append inserts one item at the tail of its lesson group. The next
// order_index is read and written inside one transaction; indexes are never
// reused after deletes.
func (r *LessonRepository) Append(ctx context.Context, item *models.LessonContent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append lesson: %w", err)
	}

	const maxQuery = `SELECT COALESCE(MAX(order_index), 0) FROM lesson_contents
        WHERE course_id = $1 AND section_id = $2 AND lesson_name = $3`
	var maxIndex int
	if err := tx.GetContext(ctx, &maxIndex, maxQuery, item.CourseID, item.SectionID, item.LessonName); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("read max order index: %w", err)
	}
	item.OrderIndex = maxIndex + 1

	const insertQuery = `INSERT INTO lesson_contents (course_id, section_id, lesson_name, order_index, type, content, link)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, insertQuery,
		item.CourseID, item.SectionID, item.LessonName, item.OrderIndex, item.Type, item.Content, item.Link); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert lesson content: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append lesson: %w", err)
	}
	return nil
}

// UpdateContentBatch rewrites the content text of the addressed items in one
// transaction. Type and link are immutable through this path.
func (r *LessonRepository) UpdateContentBatch(ctx context.Context, courseID, sectionID int64, updates []models.LessonContentUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update lessons: %w", err)
	}

	const query = `UPDATE lesson_contents SET content = $5
        WHERE course_id = $1 AND section_id = $2 AND lesson_name = $3 AND order_index = $4`
	for _, update := range updates {
		if _, err := tx.ExecContext(ctx, query,
			courseID, sectionID, update.LessonName, update.OrderIndex, update.Content); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("update lesson content: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update lessons: %w", err)
	}
	return nil
}

// DeleteItem removes exactly the row matching all five fields. The
// over-specified match guards against deleting the wrong row. Returns
// sql.ErrNoRows when nothing matched.
func (r *LessonRepository) DeleteItem(ctx context.Context, item models.LessonContent) error {
	const query = `DELETE FROM lesson_contents
        WHERE course_id = $1 AND section_id = $2 AND lesson_name = $3 AND order_index = $4 AND type = $5 AND content = $6`
	result, err := r.db.ExecContext(ctx, query,
		item.CourseID, item.SectionID, item.LessonName, item.OrderIndex, item.Type, item.Content)
	if err != nil {
		return fmt.Errorf("delete lesson item: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteGroup removes every item of a lesson group.
func (r *LessonRepository) DeleteGroup(ctx context.Context, courseID, sectionID int64, lessonName string) error {
	const query = `DELETE FROM lesson_contents WHERE course_id = $1 AND section_id = $2 AND lesson_name = $3`
	result, err := r.db.ExecContext(ctx, query, courseID, sectionID, lessonName)
	if err != nil {
		return fmt.Errorf("delete lesson group: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
