package models

// LessonType enumerates the kinds of lesson content items.
type LessonType string

const (
	LessonTypePresentation LessonType = "PRESENTATION"
	LessonTypeDiscussion   LessonType = "DISCUSSION"
	LessonTypeAssignment   LessonType = "ASSIGNMENT"
)

// ValidLessonType reports whether t is a known lesson content type.
func ValidLessonType(t LessonType) bool {
	switch t {
	case LessonTypePresentation, LessonTypeDiscussion, LessonTypeAssignment:
		return true
	}
	return false
}

// LessonContent is one ordered item within a named lesson group of a
// section. OrderIndex is assigned as current max + 1 on insert and is never
// renumbered on delete.
type LessonContent struct {
	CourseID   int64      `db:"course_id" json:"course_id"`
	SectionID  int64      `db:"section_id" json:"section_id"`
	LessonName string     `db:"lesson_name" json:"lesson_name"`
	OrderIndex int        `db:"order_index" json:"order_index"`
	Type       LessonType `db:"type" json:"type"`
	Content    string     `db:"content" json:"content"`
	Link       *string    `db:"link" json:"link,omitempty"`
}

// LessonContentUpdate addresses one item by natural key for a batch content
// rewrite; type and link are immutable through this path.
type LessonContentUpdate struct {
	LessonName string `json:"lesson_name" validate:"required"`
	OrderIndex int    `json:"order_index" validate:"required,min=1"`
	Content    string `json:"content" validate:"required"`
}
