package domain

import (
	"context"
	"time"
)

// LessonProgress records how far a user got through one lesson.
type LessonProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"user_id"`
	User        *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LessonID    uint       `gorm:"not null;uniqueIndex:idx_progress_user_lesson" json:"lesson_id"`
	Lesson      *Lesson    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CourseID    uint       `gorm:"not null;index" json:"course_id"`
	Percent     int        `gorm:"not null;default:0" json:"percent"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// CourseProgress summarizes a user's completion of a course's Active lessons.
type CourseProgress struct {
	CourseID         uint  `json:"course_id"`
	TotalLessons     int64 `json:"total_lessons"`
	CompletedLessons int64 `json:"completed_lessons"`
	Percent          int   `json:"percent"`
}

// Finished reports whether every lesson of a non-empty course is completed.
func (p CourseProgress) Finished() bool {
	return p.TotalLessons > 0 && p.CompletedLessons >= p.TotalLessons
}

// ProgressRepository defines the data access interface for lesson progress.
type ProgressRepository interface {
	Upsert(ctx context.Context, p *LessonProgress) error
	Query(ctx context.Context, f Filter, userID uint) (*PageResult[LessonProgress], error)
	CountCompleted(ctx context.Context, userID, courseID uint) (int64, error)
}

// ProgressService defines the business logic interface for progress tracking.
type ProgressService interface {
	Record(ctx context.Context, userID, lessonID uint, percent int) (*LessonProgress, error)
	ListProgress(ctx context.Context, f Filter, userID uint) (*PageResult[LessonProgress], error)
	CourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error)
	Certificate(ctx context.Context, userID, courseID uint) ([]byte, error)
}

// TableName keeps the progress table name singular.
func (LessonProgress) TableName() string {
	return "lesson_progress"
}
