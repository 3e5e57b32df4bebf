package domain

import "context"

// Lesson belongs to a course and carries either an uploaded video file or a
// YouTube link.
type Lesson struct {
	BaseModel
	CourseID     uint    `gorm:"not null;index" json:"course_id"`
	Course       *Course `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Title        string  `gorm:"size:255;not null" json:"title"`
	Description  string  `gorm:"type:text" json:"description"`
	VideoFile    string  `gorm:"size:255" json:"video_file"`
	VideoYoutube string  `gorm:"size:255" json:"video_youtube"`
	SoftDelete
}

// LessonInput carries the writable fields of a lesson. Empty video fields on
// update keep the stored values.
type LessonInput struct {
	CourseID     uint
	Title        string
	Description  string
	VideoFile    string
	VideoYoutube string
}

// LessonRepository defines the data access interface for lessons.
type LessonRepository interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id uint) (*Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Query(ctx context.Context, f Filter, courseID uint) (*PageResult[Lesson], error)
	CountActiveByCourse(ctx context.Context, courseID uint) (int64, error)
	Lifecycle[Lesson]
}

// LessonService defines the business logic interface for lessons.
type LessonService interface {
	CreateLesson(ctx context.Context, in LessonInput) (*Lesson, error)
	GetLesson(ctx context.Context, id uint) (*Lesson, error)
	ListLessons(ctx context.Context, f Filter, courseID uint) (*PageResult[Lesson], error)
	TrashedLessons(ctx context.Context, f Filter) (*PageResult[Lesson], error)
	UpdateLesson(ctx context.Context, id uint, in LessonInput) (*Lesson, error)
	Lifecycle[Lesson]
}
