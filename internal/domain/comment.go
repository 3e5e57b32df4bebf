package domain

import "context"

// CommentTarget names what a comment is attached to.
type CommentTarget int

const (
	TargetPost CommentTarget = iota + 1
	TargetLesson
)

// Comment is attached to exactly one post or one lesson.
type Comment struct {
	BaseModel
	UserID   uint    `gorm:"not null;index" json:"user_id"`
	User     *User   `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	PostID   *uint   `gorm:"index" json:"post_id"`
	Post     *Post   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	LessonID *uint   `gorm:"index" json:"lesson_id"`
	Lesson   *Lesson `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Content  string  `gorm:"type:text;not null" json:"content"`
}

// CommentRepository defines the data access interface for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id uint) (*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	Delete(ctx context.Context, id uint) error
	Query(ctx context.Context, f Filter, target CommentTarget, targetID uint) (*PageResult[Comment], error)
}

// CommentService defines the business logic interface for comments.
type CommentService interface {
	AddComment(ctx context.Context, userID uint, target CommentTarget, targetID uint, content string) (*Comment, error)
	ListComments(ctx context.Context, f Filter, target CommentTarget, targetID uint) (*PageResult[Comment], error)
	UpdateComment(ctx context.Context, actor Actor, id uint, content string) (*Comment, error)
	DeleteComment(ctx context.Context, actor Actor, id uint) error
}
