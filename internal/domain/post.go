package domain

import "context"

// Post is a forum thread written by a user. Posts are removed outright.
type Post struct {
	BaseModel
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    *User  `gorm:"constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
}

// PostRepository defines the data access interface for posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id uint) (*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id uint) error
	Query(ctx context.Context, f Filter) (*PageResult[Post], error)
}

// PostService defines the business logic interface for posts. The actor
// arguments identify the caller and whether it may moderate other authors.
type PostService interface {
	CreatePost(ctx context.Context, userID uint, title, content string) (*Post, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	ListPosts(ctx context.Context, f Filter) (*PageResult[Post], error)
	UpdatePost(ctx context.Context, actor Actor, id uint, title, content string) (*Post, error)
	DeletePost(ctx context.Context, actor Actor, id uint) error
}

// Actor is the authenticated caller of an ownership-checked operation.
type Actor struct {
	UserID    uint
	Moderator bool
}

// CanModify reports whether the actor may change content owned by ownerID.
func (a Actor) CanModify(ownerID uint) bool {
	return a.Moderator || a.UserID == ownerID
}
