package comment

import (
	"context"
	"strings"

	"github.com/simp-lee/learnhub/internal/domain"
)

// commentService implements domain.CommentService.
type commentService struct {
	repo    domain.CommentRepository
	posts   domain.PostRepository
	lessons domain.LessonRepository
}

// NewCommentService creates a new CommentService. posts and lessons resolve
// the thread a comment is attached to.
func NewCommentService(repo domain.CommentRepository, posts domain.PostRepository, lessons domain.LessonRepository) domain.CommentService {
	return &commentService{repo: repo, posts: posts, lessons: lessons}
}

func (s *commentService) AddComment(ctx context.Context, userID uint, target domain.CommentTarget, targetID uint, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content is required")
	}
	if err := s.requireTarget(ctx, target, targetID); err != nil {
		return nil, err
	}

	c := &domain.Comment{UserID: userID, Content: content}
	id := targetID
	if target == domain.TargetPost {
		c.PostID = &id
	} else {
		c.LessonID = &id
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) ListComments(ctx context.Context, f domain.Filter, target domain.CommentTarget, targetID uint) (*domain.PageResult[domain.Comment], error) {
	if err := s.requireTarget(ctx, target, targetID); err != nil {
		return nil, err
	}
	return s.repo.Query(ctx, f, target, targetID)
}

// UpdateComment lets the author, or a moderator, change a comment.
func (s *commentService) UpdateComment(ctx context.Context, actor domain.Actor, id uint, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewValidationError("content is required")
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(c.UserID) {
		return nil, domain.NewForbiddenError("you can only modify your own comment")
	}

	c.Content = content
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *commentService) DeleteComment(ctx context.Context, actor domain.Actor, id uint) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(c.UserID) {
		return domain.NewForbiddenError("you can only delete your own comment")
	}
	return s.repo.Delete(ctx, id)
}

// requireTarget checks that the post exists, or that the lesson is Active.
func (s *commentService) requireTarget(ctx context.Context, target domain.CommentTarget, targetID uint) error {
	switch target {
	case domain.TargetPost:
		_, err := s.posts.GetByID(ctx, targetID)
		return err
	case domain.TargetLesson:
		l, err := s.lessons.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if !l.IsActive() {
			return domain.NewNotFoundError("lesson not found")
		}
		return nil
	default:
		return domain.NewValidationError("unknown comment target")
	}
}
