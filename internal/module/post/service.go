package post

import (
	"context"
	"strings"

	"github.com/simp-lee/learnhub/internal/domain"
)

// postService implements domain.PostService.
type postService struct {
	repo domain.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(repo domain.PostRepository) domain.PostService {
	return &postService{repo: repo}
}

func (s *postService) CreatePost(ctx context.Context, userID uint, title, content string) (*domain.Post, error) {
	title, content, err := clean(title, content)
	if err != nil {
		return nil, err
	}

	p := &domain.Post{UserID: userID, Title: title, Content: content}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *postService) GetPost(ctx context.Context, id uint) (*domain.Post, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *postService) ListPosts(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Post], error) {
	return s.repo.Query(ctx, f)
}

// UpdatePost lets the author, or a moderator, change a post.
func (s *postService) UpdatePost(ctx context.Context, actor domain.Actor, id uint, title, content string) (*domain.Post, error) {
	title, content, err := clean(title, content)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanModify(p.UserID) {
		return nil, domain.NewForbiddenError("you can only modify your own post")
	}

	p.Title = title
	p.Content = content
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePost removes a post and its comments.
func (s *postService) DeletePost(ctx context.Context, actor domain.Actor, id uint) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(p.UserID) {
		return domain.NewForbiddenError("you can only delete your own post")
	}
	return s.repo.Delete(ctx, id)
}

func clean(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return "", "", domain.NewValidationError("title is required")
	}
	if content == "" {
		return "", "", domain.NewValidationError("content is required")
	}
	return title, content, nil
}
