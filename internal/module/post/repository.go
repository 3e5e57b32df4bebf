package post

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// Posts have no lifecycle, so the status partition is disabled.
var postQuery = pkg.QuerySpec{
	SearchFields: []string{"title", "content"},
}

// postRepository implements domain.PostRepository using GORM.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(db *gorm.DB) domain.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, p *domain.Post) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error)
}

// GetByID loads a post with its author.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*domain.Post, error) {
	var p domain.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&p, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "post")
	}
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, p *domain.Post) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error)
}

// Delete removes a post and its comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.Comment{}).Error; err != nil {
			return pkg.MapDBError(err)
		}
		res := tx.Delete(&domain.Post{}, id)
		if res.Error != nil {
			return pkg.MapDBError(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewNotFoundError("post not found")
		}
		return nil
	})
}

func (r *postRepository) Query(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Post], error) {
	return pkg.Query[domain.Post](ctx, r.db, f, postQuery)
}
