package comment

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var commentQuery = pkg.QuerySpec{
	SearchFields: []string{"content"},
}

// commentRepository implements domain.CommentRepository using GORM.
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(db *gorm.DB) domain.CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, c *domain.Comment) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*domain.Comment, error) {
	var c domain.Comment
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "comment")
	}
	return &c, nil
}

func (r *commentRepository) Update(ctx context.Context, c *domain.Comment) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Comment{}, id)
	if res.Error != nil {
		return pkg.MapDBError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NewNotFoundError("comment not found")
	}
	return nil
}

// Query returns one page of the comments attached to a post or a lesson.
func (r *commentRepository) Query(ctx context.Context, f domain.Filter, target domain.CommentTarget, targetID uint) (*domain.PageResult[domain.Comment], error) {
	column, err := targetColumn(target)
	if err != nil {
		return nil, err
	}
	return pkg.Query[domain.Comment](ctx, r.db, f, commentQuery, func(db *gorm.DB) *gorm.DB {
		return db.Where(column+" = ?", targetID)
	})
}

func targetColumn(target domain.CommentTarget) (string, error) {
	switch target {
	case domain.TargetPost:
		return "post_id", nil
	case domain.TargetLesson:
		return "lesson_id", nil
	default:
		return "", domain.NewValidationError("unknown comment target")
	}
}
