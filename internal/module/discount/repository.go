package discount

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var discountQuery = pkg.QuerySpec{
	SearchFields: []string{"name"},
	StatusColumn: "status",
}

// discountRepository implements domain.DiscountRepository using GORM.
type discountRepository struct {
	db *gorm.DB
	*pkg.Lifecycle[domain.Discount]
}

// NewDiscountRepository creates a new DiscountRepository.
func NewDiscountRepository(db *gorm.DB) domain.DiscountRepository {
	return &discountRepository{db: db, Lifecycle: pkg.NewLifecycle[domain.Discount](db, "discount")}
}

func (r *discountRepository) Create(ctx context.Context, d *domain.Discount) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(d).Error)
}

func (r *discountRepository) GetByID(ctx context.Context, id uint) (*domain.Discount, error) {
	var d domain.Discount
	if err := r.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "discount")
	}
	return &d, nil
}

func (r *discountRepository) Update(ctx context.Context, d *domain.Discount) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Save(d).Error)
}

func (r *discountRepository) Query(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Discount], error) {
	return pkg.Query[domain.Discount](ctx, r.db, f, discountQuery)
}
