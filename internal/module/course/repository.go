package course

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var courseQuery = pkg.QuerySpec{
	SearchFields: []string{"name", "description"},
	StatusColumn: "status",
}

// courseRepository implements domain.CourseRepository using GORM.
type courseRepository struct {
	db *gorm.DB
	*pkg.Lifecycle[domain.Course]
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db *gorm.DB) domain.CourseRepository {
	return &courseRepository{db: db, Lifecycle: pkg.NewLifecycle[domain.Course](db, "course")}
}

func (r *courseRepository) Create(ctx context.Context, c *domain.Course) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

// GetByID retrieves a course in any state, without its discount.
func (r *courseRepository) GetByID(ctx context.Context, id uint) (*domain.Course, error) {
	var c domain.Course
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "course")
	}
	return &c, nil
}

// GetDetail retrieves a course with its discount attached when that discount
// is Active. A trashed discount stays linked but is not shown.
func (r *courseRepository) GetDetail(ctx context.Context, id uint) (*domain.Course, error) {
	var c domain.Course
	err := r.db.WithContext(ctx).
		Preload("Discount", "status = ?", domain.StatusActive).
		First(&c, id).Error
	if err != nil {
		return nil, pkg.MapNotFound(err, "course")
	}
	return &c, nil
}

func (r *courseRepository) Update(ctx context.Context, c *domain.Course) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error)
}

// AttachDiscount links discountID to the Active courses among courseIDs.
func (r *courseRepository) AttachDiscount(ctx context.Context, discountID uint, courseIDs []uint) (int64, error) {
	if len(courseIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Course{}).
		Where("id IN ? AND status = ?", courseIDs, domain.StatusActive).
		Update("discount_id", discountID)
	if res.Error != nil {
		return 0, pkg.MapDBError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *courseRepository) Query(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Course], error) {
	return pkg.Query[domain.Course](ctx, r.db, f, courseQuery)
}
