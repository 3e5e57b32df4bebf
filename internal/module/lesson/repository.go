package lesson

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var lessonQuery = pkg.QuerySpec{
	SearchFields: []string{"title", "description"},
	StatusColumn: "status",
}

// lessonRepository implements domain.LessonRepository using GORM.
type lessonRepository struct {
	db *gorm.DB
	*pkg.Lifecycle[domain.Lesson]
}

// NewLessonRepository creates a new LessonRepository.
func NewLessonRepository(db *gorm.DB) domain.LessonRepository {
	return &lessonRepository{db: db, Lifecycle: pkg.NewLifecycle[domain.Lesson](db, "lesson")}
}

func (r *lessonRepository) Create(ctx context.Context, l *domain.Lesson) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Create(l).Error)
}

func (r *lessonRepository) GetByID(ctx context.Context, id uint) (*domain.Lesson, error) {
	var l domain.Lesson
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "lesson")
	}
	return &l, nil
}

func (r *lessonRepository) Update(ctx context.Context, l *domain.Lesson) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Omit(clause.Associations).Save(l).Error)
}

// Query returns one page of lessons, restricted to courseID when it is set.
func (r *lessonRepository) Query(ctx context.Context, f domain.Filter, courseID uint) (*domain.PageResult[domain.Lesson], error) {
	return pkg.Query[domain.Lesson](ctx, r.db, f, lessonQuery, byCourse(courseID))
}

// CountActiveByCourse counts the Active lessons of a course.
func (r *lessonRepository) CountActiveByCourse(ctx context.Context, courseID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Lesson{}).
		Where("course_id = ? AND status = ?", courseID, domain.StatusActive).
		Count(&n).Error
	if err != nil {
		return 0, pkg.MapDBError(err)
	}
	return n, nil
}

func byCourse(courseID uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if courseID == 0 {
			return db
		}
		return db.Where("course_id = ?", courseID)
	}
}
