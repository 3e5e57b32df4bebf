package progress

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var progressQuery = pkg.QuerySpec{SortKey: "updated_at"}

// progressRepository implements domain.ProgressRepository using GORM.
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(db *gorm.DB) domain.ProgressRepository {
	return &progressRepository{db: db}
}

// Upsert writes the row for (user, lesson), replacing any earlier one, and
// reloads p from the stored row.
func (r *progressRepository) Upsert(ctx context.Context, p *domain.LessonProgress) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"course_id", "percent", "completed", "completed_at", "updated_at"}),
		}).Create(p).Error
		if err != nil {
			return pkg.MapDBError(err)
		}
		var stored domain.LessonProgress
		if err := tx.Where("user_id = ? AND lesson_id = ?", p.UserID, p.LessonID).First(&stored).Error; err != nil {
			return pkg.MapDBError(err)
		}
		*p = stored
		return nil
	})
}

// Query returns one page of a user's progress rows, most recently updated first.
func (r *progressRepository) Query(ctx context.Context, f domain.Filter, userID uint) (*domain.PageResult[domain.LessonProgress], error) {
	return pkg.Query[domain.LessonProgress](ctx, r.db, f, progressQuery, func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	})
}

// CountCompleted counts the user's completed lessons among the Active lessons
// of a course.
func (r *progressRepository) CountCompleted(ctx context.Context, userID, courseID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Where("lesson_progress.user_id = ? AND lesson_progress.completed = ?", userID, true).
		Where("lessons.course_id = ? AND lessons.status = ?", courseID, domain.StatusActive).
		Count(&n).Error
	if err != nil {
		return 0, pkg.MapDBError(err)
	}
	return n, nil
}
