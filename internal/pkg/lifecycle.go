package pkg

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/domain"
)

// Stateful is satisfied by every model embedding domain.SoftDelete.
type Stateful interface {
	IsActive() bool
}

// Lifecycle implements domain.Lifecycle[T] over a GORM table that carries the
// status and deleted_at columns.
type Lifecycle[T Stateful] struct {
	db   *gorm.DB
	name string
	now  func() time.Time
}

// NewLifecycle creates the lifecycle mutators for T. name is used in
// not-found and state error messages.
func NewLifecycle[T Stateful](db *gorm.DB, name string) *Lifecycle[T] {
	return &Lifecycle[T]{db: db, name: name, now: time.Now}
}

// SoftDelete moves an Active entity to Trashed and returns it.
func (l *Lifecycle[T]) SoftDelete(ctx context.Context, id uint) (*T, error) {
	return l.transition(ctx, id, domain.StatusActive, map[string]any{
		"status":     domain.StatusTrashed,
		"deleted_at": l.now().UTC(),
	})
}

// Restore moves a Trashed entity back to Active and returns it.
func (l *Lifecycle[T]) Restore(ctx context.Context, id uint) (*T, error) {
	return l.transition(ctx, id, domain.StatusTrashed, map[string]any{
		"status":     domain.StatusActive,
		"deleted_at": nil,
	})
}

// ForceDelete removes the row regardless of its state and returns the last
// stored version of it.
func (l *Lifecycle[T]) ForceDelete(ctx context.Context, id uint) (*T, error) {
	var entity T
	err := WithTx(ctx, l.db, func(tx *gorm.DB) error {
		if err := tx.First(&entity, id).Error; err != nil {
			return MapNotFound(err, l.name)
		}
		if err := tx.Delete(&entity).Error; err != nil {
			return MapDBError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// SoftDeleteMany trashes the Active entities among ids.
func (l *Lifecycle[T]) SoftDeleteMany(ctx context.Context, ids []uint) (int64, error) {
	return l.transitionMany(ctx, ids, domain.StatusActive, map[string]any{
		"status":     domain.StatusTrashed,
		"deleted_at": l.now().UTC(),
	})
}

// RestoreMany restores the Trashed entities among ids.
func (l *Lifecycle[T]) RestoreMany(ctx context.Context, ids []uint) (int64, error) {
	return l.transitionMany(ctx, ids, domain.StatusTrashed, map[string]any{
		"status":     domain.StatusActive,
		"deleted_at": nil,
	})
}

// ForceDeleteMany removes every row among ids regardless of state.
func (l *Lifecycle[T]) ForceDeleteMany(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := l.db.WithContext(ctx).Where("id IN ?", ids).Delete(new(T))
	if res.Error != nil {
		return 0, MapDBError(res.Error)
	}
	return res.RowsAffected, nil
}

// transition applies values to the entity when it is currently in state from.
// The read, the check and the write share one transaction.
func (l *Lifecycle[T]) transition(ctx context.Context, id uint, from domain.Status, values map[string]any) (*T, error) {
	var entity T
	err := WithTx(ctx, l.db, func(tx *gorm.DB) error {
		var current T
		if err := tx.First(&current, id).Error; err != nil {
			return MapNotFound(err, l.name)
		}
		if current.IsActive() != (from == domain.StatusActive) {
			return domain.NewValidationError(l.name + " is already " + stateAfter(from))
		}

		res := tx.Model(new(T)).Where("id = ? AND status = ?", id, from).Updates(values)
		if res.Error != nil {
			return MapDBError(res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NewValidationError(l.name + " is already " + stateAfter(from))
		}

		return MapDBError(tx.First(&entity, id).Error)
	})
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (l *Lifecycle[T]) transitionMany(ctx context.Context, ids []uint, from domain.Status, values map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := l.db.WithContext(ctx).Model(new(T)).
		Where("id IN ? AND status = ?", ids, from).
		Updates(values)
	if res.Error != nil {
		return 0, MapDBError(res.Error)
	}
	return res.RowsAffected, nil
}

// stateAfter names the state an entity would be in if the transition out of
// from had already happened.
func stateAfter(from domain.Status) string {
	if from == domain.StatusActive {
		return domain.StatusTrashed.String()
	}
	return domain.StatusActive.String()
}
