package domain

import (
	"context"
	"time"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Status is the lifecycle state of a soft-deletable entity.
type Status int

const (
	StatusTrashed Status = 0
	StatusActive  Status = 1
)

// String returns the scope name used in log lines and error messages.
func (s Status) String() string {
	if s == StatusActive {
		return "active"
	}
	return "trashed"
}

// SoftDelete carries the lifecycle columns shared by User, Course, Lesson and
// Discount. Rows are created Active; only the lifecycle mutators change Status.
type SoftDelete struct {
	Status    Status     `gorm:"not null;default:1;index" json:"status"`
	DeletedAt *time.Time `json:"deleted_at"`
}

// IsActive reports whether the entity is in the Active partition.
func (s SoftDelete) IsActive() bool {
	return s.Status == StatusActive
}

// Filter selects one page of a collection.
//
// All is the "all" page-size sentinel: when set, ItemsPerPage is ignored and the
// page size becomes the number of matching rows.
type Filter struct {
	Search       string
	Status       Status
	Page         int
	ItemsPerPage int
	All          bool
}

// PageResult is one page of a list query plus its pagination metadata.
type PageResult[T any] struct {
	Data         []T   `json:"data"`
	Total        int64 `json:"total"`
	CurrentPage  int   `json:"currentPage"`
	ItemsPerPage int   `json:"itemsPerPage"`
	LastPage     int   `json:"lastPage"`
	NextPage     *int  `json:"nextPage"`
	PreviousPage *int  `json:"previousPage"`
}

// Lifecycle is the soft-delete state machine exposed for every soft-deletable
// entity. Bulk variants report only how many rows changed; ids that match no
// eligible row are skipped without error.
type Lifecycle[T any] interface {
	SoftDelete(ctx context.Context, id uint) (*T, error)
	Restore(ctx context.Context, id uint) (*T, error)
	ForceDelete(ctx context.Context, id uint) (*T, error)
	SoftDeleteMany(ctx context.Context, ids []uint) (int64, error)
	RestoreMany(ctx context.Context, ids []uint) (int64, error)
	ForceDeleteMany(ctx context.Context, ids []uint) (int64, error)
}
