package pkg

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
)

// LifecycleHandler exposes the soft-delete state machine of one resource over HTTP.
type LifecycleHandler[T any] struct {
	svc domain.Lifecycle[T]
}

// NewLifecycleHandler creates a LifecycleHandler backed by svc.
func NewLifecycleHandler[T any](svc domain.Lifecycle[T]) *LifecycleHandler[T] {
	if svc == nil {
		panic("pkg.NewLifecycleHandler: service must not be nil")
	}
	return &LifecycleHandler[T]{svc: svc}
}

// Register mounts the six lifecycle routes under base, each guarded by mw.
func (h *LifecycleHandler[T]) Register(r gin.IRoutes, base string, mw ...gin.HandlerFunc) {
	with := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mw...), fn)
	}
	r.DELETE(base+"/multiple-soft-delete", with(h.SoftDeleteMany)...)
	r.PUT(base+"/multiple-restore", with(h.RestoreMany)...)
	r.DELETE(base+"/multiple-force-delete", with(h.ForceDeleteMany)...)
	r.PUT(base+"/restore/:id", with(h.Restore)...)
	r.DELETE(base+"/force-delete/:id", with(h.ForceDelete)...)
	r.DELETE(base+"/:id", with(h.SoftDelete)...)
}

// SoftDelete handles DELETE <base>/:id.
func (h *LifecycleHandler[T]) SoftDelete(c *gin.Context) {
	h.single(c, h.svc.SoftDelete)
}

// Restore handles PUT <base>/restore/:id.
func (h *LifecycleHandler[T]) Restore(c *gin.Context) {
	h.single(c, h.svc.Restore)
}

// ForceDelete handles DELETE <base>/force-delete/:id.
func (h *LifecycleHandler[T]) ForceDelete(c *gin.Context) {
	h.single(c, h.svc.ForceDelete)
}

// SoftDeleteMany handles DELETE <base>/multiple-soft-delete.
func (h *LifecycleHandler[T]) SoftDeleteMany(c *gin.Context) {
	h.many(c, h.svc.SoftDeleteMany)
}

// RestoreMany handles PUT <base>/multiple-restore.
func (h *LifecycleHandler[T]) RestoreMany(c *gin.Context) {
	h.many(c, h.svc.RestoreMany)
}

// ForceDeleteMany handles DELETE <base>/multiple-force-delete.
func (h *LifecycleHandler[T]) ForceDeleteMany(c *gin.Context) {
	h.many(c, h.svc.ForceDeleteMany)
}

func (h *LifecycleHandler[T]) single(c *gin.Context, op func(ctx context.Context, id uint) (*T, error)) {
	id, err := ParseID(c, "id")
	if err != nil {
		Error(c, err)
		return
	}

	entity, err := op(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, entity)
}

func (h *LifecycleHandler[T]) many(c *gin.Context, op func(ctx context.Context, ids []uint) (int64, error)) {
	var req IDsRequest
	if !BindAndValidate(c, &req) {
		return
	}

	count, err := op(c.Request.Context(), req.IDs)
	if err != nil {
		Error(c, err)
		return
	}

	Affected(c, count)
}
