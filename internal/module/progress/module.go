package progress

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/middleware"
)

// ProgressModule implements the app.Module interface for progress tracking.
type ProgressModule struct {
	handler *ProgressHandler
	guard   *middleware.Guard
}

// NewModule creates a new ProgressModule.
// Panics if h is nil.
func NewModule(h *ProgressHandler, guard *middleware.Guard) *ProgressModule {
	if h == nil {
		panic("progress.NewModule: handler must not be nil")
	}
	return &ProgressModule{handler: h, guard: guard}
}

// RegisterRoutes registers progress API routes. Every route acts on the caller.
func (m *ProgressModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceProgress, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceProgress, middleware.ActionWrite)

	progress := api.Group("/progress")
	progress.GET("", read, m.handler.List)
	progress.PUT("/lessons/:id", write, m.handler.Record)
	progress.GET("/courses/:id", read, m.handler.Course)
	progress.GET("/courses/:id/certificate", read, m.handler.Certificate)
}
