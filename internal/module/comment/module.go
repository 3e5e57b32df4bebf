package comment

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
)

// CommentModule implements the app.Module interface for comments.
type CommentModule struct {
	handler *CommentHandler
	guard   *middleware.Guard
}

// NewModule creates a new CommentModule.
// Panics if h is nil.
func NewModule(h *CommentHandler, guard *middleware.Guard) *CommentModule {
	if h == nil {
		panic("comment.NewModule: handler must not be nil")
	}
	return &CommentModule{handler: h, guard: guard}
}

// RegisterRoutes registers the comment threads of posts and lessons and the
// routes acting on a single comment.
func (m *CommentModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceComments, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceComments, middleware.ActionWrite)

	api.GET("/posts/:id/comments", read, m.handler.List(domain.TargetPost))
	api.POST("/posts/:id/comments", write, m.handler.Create(domain.TargetPost))
	api.GET("/lessons/:id/comments", read, m.handler.List(domain.TargetLesson))
	api.POST("/lessons/:id/comments", write, m.handler.Create(domain.TargetLesson))

	api.PUT("/comments/:id", write, m.handler.Update)
	api.DELETE("/comments/:id", write, m.handler.Delete)
}
