package post

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/middleware"
)

// PostModule implements the app.Module interface for the forum.
type PostModule struct {
	handler *PostHandler
	guard   *middleware.Guard
}

// NewModule creates a new PostModule.
// Panics if h is nil.
func NewModule(h *PostHandler, guard *middleware.Guard) *PostModule {
	if h == nil {
		panic("post.NewModule: handler must not be nil")
	}
	return &PostModule{handler: h, guard: guard}
}

// RegisterRoutes registers post API routes. Ownership of a post is checked
// in the service, after the route guard.
func (m *PostModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourcePosts, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourcePosts, middleware.ActionWrite)

	posts := api.Group("/posts")
	posts.GET("", read, m.handler.List)
	posts.GET("/:id", read, m.handler.Get)
	posts.POST("", write, m.handler.Create)
	posts.PUT("/:id", write, m.handler.Update)
	posts.DELETE("/:id", write, m.handler.Delete)
}
