package lesson

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// LessonModule implements the app.Module interface for lessons.
type LessonModule struct {
	handler   *LessonHandler
	lifecycle *pkg.LifecycleHandler[domain.Lesson]
	guard     *middleware.Guard
}

// NewModule creates a new LessonModule.
// Panics if h is nil.
func NewModule(h *LessonHandler, svc domain.LessonService, guard *middleware.Guard) *LessonModule {
	if h == nil {
		panic("lesson.NewModule: handler must not be nil")
	}
	return &LessonModule{handler: h, lifecycle: pkg.NewLifecycleHandler[domain.Lesson](svc), guard: guard}
}

// RegisterRoutes registers lesson API routes.
func (m *LessonModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceLessons, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceLessons, middleware.ActionWrite)
	remove := m.guard.Require(middleware.ResourceLessons, middleware.ActionDelete)

	lessons := api.Group("/lessons")
	lessons.POST("/upload-video-from-client", write, m.handler.UploadVideo)
	lessons.POST("/link-video-youtube", write, m.handler.LinkYoutube)
	lessons.GET("", read, m.handler.List)
	lessons.GET("/all-lesson", read, m.handler.AllLessons)
	lessons.GET("/trash", remove, m.handler.Trash)
	lessons.GET("/:id", read, m.handler.Get)
	lessons.PUT("/:id", write, m.handler.Update)
	m.lifecycle.Register(lessons, "", remove)
}
