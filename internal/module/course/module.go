package course

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// CourseModule implements the app.Module interface for courses.
type CourseModule struct {
	handler   *CourseHandler
	lifecycle *pkg.LifecycleHandler[domain.Course]
	guard     *middleware.Guard
}

// NewModule creates a new CourseModule.
// Panics if h is nil.
func NewModule(h *CourseHandler, svc domain.CourseService, guard *middleware.Guard) *CourseModule {
	if h == nil {
		panic("course.NewModule: handler must not be nil")
	}
	return &CourseModule{handler: h, lifecycle: pkg.NewLifecycleHandler[domain.Course](svc), guard: guard}
}

// RegisterRoutes registers course API routes.
func (m *CourseModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceCourses, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceCourses, middleware.ActionWrite)
	remove := m.guard.Require(middleware.ResourceCourses, middleware.ActionDelete)

	courses := api.Group("/courses")
	courses.POST("", write, m.handler.Create)
	courses.GET("", read, m.handler.List)
	courses.GET("/trash", remove, m.handler.Trash)
	courses.GET("/:id", read, m.handler.Get)
	courses.PUT("/:id", write, m.handler.Update)
	courses.PUT("/add-discount/:id", write, m.handler.AddDiscount)
	m.lifecycle.Register(courses, "", remove)
}
