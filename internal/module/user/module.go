package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// UserModule implements the app.Module interface for the user domain.
type UserModule struct {
	handler   *UserHandler
	lifecycle *pkg.LifecycleHandler[domain.User]
	guard     *middleware.Guard
}

// NewModule creates a new UserModule. A nil guard leaves every route open to
// any caller the auth chain let through.
// Panics if h or svc is nil.
func NewModule(h *UserHandler, svc domain.UserService, guard *middleware.Guard) *UserModule {
	if h == nil {
		panic("user.NewModule: handler must not be nil")
	}
	return &UserModule{handler: h, lifecycle: pkg.NewLifecycleHandler[domain.User](svc), guard: guard}
}

// RegisterRoutes registers user API routes.
func (m *UserModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceUsers, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceUsers, middleware.ActionWrite)
	remove := m.guard.Require(middleware.ResourceUsers, middleware.ActionDelete)

	users := api.Group("/users")

	// Any authenticated caller, acting on their own account.
	users.GET("/profile", m.handler.Profile)
	users.PUT("/update-password", m.handler.UpdatePassword)
	users.POST("/upload-avatar", m.handler.UploadAvatar)

	users.POST("", write, m.handler.Create)
	users.GET("", read, m.handler.List)
	users.GET("/trash", remove, m.handler.Trash)
	users.GET("/:id", read, m.handler.Get)
	users.PUT("/:id", write, m.handler.Update)
	m.lifecycle.Register(users, "", remove)
}
