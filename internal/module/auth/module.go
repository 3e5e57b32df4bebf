package auth

import "github.com/gin-gonic/gin"

// AuthModule implements the app.Module interface for the auth domain.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers auth API routes. Everything but logout must be
// listed in auth.public_paths.
func (m *AuthModule) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	auth.POST("/register", m.handler.Register)
	auth.POST("/login", m.handler.Login)
	auth.POST("/refresh_token", m.handler.RefreshToken)
	auth.POST("/logout", m.handler.Logout)
}
