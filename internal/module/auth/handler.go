package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// AuthHandler handles REST API requests for authentication.
type AuthHandler struct {
	svc Service
}

// NewHandler creates a new AuthHandler with the given service.
func NewHandler(svc Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "user registered successfully",
		Data:    user,
	})
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, pair)
}

// RefreshToken handles POST /api/v1/auth/refresh_token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, pair)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	access, err := pkg.BearerToken(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeUnauthorized, err.Error(), nil))
		return
	}

	var req RefreshRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.Logout(c.Request.Context(), userID, access, req.RefreshToken); err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, pkg.Response{
		Code:    http.StatusOK,
		Message: "logged out",
	})
}
