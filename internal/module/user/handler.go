package user

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
	"github.com/simp-lee/learnhub/internal/storage"
)

// UserHandler handles REST API requests for the user resource.
type UserHandler struct {
	svc   domain.UserService
	files *storage.Local
}

// NewUserHandler creates a new UserHandler with the given service and the
// store avatars are written to.
func NewUserHandler(svc domain.UserService, files *storage.Local) *UserHandler {
	return &UserHandler{svc: svc, files: files}
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, user)
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	result, err := h.svc.ListUsers(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Trash handles GET /api/v1/users/trash.
func (h *UserHandler) Trash(c *gin.Context) {
	result, err := h.svc.TrashedUsers(c.Request.Context(), pkg.ParseFilter(c, domain.StatusTrashed))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Profile handles GET /api/v1/users/profile.
func (h *UserHandler) Profile(c *gin.Context) {
	id, err := pkg.CurrentUserID(c)
	h.show(c, id, err)
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	h.show(c, id, err)
}

// show answers with user id, or with idErr when the id could not be resolved.
func (h *UserHandler) show(c *gin.Context, id uint, idErr error) {
	if idErr != nil {
		pkg.Error(c, idErr)
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// Update handles PUT /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), id, req.input())
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, user)
}

// UpdatePassword handles PUT /api/v1/users/update-password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	id, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdatePasswordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := h.svc.UpdatePassword(c.Request.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// UploadAvatar handles POST /api/v1/users/upload-avatar. The previous avatar
// file is removed once the new one is recorded.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	current, err := h.svc.GetUser(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	// The service may hand back the same record it updates.
	oldAvatar := current.Avatar

	fh, _ := c.FormFile("avatar")
	rel, err := h.files.Accept(ctx, fh, storage.FolderAvatar, storage.ImageRule)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	user, err := h.svc.UpdateAvatar(ctx, id, rel)
	if err != nil {
		h.files.Discard(ctx, rel)
		pkg.Error(c, err)
		return
	}
	if oldAvatar != "" && oldAvatar != rel {
		h.files.Discard(ctx, oldAvatar)
	}

	pkg.Success(c, user)
}
