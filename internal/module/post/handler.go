package post

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// PostHandler handles REST API requests for forum posts.
type PostHandler struct {
	svc   domain.PostService
	guard *middleware.Guard
}

// NewPostHandler creates a new PostHandler. guard decides who may moderate
// other authors' posts.
func NewPostHandler(svc domain.PostService, guard *middleware.Guard) *PostHandler {
	return &PostHandler{svc: svc, guard: guard}
}

// Create handles POST /api/v1/posts.
func (h *PostHandler) Create(c *gin.Context) {
	userID, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req PostRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	post, err := h.svc.CreatePost(c.Request.Context(), userID, req.Title, req.Content)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, post)
}

// List handles GET /api/v1/posts.
func (h *PostHandler) List(c *gin.Context) {
	result, err := h.svc.ListPosts(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/posts/:id.
func (h *PostHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	post, err := h.svc.GetPost(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, post)
}

// Update handles PUT /api/v1/posts/:id.
func (h *PostHandler) Update(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req PostRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	post, err := h.svc.UpdatePost(c.Request.Context(), actor, id, req.Title, req.Content)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, post)
}

// Delete handles DELETE /api/v1/posts/:id.
func (h *PostHandler) Delete(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.svc.DeletePost(c.Request.Context(), actor, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

// target resolves the caller and the post id of an ownership-checked request.
func (h *PostHandler) target(c *gin.Context) (domain.Actor, uint, bool) {
	userID, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return domain.Actor{}, 0, false
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return domain.Actor{}, 0, false
	}
	return domain.Actor{
		UserID:    userID,
		Moderator: h.guard.Allowed(c, middleware.ResourcePosts, middleware.ActionModerate),
	}, id, true
}
