package comment

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// CommentHandler handles REST API requests for comments on posts and lessons.
type CommentHandler struct {
	svc   domain.CommentService
	guard *middleware.Guard
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(svc domain.CommentService, guard *middleware.Guard) *CommentHandler {
	return &CommentHandler{svc: svc, guard: guard}
}

// List returns the handler for GET <thread>/:id/comments.
func (h *CommentHandler) List(target domain.CommentTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := pkg.ParseID(c, "id")
		if err != nil {
			pkg.Error(c, err)
			return
		}

		result, err := h.svc.ListComments(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive), target, targetID)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.List(c, result)
	}
}

// Create returns the handler for POST <thread>/:id/comments.
func (h *CommentHandler) Create(target domain.CommentTarget) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := pkg.CurrentUserID(c)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		targetID, err := pkg.ParseID(c, "id")
		if err != nil {
			pkg.Error(c, err)
			return
		}

		var req CommentRequest
		if !pkg.BindAndValidate(c, &req) {
			return
		}

		comment, err := h.svc.AddComment(c.Request.Context(), userID, target, targetID, req.Content)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		pkg.Created(c, comment)
	}
}

// Update handles PUT /api/v1/comments/:id.
func (h *CommentHandler) Update(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	var req CommentRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	comment, err := h.svc.UpdateComment(c.Request.Context(), actor, id, req.Content)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, comment)
}

// Delete handles DELETE /api/v1/comments/:id.
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, id, ok := h.target(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), actor, id); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, nil)
}

func (h *CommentHandler) target(c *gin.Context) (domain.Actor, uint, bool) {
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
		Moderator: h.guard.Allowed(c, middleware.ResourceComments, middleware.ActionModerate),
	}, id, true
}
