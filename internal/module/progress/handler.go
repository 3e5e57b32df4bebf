package progress

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// ProgressHandler handles the caller's lesson and course progress.
type ProgressHandler struct {
	svc domain.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(svc domain.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// Record handles PUT /api/v1/progress/lessons/:id.
func (h *ProgressHandler) Record(c *gin.Context) {
	userID, lessonID, ok := callerAndID(c)
	if !ok {
		return
	}

	var req RecordRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	p, err := h.svc.Record(c.Request.Context(), userID, lessonID, *req.Percent)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, p)
}

// List handles GET /api/v1/progress.
func (h *ProgressHandler) List(c *gin.Context) {
	userID, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListProgress(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive), userID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Course handles GET /api/v1/progress/courses/:id.
func (h *ProgressHandler) Course(c *gin.Context) {
	userID, courseID, ok := callerAndID(c)
	if !ok {
		return
	}

	cp, err := h.svc.CourseProgress(c.Request.Context(), userID, courseID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, cp)
}

// Certificate handles GET /api/v1/progress/courses/:id/certificate.
func (h *ProgressHandler) Certificate(c *gin.Context) {
	userID, courseID, ok := callerAndID(c)
	if !ok {
		return
	}

	pdf, err := h.svc.Certificate(c.Request.Context(), userID, courseID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="certificate-course-%d.pdf"`, courseID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func callerAndID(c *gin.Context) (uint, uint, bool) {
	userID, err := pkg.CurrentUserID(c)
	if err != nil {
		pkg.Error(c, err)
		return 0, 0, false
	}
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return 0, 0, false
	}
	return userID, id, true
}
