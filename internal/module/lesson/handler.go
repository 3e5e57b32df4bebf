package lesson

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
	"github.com/simp-lee/learnhub/internal/storage"
)

// LessonHandler handles REST API requests for the lesson resource.
type LessonHandler struct {
	svc   domain.LessonService
	files *storage.Local
}

// NewLessonHandler creates a new LessonHandler writing videos to files.
func NewLessonHandler(svc domain.LessonService, files *storage.Local) *LessonHandler {
	return &LessonHandler{svc: svc, files: files}
}

// UploadVideo handles POST /api/v1/lessons/upload-video-from-client.
func (h *LessonHandler) UploadVideo(c *gin.Context) {
	ctx := c.Request.Context()
	var form UploadLessonForm
	if !pkg.BindAndValidate(c, &form) {
		return
	}

	fh, _ := c.FormFile("videoFile")
	rel, err := h.files.Accept(ctx, fh, storage.FolderLesson, storage.VideoRule)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	lesson, err := h.svc.CreateLesson(ctx, domain.LessonInput{
		CourseID:    form.CourseID,
		Title:       form.Title,
		Description: form.Description,
		VideoFile:   rel,
	})
	if err != nil {
		h.files.Discard(ctx, rel)
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, lesson)
}

// LinkYoutube handles POST /api/v1/lessons/link-video-youtube.
func (h *LessonHandler) LinkYoutube(c *gin.Context) {
	var req YoutubeLessonRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	lesson, err := h.svc.CreateLesson(c.Request.Context(), domain.LessonInput{
		CourseID:     req.CourseID,
		Title:        req.Title,
		Description:  req.Description,
		VideoYoutube: req.VideoYoutube,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, lesson)
}

// Update handles PUT /api/v1/lessons/:id. A stored video file that the update
// replaces is removed afterwards.
func (h *LessonHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var form UpdateLessonForm
	if !pkg.BindAndValidate(c, &form) {
		return
	}

	current, err := h.svc.GetLesson(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	// The service may hand back the same record it updates.
	oldVideoFile := current.VideoFile

	var rel string
	if fh, _ := c.FormFile("videoFile"); fh != nil {
		if rel, err = h.files.Accept(ctx, fh, storage.FolderLesson, storage.VideoRule); err != nil {
			pkg.Error(c, err)
			return
		}
	}

	lesson, err := h.svc.UpdateLesson(ctx, id, domain.LessonInput{
		CourseID:     form.CourseID,
		Title:        form.Title,
		Description:  form.Description,
		VideoFile:    rel,
		VideoYoutube: form.VideoYoutube,
	})
	if err != nil {
		h.files.Discard(ctx, rel)
		pkg.Error(c, err)
		return
	}
	if oldVideoFile != "" && oldVideoFile != lesson.VideoFile {
		h.files.Discard(ctx, oldVideoFile)
	}
	pkg.Success(c, lesson)
}

// List handles GET /api/v1/lessons with an optional course_id scope.
func (h *LessonHandler) List(c *gin.Context) {
	courseID, err := courseIDQuery(c, false)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	result, err := h.svc.ListLessons(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive), courseID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// AllLessons handles GET /api/v1/lessons/all-lesson: every Active lesson of
// one course on a single page.
func (h *LessonHandler) AllLessons(c *gin.Context) {
	courseID, err := courseIDQuery(c, true)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	f := pkg.ParseFilter(c, domain.StatusActive)
	f.Page = 1
	f.All = true
	result, err := h.svc.ListLessons(c.Request.Context(), f, courseID)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Trash handles GET /api/v1/lessons/trash.
func (h *LessonHandler) Trash(c *gin.Context) {
	result, err := h.svc.TrashedLessons(c.Request.Context(), pkg.ParseFilter(c, domain.StatusTrashed))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/lessons/:id.
func (h *LessonHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	lesson, err := h.svc.GetLesson(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, lesson)
}

func courseIDQuery(c *gin.Context, required bool) (uint, error) {
	raw := c.Query("course_id")
	if raw == "" {
		if required {
			return 0, domain.NewValidationError("course_id is required")
		}
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, domain.NewValidationError("course_id must be a positive integer")
	}
	return uint(id), nil
}
