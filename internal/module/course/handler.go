package course

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
	"github.com/simp-lee/learnhub/internal/storage"
)

// CourseHandler handles REST API requests for the course resource.
type CourseHandler struct {
	svc   domain.CourseService
	files *storage.Local
}

// NewCourseHandler creates a new CourseHandler writing thumbnails to files.
func NewCourseHandler(svc domain.CourseService, files *storage.Local) *CourseHandler {
	return &CourseHandler{svc: svc, files: files}
}

// Create handles POST /api/v1/courses.
func (h *CourseHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var form CourseForm
	if !pkg.BindAndValidate(c, &form) {
		return
	}

	fh, _ := c.FormFile("thumbnail")
	rel, err := h.files.Accept(ctx, fh, storage.FolderThumbnail, storage.ImageRule)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	course, err := h.svc.CreateCourse(ctx, domain.CourseInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       *form.Price,
		Thumbnail:   rel,
	})
	if err != nil {
		h.files.Discard(ctx, rel)
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, course)
}

// List handles GET /api/v1/courses.
func (h *CourseHandler) List(c *gin.Context) {
	result, err := h.svc.ListCourses(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Trash handles GET /api/v1/courses/trash.
func (h *CourseHandler) Trash(c *gin.Context) {
	result, err := h.svc.TrashedCourses(c.Request.Context(), pkg.ParseFilter(c, domain.StatusTrashed))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/courses/:id.
func (h *CourseHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	course, err := h.svc.GetCourse(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, course)
}

// Update handles PUT /api/v1/courses/:id. A new thumbnail replaces the stored
// file, which is removed once the update is saved.
func (h *CourseHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var form CourseForm
	if !pkg.BindAndValidate(c, &form) {
		return
	}

	current, err := h.svc.GetCourse(ctx, id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	// The service may hand back the same record it updates.
	oldThumbnail := current.Thumbnail

	var rel string
	if fh, _ := c.FormFile("thumbnail"); fh != nil {
		if rel, err = h.files.Accept(ctx, fh, storage.FolderThumbnail, storage.ImageRule); err != nil {
			pkg.Error(c, err)
			return
		}
	}

	course, err := h.svc.UpdateCourse(ctx, id, domain.CourseInput{
		Name:        form.Name,
		Description: form.Description,
		Price:       *form.Price,
		Thumbnail:   rel,
	})
	if err != nil {
		h.files.Discard(ctx, rel)
		pkg.Error(c, err)
		return
	}
	if rel != "" && oldThumbnail != "" && oldThumbnail != rel {
		h.files.Discard(ctx, oldThumbnail)
	}
	pkg.Success(c, course)
}

// AddDiscount handles PUT /api/v1/courses/add-discount/:id, where :id is the
// discount and the body lists the courses.
func (h *CourseHandler) AddDiscount(c *gin.Context) {
	discountID, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req pkg.IDsRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	count, err := h.svc.AddDiscount(c.Request.Context(), discountID, req.IDs)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Affected(c, count)
}
