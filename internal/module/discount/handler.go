package discount

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// DiscountHandler handles REST API requests for the discount resource.
type DiscountHandler struct {
	svc domain.DiscountService
}

// NewDiscountHandler creates a new DiscountHandler.
func NewDiscountHandler(svc domain.DiscountService) *DiscountHandler {
	return &DiscountHandler{svc: svc}
}

// Create handles POST /api/v1/discounts.
func (h *DiscountHandler) Create(c *gin.Context) {
	var req DiscountRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		pkg.Error(c, err)
		return
	}

	d, err := h.svc.CreateDiscount(c.Request.Context(), in)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, d)
}

// List handles GET /api/v1/discounts.
func (h *DiscountHandler) List(c *gin.Context) {
	result, err := h.svc.ListDiscounts(c.Request.Context(), pkg.ParseFilter(c, domain.StatusActive))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Trash handles GET /api/v1/discounts/trash.
func (h *DiscountHandler) Trash(c *gin.Context) {
	result, err := h.svc.TrashedDiscounts(c.Request.Context(), pkg.ParseFilter(c, domain.StatusTrashed))
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/discounts/:id.
func (h *DiscountHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	d, err := h.svc.GetDiscount(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}

// Update handles PUT /api/v1/discounts/:id.
func (h *DiscountHandler) Update(c *gin.Context) {
	id, err := pkg.ParseID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req DiscountRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		pkg.Error(c, err)
		return
	}

	d, err := h.svc.UpdateDiscount(c.Request.Context(), id, in)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, d)
}
