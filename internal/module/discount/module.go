package discount

import (
	"github.com/gin-gonic/gin"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/pkg"
)

// DiscountModule implements the app.Module interface for discounts.
type DiscountModule struct {
	handler   *DiscountHandler
	lifecycle *pkg.LifecycleHandler[domain.Discount]
	guard     *middleware.Guard
}

// NewModule creates a new DiscountModule.
// Panics if h is nil.
func NewModule(h *DiscountHandler, svc domain.DiscountService, guard *middleware.Guard) *DiscountModule {
	if h == nil {
		panic("discount.NewModule: handler must not be nil")
	}
	return &DiscountModule{handler: h, lifecycle: pkg.NewLifecycleHandler[domain.Discount](svc), guard: guard}
}

// RegisterRoutes registers discount API routes.
func (m *DiscountModule) RegisterRoutes(api *gin.RouterGroup) {
	read := m.guard.Require(middleware.ResourceDiscounts, middleware.ActionRead)
	write := m.guard.Require(middleware.ResourceDiscounts, middleware.ActionWrite)
	remove := m.guard.Require(middleware.ResourceDiscounts, middleware.ActionDelete)

	discounts := api.Group("/discounts")
	discounts.POST("", write, m.handler.Create)
	discounts.GET("", read, m.handler.List)
	discounts.GET("/trash", remove, m.handler.Trash)
	discounts.GET("/:id", read, m.handler.Get)
	discounts.PUT("/:id", write, m.handler.Update)
	m.lifecycle.Register(discounts, "", remove)
}
