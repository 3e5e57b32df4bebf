package domain

import (
	"context"
	"time"
)

// Discount types.
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Discount is a price reduction valid between two dates.
type Discount struct {
	BaseModel
	Name      string    `gorm:"size:255;not null" json:"name"`
	Type      string    `gorm:"size:16;not null" json:"type"`
	Value     float64   `gorm:"not null" json:"value"`
	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`
	SoftDelete
}

// DiscountInput carries the writable fields of a discount.
type DiscountInput struct {
	Name      string
	Type      string
	Value     float64
	StartDate time.Time
	EndDate   time.Time
}

// DiscountRepository defines the data access interface for discounts.
type DiscountRepository interface {
	Create(ctx context.Context, discount *Discount) error
	GetByID(ctx context.Context, id uint) (*Discount, error)
	Update(ctx context.Context, discount *Discount) error
	Query(ctx context.Context, f Filter) (*PageResult[Discount], error)
	Lifecycle[Discount]
}

// DiscountService defines the business logic interface for discounts.
type DiscountService interface {
	CreateDiscount(ctx context.Context, in DiscountInput) (*Discount, error)
	GetDiscount(ctx context.Context, id uint) (*Discount, error)
	ListDiscounts(ctx context.Context, f Filter) (*PageResult[Discount], error)
	TrashedDiscounts(ctx context.Context, f Filter) (*PageResult[Discount], error)
	UpdateDiscount(ctx context.Context, id uint, in DiscountInput) (*Discount, error)
	Lifecycle[Discount]
}
