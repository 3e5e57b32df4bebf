package discount

import (
	"context"
	"strings"
	"time"

	"github.com/simp-lee/learnhub/internal/domain"
)

// discountService implements domain.DiscountService.
type discountService struct {
	repo domain.DiscountRepository
	now  func() time.Time
	domain.Lifecycle[domain.Discount]
}

// NewDiscountService creates a new DiscountService.
func NewDiscountService(repo domain.DiscountRepository) domain.DiscountService {
	return &discountService{repo: repo, now: time.Now, Lifecycle: repo}
}

func (s *discountService) CreateDiscount(ctx context.Context, in domain.DiscountInput) (*domain.Discount, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in, s.now()); err != nil {
		return nil, err
	}

	d := &domain.Discount{
		Name:      in.Name,
		Type:      in.Type,
		Value:     in.Value,
		StartDate: in.StartDate.UTC(),
		EndDate:   in.EndDate.UTC(),
	}
	d.Status = domain.StatusActive

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetDiscount retrieves an Active discount.
func (s *discountService) GetDiscount(ctx context.Context, id uint) (*domain.Discount, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.IsActive() {
		return nil, domain.NewNotFoundError("discount not found")
	}
	return d, nil
}

func (s *discountService) ListDiscounts(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Discount], error) {
	f.Status = domain.StatusActive
	return s.repo.Query(ctx, f)
}

func (s *discountService) TrashedDiscounts(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Discount], error) {
	f.Status = domain.StatusTrashed
	return s.repo.Query(ctx, f)
}

// UpdateDiscount replaces every field of an Active discount after running
// the same checks as create.
func (s *discountService) UpdateDiscount(ctx context.Context, id uint, in domain.DiscountInput) (*domain.Discount, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := Validate(in, s.now()); err != nil {
		return nil, err
	}

	d, err := s.GetDiscount(ctx, id)
	if err != nil {
		return nil, err
	}

	d.Name = in.Name
	d.Type = in.Type
	d.Value = in.Value
	d.StartDate = in.StartDate.UTC()
	d.EndDate = in.EndDate.UTC()

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks a discount in a fixed order and reports the first failure.
// Dates compare at day granularity in UTC.
func Validate(in domain.DiscountInput, now time.Time) error {
	if in.Name == "" {
		return domain.NewValidationError("name is required")
	}
	if in.Type != domain.DiscountPercentage && in.Type != domain.DiscountFixed {
		return domain.NewValidationError("type must be percentage or fixed")
	}
	if in.Value < 0 {
		return domain.NewValidationError("discount value must be greater than or equal to 0")
	}
	if in.Type == domain.DiscountPercentage && in.Value > 100 {
		return domain.NewValidationError("percentage discount must not exceed 100")
	}

	today := day(now)
	start := day(in.StartDate)
	end := day(in.EndDate)
	if start.Before(today) {
		return domain.NewValidationError("start date must be today or later")
	}
	if end.Before(start) {
		return domain.NewValidationError("end date must be on or after the start date")
	}
	if start.Equal(end) {
		return domain.NewValidationError("start date and end date must differ")
	}
	return nil
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
