package course

import (
	"context"
	"strings"

	"github.com/simp-lee/learnhub/internal/domain"
)

// courseService implements domain.CourseService.
type courseService struct {
	repo      domain.CourseRepository
	discounts domain.DiscountRepository
	domain.Lifecycle[domain.Course]
}

// NewCourseService creates a new CourseService. discounts resolves the
// discount named by AddDiscount.
func NewCourseService(repo domain.CourseRepository, discounts domain.DiscountRepository) domain.CourseService {
	return &courseService{repo: repo, discounts: discounts, Lifecycle: repo}
}

func (s *courseService) CreateCourse(ctx context.Context, in domain.CourseInput) (*domain.Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.Thumbnail == "" {
		return nil, domain.NewValidationError("thumbnail is required")
	}

	c := &domain.Course{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Thumbnail:   in.Thumbnail,
	}
	c.Status = domain.StatusActive

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCourse returns an Active course with its Active discount, if any.
func (s *courseService) GetCourse(ctx context.Context, id uint) (*domain.Course, error) {
	c, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, domain.NewNotFoundError("course not found")
	}
	return c, nil
}

func (s *courseService) ListCourses(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Course], error) {
	f.Status = domain.StatusActive
	return s.repo.Query(ctx, f)
}

func (s *courseService) TrashedCourses(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.Course], error) {
	f.Status = domain.StatusTrashed
	return s.repo.Query(ctx, f)
}

// UpdateCourse changes an Active course. An empty thumbnail keeps the stored one.
func (s *courseService) UpdateCourse(ctx context.Context, id uint, in domain.CourseInput) (*domain.Course, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(in); err != nil {
		return nil, err
	}

	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsActive() {
		return nil, domain.NewNotFoundError("course not found")
	}

	c.Name = in.Name
	c.Description = in.Description
	c.Price = in.Price
	if in.Thumbnail != "" {
		c.Thumbnail = in.Thumbnail
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// AddDiscount attaches an Active discount to the Active courses among
// courseIDs and reports how many were linked.
func (s *courseService) AddDiscount(ctx context.Context, discountID uint, courseIDs []uint) (int64, error) {
	if len(courseIDs) == 0 {
		return 0, domain.NewValidationError("ids must not be empty")
	}

	d, err := s.discounts.GetByID(ctx, discountID)
	if err != nil {
		return 0, err
	}
	if !d.IsActive() {
		return 0, domain.NewNotFoundError("discount not found")
	}

	return s.repo.AttachDiscount(ctx, discountID, courseIDs)
}

func validate(in domain.CourseInput) error {
	if in.Name == "" {
		return domain.NewValidationError("name is required")
	}
	if in.Price < 0 {
		return domain.NewValidationError("price must be greater than or equal to 0")
	}
	return nil
}
