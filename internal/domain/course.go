package domain

import "context"

// Course is a purchasable set of lessons. A course keeps its discount link
// even when the discount is trashed; only the detail view filters by state.
type Course struct {
	BaseModel
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	Thumbnail   string    `gorm:"size:255" json:"thumbnail"`
	DiscountID  *uint     `gorm:"index" json:"discount_id"`
	Discount    *Discount `gorm:"constraint:OnDelete:SET NULL" json:"discount,omitempty"`
	SoftDelete
}

// CourseInput carries the writable fields of a course. Thumbnail is empty when
// an update keeps the stored file.
type CourseInput struct {
	Name        string
	Description string
	Price       float64
	Thumbnail   string
}

// CourseRepository defines the data access interface for courses.
type CourseRepository interface {
	Create(ctx context.Context, course *Course) error
	GetByID(ctx context.Context, id uint) (*Course, error)
	GetDetail(ctx context.Context, id uint) (*Course, error)
	Update(ctx context.Context, course *Course) error
	AttachDiscount(ctx context.Context, discountID uint, courseIDs []uint) (int64, error)
	Query(ctx context.Context, f Filter) (*PageResult[Course], error)
	Lifecycle[Course]
}

// CourseService defines the business logic interface for courses.
type CourseService interface {
	CreateCourse(ctx context.Context, in CourseInput) (*Course, error)
	GetCourse(ctx context.Context, id uint) (*Course, error)
	ListCourses(ctx context.Context, f Filter) (*PageResult[Course], error)
	TrashedCourses(ctx context.Context, f Filter) (*PageResult[Course], error)
	UpdateCourse(ctx context.Context, id uint, in CourseInput) (*Course, error)
	AddDiscount(ctx context.Context, discountID uint, courseIDs []uint) (int64, error)
	Lifecycle[Course]
}
