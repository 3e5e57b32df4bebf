package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/pkg"
)

var userQuery = pkg.QuerySpec{
	SearchFields: []string{"username", "email"},
	StatusColumn: "status",
}

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
	*pkg.Lifecycle[domain.User]
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db, Lifecycle: pkg.NewLifecycle[domain.User](db, "user")}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(user).Error)
}

// GetByID retrieves a user by its primary key, in any state.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, pkg.MapNotFound(err, "user")
	}
	return &user, nil
}

// GetActiveByEmail finds the Active user owning email.
func (r *userRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND status = ?", normalizeEmail(email), domain.StatusActive).
		First(&user).Error
	if err != nil {
		return nil, pkg.MapNotFound(err, "user")
	}
	return &user, nil
}

// EmailTakenByActive reports whether an Active user other than excludeID uses email.
func (r *userRepository) EmailTakenByActive(ctx context.Context, email string, excludeID uint) (bool, error) {
	return r.exists(ctx, r.db.Where("email = ? AND status = ?", normalizeEmail(email), domain.StatusActive), excludeID)
}

// UsernameTaken reports whether any user other than excludeID, Active or
// Trashed, uses username.
func (r *userRepository) UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error) {
	return r.exists(ctx, r.db.Where("username = ?", username), excludeID)
}

func (r *userRepository) exists(ctx context.Context, q *gorm.DB, excludeID uint) (bool, error) {
	q = q.WithContext(ctx).Model(&domain.User{})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, pkg.MapDBError(err)
	}
	return n > 0, nil
}

// Update saves changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Save(user).Error)
}

// Query returns one page of users in the filter's partition.
func (r *userRepository) Query(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.User], error) {
	return pkg.Query[domain.User](ctx, r.db, f, userQuery)
}

// normalizeEmail is applied on every write and lookup so addresses compare
// case-insensitively.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
