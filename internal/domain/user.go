package domain

import (
	"context"
)

// Roles understood by the access policy.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// User represents an account. Email is unique only among Active users, so it is
// indexed but not constrained at the database level.
type User struct {
	BaseModel
	Username string `gorm:"size:100;not null;index" json:"username"`
	Email    string `gorm:"size:255;not null;index" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Avatar   string `gorm:"size:255" json:"avatar"`
	Role     string `gorm:"size:16;not null;default:user" json:"role"`
	SoftDelete
}

// UserInput carries the writable profile fields of a user.
type UserInput struct {
	Username string
	Email    string
	Password string
	Role     string
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetActiveByEmail(ctx context.Context, email string) (*User, error)
	EmailTakenByActive(ctx context.Context, email string, excludeID uint) (bool, error)
	UsernameTaken(ctx context.Context, username string, excludeID uint) (bool, error)
	Update(ctx context.Context, user *User) error
	Query(ctx context.Context, f Filter) (*PageResult[User], error)
	Lifecycle[User]
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, in UserInput) (*User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, f Filter) (*PageResult[User], error)
	TrashedUsers(ctx context.Context, f Filter) (*PageResult[User], error)
	UpdateUser(ctx context.Context, id uint, in UserInput) (*User, error)
	UpdatePassword(ctx context.Context, id uint, oldPassword, newPassword string) error
	UpdateAvatar(ctx context.Context, id uint, path string) (*User, error)
	Lifecycle[User]
}

// RoleSyncer keeps an external authorization store in step with User.Role.
type RoleSyncer interface {
	SyncRole(userID uint, role string) error
}
