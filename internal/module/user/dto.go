package user

import "github.com/simp-lee/learnhub/internal/domain"

// CreateUserRequest represents the input for creating a user as an admin.
type CreateUserRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=1,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=admin user"`
}

// UpdateUserRequest represents the input for updating an existing user.
// An empty role keeps the current one.
type UpdateUserRequest struct {
	Username string `json:"username" form:"username" binding:"required,min=1,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=admin user"`
}

// UpdatePasswordRequest represents a password change by the account owner.
type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password" form:"old_password" binding:"required"`
	NewPassword string `json:"new_password" form:"new_password" binding:"required,min=8,max=72"`
}

func (r CreateUserRequest) input() domain.UserInput {
	return domain.UserInput{Username: r.Username, Email: r.Email, Password: r.Password, Role: r.Role}
}

func (r UpdateUserRequest) input() domain.UserInput {
	return domain.UserInput{Username: r.Username, Email: r.Email, Role: r.Role}
}
