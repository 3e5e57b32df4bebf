package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/learnhub/internal/domain"
)

// userService implements domain.UserService. Lifecycle calls other than the
// restores go straight to the repository.
type userService struct {
	repo  domain.UserRepository
	roles domain.RoleSyncer
	domain.Lifecycle[domain.User]
}

// NewUserService creates a new UserService with the given repository. roles
// may be nil when no external authorization store needs to follow role changes.
func NewUserService(repo domain.UserRepository, roles domain.RoleSyncer) domain.UserService {
	return &userService{repo: repo, roles: roles, Lifecycle: repo}
}

// CreateUser validates input, hashes the password and persists an Active user.
// The email must not belong to another Active user; a Trashed user's email
// is free.
func (s *userService) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser
	}

	if err := validateProfile(in); err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	taken, err := s.repo.EmailTakenByActive(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewValidationError("email already exists")
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     in.Role,
	}
	user.Status = domain.StatusActive

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves an Active user by ID.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.NewNotFoundError("user not found")
	}
	return user, nil
}

// ListUsers returns a page of Active users.
func (s *userService) ListUsers(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.User], error) {
	f.Status = domain.StatusActive
	return s.repo.Query(ctx, f)
}

// TrashedUsers returns a page of Trashed users.
func (s *userService) TrashedUsers(ctx context.Context, f domain.Filter) (*domain.PageResult[domain.User], error) {
	f.Status = domain.StatusTrashed
	return s.repo.Query(ctx, f)
}

// UpdateUser changes username, email and, when given, role. The username must
// be unused by every other user regardless of state.
func (s *userService) UpdateUser(ctx context.Context, id uint, in domain.UserInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := validateProfile(in); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.repo.UsernameTaken(ctx, in.Username, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.NewValidationError("username already exists")
	}

	if in.Email != user.Email {
		taken, err := s.repo.EmailTakenByActive(ctx, in.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewValidationError("email already exists")
		}
	}

	roleChanged := in.Role != "" && in.Role != user.Role
	user.Username = in.Username
	user.Email = in.Email
	if in.Role != "" {
		user.Role = in.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if roleChanged && s.roles != nil {
		if err := s.roles.SyncRole(user.ID, user.Role); err != nil {
			return nil, domain.NewAppError(domain.CodeInternal, "failed to sync role", err)
		}
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *userService) UpdatePassword(ctx context.Context, id uint, oldPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.NewValidationError("old password is incorrect")
		}
		return domain.NewAppError(domain.CodeInternal, "failed to verify password", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	return s.repo.Update(ctx, user)
}

// UpdateAvatar stores the relative path of a freshly uploaded avatar.
func (s *userService) UpdateAvatar(ctx context.Context, id uint, path string) (*domain.User, error) {
	if path == "" {
		return nil, domain.NewValidationError("avatar is required")
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Avatar = path
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// Restore brings a Trashed user back unless an Active user took the email in
// the meantime.
func (s *userService) Restore(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		taken, err := s.repo.EmailTakenByActive(ctx, user.Email, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, domain.NewValidationError("email already exists")
		}
	}
	return s.Lifecycle.Restore(ctx, id)
}

// RestoreMany restores the Trashed users among ids whose email is still free.
// When several of them share an email only the first listed comes back.
func (s *userService) RestoreMany(ctx context.Context, ids []uint) (int64, error) {
	claimed := make(map[string]bool, len(ids))
	free := make([]uint, 0, len(ids))
	for _, id := range ids {
		user, err := s.repo.GetByID(ctx, id)
		if domain.IsNotFound(err) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if user.IsActive() || claimed[user.Email] {
			continue
		}
		taken, err := s.repo.EmailTakenByActive(ctx, user.Email, id)
		if err != nil {
			return 0, err
		}
		if !taken {
			claimed[user.Email] = true
			free = append(free, id)
		}
	}
	return s.Lifecycle.RestoreMany(ctx, free)
}

// validateProfile checks username, email and role. Inputs are expected to be
// trimmed already.
func validateProfile(in domain.UserInput) error {
	n := utf8.RuneCountInString(in.Username)
	if n == 0 {
		return domain.NewValidationError("username is required")
	}
	if n > 100 {
		return domain.NewValidationError("username must not exceed 100 characters")
	}

	if in.Email == "" {
		return domain.NewValidationError("email is required")
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil || addr.Name != "" || addr.Address != in.Email {
		return domain.NewValidationError("email must be a valid email address")
	}

	if in.Role != "" && !domain.ValidRole(in.Role) {
		return domain.NewValidationError("role must be admin or user")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password must be at least 8 characters")
	}
	if len(password) > 72 {
		return domain.NewValidationError("password must not exceed 72 characters")
	}
	return nil
}
