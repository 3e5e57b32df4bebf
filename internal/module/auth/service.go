package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/jwt"

	"github.com/simp-lee/learnhub/internal/domain"
)

// Service defines the authentication operations.
type Service interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, userID uint, accessToken, refreshToken string) error
}

// Expiry holds the lifetimes of the two tokens.
type Expiry struct {
	Access  time.Duration
	Refresh time.Duration
}

// authService implements Service.
type authService struct {
	jwtSvc   jwt.Service
	users    domain.UserService
	userRepo domain.UserRepository
	tokens   TokenStore
	roles    domain.RoleSyncer
	expiry   Expiry
}

// NewService creates a new auth Service. Registration goes through users so
// the account rules live in one place. roles may be nil.
func NewService(jwtSvc jwt.Service, users domain.UserService, userRepo domain.UserRepository, tokens TokenStore, roles domain.RoleSyncer, expiry Expiry) Service {
	return &authService{
		jwtSvc:   jwtSvc,
		users:    users,
		userRepo: userRepo,
		tokens:   tokens,
		roles:    roles,
		expiry:   expiry,
	}
}

var errBadCredentials = domain.NewUnauthorizedError("invalid email or password")

// Register creates a role=user account.
func (s *authService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return s.users.CreateUser(ctx, domain.UserInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     domain.RoleUser,
	})
}

// Login authenticates an Active user by email and password.
func (s *authService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.userRepo.GetActiveByEmail(ctx, email)
	if err != nil {
		// Don't reveal whether the user exists.
		if domain.IsNotFound(err) {
			return nil, errBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errBadCredentials
	}

	return s.issue(ctx, user)
}

// Refresh consumes refreshToken and issues a new pair. A token can be used
// once; a second use fails even while the first response is in flight.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	userID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to read refresh token", err)
	}

	deleted, err := s.tokens.Delete(ctx, refreshToken)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to rotate refresh token", err)
	}
	if !deleted {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.NewUnauthorizedError("account is disabled")
	}

	return s.issue(ctx, user)
}

// Logout discards the caller's refresh token and revokes the access token
// the request was made with.
func (s *authService) Logout(ctx context.Context, userID uint, accessToken, refreshToken string) error {
	owner, err := s.tokens.Lookup(ctx, refreshToken)
	switch {
	case errors.Is(err, ErrTokenNotFound):
		// Already gone; still revoke the access token.
	case err != nil:
		return domain.NewAppError(domain.CodeInternal, "failed to read refresh token", err)
	case owner != userID:
		return domain.NewForbiddenError("refresh token belongs to another user")
	default:
		if _, err := s.tokens.Delete(ctx, refreshToken); err != nil {
			return domain.NewAppError(domain.CodeInternal, "failed to delete refresh token", err)
		}
	}

	if err := s.jwtSvc.RevokeToken(accessToken); err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to revoke access token", err)
	}
	return nil
}

func (s *authService) issue(ctx context.Context, user *domain.User) (*TokenPair, error) {
	if s.roles != nil {
		if err := s.roles.SyncRole(user.ID, user.Role); err != nil {
			return nil, domain.NewAppError(domain.CodeInternal, "failed to sync role", err)
		}
	}

	token, err := s.jwtSvc.GenerateToken(
		strconv.FormatUint(uint64(user.ID), 10),
		[]string{user.Role},
		s.expiry.Access,
	)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to generate token", err)
	}

	parsed, err := s.jwtSvc.ParseToken(token)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to parse generated token", err)
	}

	refresh := uuid.NewString()
	if err := s.tokens.Save(ctx, refresh, user.ID, s.expiry.Refresh); err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to store refresh token", err)
	}

	return &TokenPair{
		AccessToken:  token,
		RefreshToken: refresh,
		ExpiresAt:    parsed.ExpiresAt.Unix(),
	}, nil
}
