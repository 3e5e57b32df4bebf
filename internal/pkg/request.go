package pkg

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"

	"github.com/simp-lee/learnhub/internal/domain"
)

// IDsRequest is the body of every bulk endpoint.
type IDsRequest struct {
	IDs []uint `json:"ids" binding:"required,min=1,dive,gt=0"`
}

// ParseID extracts and validates a positive integer path parameter.
func ParseID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, domain.NewValidationError("invalid " + name)
	}
	return uint(n), nil
}

// CurrentUserID returns the authenticated caller's id as set by ginx.Auth.
func CurrentUserID(c *gin.Context) (uint, error) {
	raw, ok := ginx.GetUserID(c)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, domain.NewAppError(domain.CodeUnauthorized, "invalid subject", err)
	}
	return uint(n), nil
}

// BearerToken returns the raw token from the Authorization header.
func BearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("missing bearer token")
	}
	return strings.TrimSpace(token), nil
}
