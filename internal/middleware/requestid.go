package middleware

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// RequestIDConfig controls request-id reuse behavior.
type RequestIDConfig struct {
	TrustUpstream bool
}

// RequestID assigns a fresh request ID to every request.
func RequestID() gin.HandlerFunc {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig assigns request IDs through ginx.RequestID. The ID is
// echoed in the X-Request-ID header, stored in the gin context and attached
// to the Go context as a log attribute. A trusted upstream ID is reused only
// when it matches requestIDPattern.
func RequestIDWithConfig(cfg RequestIDConfig) gin.HandlerFunc {
	opts := []ginx.RequestIDOption{
		ginx.WithRequestIDHeader(RequestIDHeader),
		ginx.WithContextInjector(injectRequestID),
	}
	if !cfg.TrustUpstream {
		opts = append(opts, ginx.WithIgnoreIncoming())
	}
	assign := ginx.NewChain().Use(ginx.RequestID(opts...)).Build()

	return func(c *gin.Context) {
		if cfg.TrustUpstream && !isValidRequestID(c.GetHeader(RequestIDHeader)) {
			c.Request.Header.Del(RequestIDHeader)
		}
		assign(c)
	}
}

func injectRequestID(ctx context.Context, id string) context.Context {
	return logger.WithContextAttrs(ctx, slog.String("request_id", id))
}

func isValidRequestID(id string) bool {
	return requestIDPattern.MatchString(id)
}

// GetRequestID returns the request ID, or "" when none was assigned.
func GetRequestID(c *gin.Context) string {
	id, _ := ginx.GetRequestID(c)
	return id
}
