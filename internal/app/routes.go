package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/pkg"
)

const healthPingTimeout = time.Second

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	DB      *gorm.DB
	// Redis is optional; a nil client reports the component as disabled.
	Redis *redis.Client
	// UploadDir is served read-only under PublicPath.
	UploadDir  string
	PublicPath string
	// APIMiddleware runs in front of every /api/v1 route, typically the auth chain.
	APIMiddleware []gin.HandlerFunc
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	health := healthHandler(deps.DB, deps.Redis)
	r.GET("/health", health)

	if deps.UploadDir != "" {
		publicPath := strings.TrimRight(deps.PublicPath, "/")
		if publicPath == "" {
			return errors.New("public path for uploads is required")
		}
		r.Static(publicPath, deps.UploadDir)
	}

	api := r.Group("/api/v1", deps.APIMiddleware...)
	api.GET("/health", health)

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())
	return nil
}

// healthHandler pings the database and, when configured, redis. Any failing
// component turns the response into a 503.
func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()

		components := gin.H{
			"database": pingDatabase(ctx, db),
			"redis":    pingRedis(ctx, rdb),
		}

		status, code := "ok", http.StatusOK
		for _, v := range components {
			if v == "error" {
				status, code = "degraded", http.StatusServiceUnavailable
				break
			}
		}

		c.JSON(code, gin.H{
			"status":     status,
			"components": components,
		})
	}
}

func pingDatabase(ctx context.Context, db *gorm.DB) string {
	if db == nil {
		return "error"
	}
	sqlDB, err := db.DB()
	if err != nil {
		return "error"
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error"
	}
	return "ok"
}

func pingRedis(ctx context.Context, rdb *redis.Client) string {
	if rdb == nil {
		return "disabled"
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return "error"
	}
	return "ok"
}

// noRouteHandler answers unknown paths with the JSON envelope.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}
