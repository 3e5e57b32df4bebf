package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/simp-lee/rbac"
	"gorm.io/gorm"
)

const rbacTablePrefix = "rbac_"

// SetupRBAC builds a cached, SQL-backed RBAC service on the application
// database. It returns a nil service, and no error, when RBAC is disabled.
func SetupRBAC(cfg *RBACConfig, db *gorm.DB, logger *slog.Logger) (rbac.Service, error) {
	if cfg == nil {
		return nil, errors.New("rbac config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}
	if !cfg.Enabled {
		return nil, nil
	}
	if db == nil {
		return nil, errors.New("database is nil")
	}

	cacheCfg, err := rbacCacheConfig(&cfg.Cache)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB for rbac: %w", err)
	}

	svc, err := rbac.New(rbac.WithCachedStorage(sqlDB, cacheCfg, rbacTablePrefix))
	if err != nil {
		return nil, fmt.Errorf("failed to create rbac service: %w", err)
	}

	logger.Info("rbac enabled",
		slog.Duration("role_ttl", cacheCfg.RoleTTL),
		slog.Duration("user_role_ttl", cacheCfg.UserRoleTTL),
		slog.Duration("permission_ttl", cacheCfg.PermTTL),
	)
	return svc, nil
}

func rbacCacheConfig(cfg *RBACCacheConfig) (*rbac.CacheConfig, error) {
	out := rbac.DefaultConfig().Cache

	ttls := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"auth.rbac.cache.role_ttl", cfg.RoleTTL, &out.RoleTTL},
		{"auth.rbac.cache.user_role_ttl", cfg.UserRoleTTL, &out.UserRoleTTL},
		{"auth.rbac.cache.permission_ttl", cfg.PermissionTTL, &out.PermTTL},
	}
	for _, t := range ttls {
		if t.raw == "" {
			continue
		}
		d, err := time.ParseDuration(t.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", t.name, t.raw, err)
		}
		*t.dst = d
	}

	if cfg.MaxRoleEntries > 0 {
		out.MaxRoles = cfg.MaxRoleEntries
	}
	if cfg.MaxUserEntries > 0 {
		out.MaxUserRoles = cfg.MaxUserEntries
	}
	if cfg.MaxPermissionEntries > 0 {
		out.MaxUserPerms = cfg.MaxPermissionEntries
	}
	return out, nil
}
