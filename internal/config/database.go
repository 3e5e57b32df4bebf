package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Pool values used when the config leaves a field at zero.
var defaultPool = poolSettings{maxIdle: 10, maxOpen: 100, maxLifetime: time.Hour}

type poolSettings struct {
	maxIdle     int
	maxOpen     int
	maxLifetime time.Duration
}

// SetupDatabase opens the catalog database. SQLite connections enforce foreign
// keys so lesson and comment rows follow their parents on force delete.
func SetupDatabase(cfg *DatabaseConfig, logger *slog.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, errors.New("database config is nil")
	}
	if logger == nil {
		return nil, errors.New("logger is nil")
	}

	pool, err := cfg.Pool.settings()
	if err != nil {
		return nil, err
	}
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger(logger)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	logger.Info("database connected",
		slog.String("driver", cfg.Driver),
		slog.Int("max_idle_conns", pool.maxIdle),
		slog.Int("max_open_conns", pool.maxOpen),
		slog.Duration("conn_max_lifetime", pool.maxLifetime),
	)
	return db, nil
}

func (d *DatabaseConfig) dialector() (gorm.Dialector, error) {
	switch d.Driver {
	case "sqlite":
		if dir := filepath.Dir(d.SQLite.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %q: %w", dir, err)
			}
		}
		return sqlite.Open(sqliteDSN(d.SQLite.Path)), nil
	case "postgres":
		return postgres.Open(d.Postgres.dsn()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", d.Driver)
	}
}

func (p PoolConfig) settings() (poolSettings, error) {
	s := defaultPool
	if p.MaxIdleConns > 0 {
		s.maxIdle = p.MaxIdleConns
	}
	if p.MaxOpenConns > 0 {
		s.maxOpen = p.MaxOpenConns
	}
	if raw := strings.TrimSpace(p.ConnMaxLifetime); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: %w", p.ConnMaxLifetime, err)
		}
		if d <= 0 {
			return s, fmt.Errorf("invalid pool.conn_max_lifetime %q: must be greater than 0", p.ConnMaxLifetime)
		}
		s.maxLifetime = d
	}
	return s, nil
}

// gormLogger sends gorm's records through the application logger, so SQL
// traces carry the request_id of the query context. Statements are traced
// only at debug level; missing rows are expected lookups, not errors.
func gormLogger(logger *slog.Logger) gormlogger.Interface {
	level := gormlogger.Warn
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		level = gormlogger.Info
	}
	return gormlogger.NewSlogLogger(logger, gormlogger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
}

// Migrate creates or updates the tables for the given models.
func Migrate(db *gorm.DB, logger *slog.Logger, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("database migrated", slog.Int("models", len(models)))
	return nil
}

// sqliteDSN appends the foreign key pragma unless the path already carries one.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=foreign_keys") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)"
}

func (p PostgresConfig) dsn() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.Host, strconv.Itoa(p.Port)),
		Path:   p.DBName,
	}
	if p.User != "" || p.Password != "" {
		u.User = url.UserPassword(p.User, p.Password)
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}
