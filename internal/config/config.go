package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Storage  StorageConfig  `koanf:"storage"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host      string          `koanf:"host"`
	Port      int             `koanf:"port"`
	Mode      string          `koanf:"mode"`
	Timeout   string          `koanf:"timeout"`
	CORS      CORSConfig      `koanf:"cors"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

// CORSConfig holds CORS middleware settings.
type CORSConfig struct {
	AllowOrigins     []string `koanf:"allow_origins"`
	AllowMethods     []string `koanf:"allow_methods"`
	AllowHeaders     []string `koanf:"allow_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           string   `koanf:"max_age"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled bool    `koanf:"enabled"`
	RPS     float64 `koanf:"rps"`
	Burst   int     `koanf:"burst"`
}

// RedisConfig holds the optional redis connection. An empty Addr disables redis.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// StorageConfig holds settings for uploaded media.
type StorageConfig struct {
	UploadDir  string `koanf:"upload_dir"`
	PublicPath string `koanf:"public_path"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `koanf:"driver"`
	SQLite   SQLiteConfig   `koanf:"sqlite"`
	Postgres PostgresConfig `koanf:"postgres"`
	Pool     PoolConfig     `koanf:"pool"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname"`
	SSLMode  string `koanf:"sslmode"`
}

// PoolConfig holds database connection pool settings.
type PoolConfig struct {
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	ConnMaxLifetime string `koanf:"conn_max_lifetime"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level           string `koanf:"level"`
	Format          string `koanf:"format"`
	Color           *bool  `koanf:"color"`
	FilePath        string `koanf:"file_path"`
	MaxSizeMB       int    `koanf:"max_size_mb"`
	RetentionDays   int    `koanf:"retention_days"`
	MaxBackups      int    `koanf:"max_backups"`
	CompressRotated *bool  `koanf:"compress_rotated"`
}

// AuthConfig holds authentication and authorization settings.
type AuthConfig struct {
	Enabled            bool                 `koanf:"enabled"`
	JWTSecret          string               `koanf:"jwt_secret"`
	TokenExpiry        string               `koanf:"token_expiry"`
	RefreshTokenExpiry string               `koanf:"refresh_token_expiry"`
	PublicPaths        []string             `koanf:"public_paths"`
	RBAC               RBACConfig           `koanf:"rbac"`
	BootstrapAdmin     BootstrapAdminConfig `koanf:"bootstrap_admin"`
}

// BootstrapAdminConfig describes an admin account created at startup when no
// Active user owns its email. All fields empty disables it.
type BootstrapAdminConfig struct {
	Username string `koanf:"username"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// IsSet reports whether any bootstrap admin field is configured.
func (b BootstrapAdminConfig) IsSet() bool {
	return b.Username != "" || b.Email != "" || b.Password != ""
}

// RBACConfig holds role-based access control settings.
type RBACConfig struct {
	Enabled bool            `koanf:"enabled"`
	Cache   RBACCacheConfig `koanf:"cache"`
}

// RBACCacheConfig holds RBAC cache tuning parameters.
type RBACCacheConfig struct {
	RoleTTL              string `koanf:"role_ttl"`
	UserRoleTTL          string `koanf:"user_role_ttl"`
	PermissionTTL        string `koanf:"permission_ttl"`
	MaxRoleEntries       int    `koanf:"max_role_entries"`
	MaxUserEntries       int    `koanf:"max_user_entries"`
	MaxPermissionEntries int    `koanf:"max_permission_entries"`
}

// envPrefix marks the environment variables that override the YAML file.
// A double underscore descends one level, a single one stays in the key:
// APP__DATABASE__POOL__MAX_IDLE_CONNS sets database.pool.max_idle_conns.
const envPrefix = "APP__"

// requiredPublicPaths must stay reachable without a token when auth is on.
var requiredPublicPaths = []string{"/api/v1/auth/login", "/api/v1/auth/register", "/api/v1/auth/refresh_token"}

// Load reads the YAML file at configPath, overlays APP__ environment
// variables and validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
}

// Validate normalizes every section in place and returns the first problem
// found. Sections are checked in file order.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Database.validate(c.Server.Mode); err != nil {
		return err
	}
	if err := c.Redis.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(); err != nil {
		return err
	}
	if err := c.Auth.validate(c.Server.Mode); err != nil {
		return err
	}
	return c.Log.validate()
}

func (s *ServerConfig) validate() error {
	if err := oneOf("server.mode", &s.Mode, false, gin.DebugMode, gin.ReleaseMode, gin.TestMode); err != nil {
		return err
	}
	if err := validPort("server.port", s.Port); err != nil {
		return err
	}
	if err := required("server.host", &s.Host, ""); err != nil {
		return err
	}
	if err := optionalDuration("server.timeout", &s.Timeout); err != nil {
		return err
	}
	if err := optionalDuration("server.cors.max_age", &s.CORS.MaxAge); err != nil {
		return err
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RPS <= 0 {
			return fmt.Errorf("invalid server.rate_limit.rps %v: must be positive when rate limiting is enabled", s.RateLimit.RPS)
		}
		if s.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid server.rate_limit.burst %d: must be positive when rate limiting is enabled", s.RateLimit.Burst)
		}
	}

	// Browsers reject a wildcard origin combined with credentials.
	if s.CORS.AllowCredentials && slices.ContainsFunc(s.CORS.AllowOrigins, func(o string) bool {
		return strings.TrimSpace(o) == "*"
	}) {
		return errors.New(`server.cors.allow_origins cannot contain "*" when allow_credentials is true`)
	}
	return nil
}

func (d *DatabaseConfig) validate(mode string) error {
	if err := oneOf("database.driver", &d.Driver, true, "sqlite", "postgres"); err != nil {
		return err
	}
	if err := optionalDuration("database.pool.conn_max_lifetime", &d.Pool.ConnMaxLifetime); err != nil {
		return err
	}

	if d.Driver == "sqlite" {
		return required("database.sqlite.path", &d.SQLite.Path, "when driver is sqlite")
	}

	pg := &d.Postgres
	const when = "when driver is postgres"
	if err := required("database.postgres.host", &pg.Host, when); err != nil {
		return err
	}
	if err := validPort("database.postgres.port", pg.Port); err != nil {
		return err
	}
	if err := required("database.postgres.user", &pg.User, when); err != nil {
		return err
	}
	if err := required("database.postgres.dbname", &pg.DBName, when); err != nil {
		return err
	}
	if err := oneOf("database.postgres.sslmode", &pg.SSLMode, false,
		"disable", "allow", "prefer", "require", "verify-ca", "verify-full"); err != nil {
		return err
	}
	if mode == gin.ReleaseMode && !slices.Contains([]string{"require", "verify-ca", "verify-full"}, pg.SSLMode) {
		return fmt.Errorf("invalid database.postgres.sslmode %q for server.mode %q: must be one of %q, %q, %q",
			pg.SSLMode, gin.ReleaseMode, "require", "verify-ca", "verify-full")
	}
	return nil
}

// An empty Addr disables redis.
func (r *RedisConfig) validate() error {
	r.Addr = strings.TrimSpace(r.Addr)
	if r.DB < 0 {
		return fmt.Errorf("invalid redis.db %d: must not be negative", r.DB)
	}
	return nil
}

// Uploads default to data/uploads served under /uploads.
func (s *StorageConfig) validate() error {
	s.UploadDir = strings.TrimSpace(s.UploadDir)
	if s.UploadDir == "" {
		s.UploadDir = "data/uploads"
	}

	raw := s.PublicPath
	p := strings.TrimSpace(raw)
	if p == "" {
		p = "/uploads"
	}
	if !strings.HasPrefix(p, "/") || p == "/" {
		return fmt.Errorf("invalid storage.public_path %q: must start with '/' and not be the root", raw)
	}
	s.PublicPath = strings.TrimRight(p, "/")
	return nil
}

func (a *AuthConfig) validate(mode string) error {
	a.BootstrapAdmin.normalize()
	if a.RBAC.Enabled && !a.Enabled {
		return errors.New("auth.rbac.enabled requires auth.enabled to be true")
	}
	if a.BootstrapAdmin.IsSet() && !a.Enabled {
		return errors.New("auth.bootstrap_admin requires auth.enabled to be true")
	}
	if !a.Enabled {
		return nil
	}

	const when = "when auth is enabled"
	if err := required("auth.jwt_secret", &a.JWTSecret, when); err != nil {
		return err
	}
	if len(a.JWTSecret) < 32 {
		return errors.New("invalid auth.jwt_secret: must be at least 32 characters")
	}
	if mode == gin.ReleaseMode && CountSecretClasses(a.JWTSecret) < 3 {
		return errors.New("auth.jwt_secret must include at least 3 character classes (lowercase, uppercase, digit, symbol) in release mode")
	}

	access, err := requiredDuration("auth.token_expiry", &a.TokenExpiry, when)
	if err != nil {
		return err
	}
	refresh, err := requiredDuration("auth.refresh_token_expiry", &a.RefreshTokenExpiry, when)
	if err != nil {
		return err
	}
	if refresh < access {
		return fmt.Errorf("invalid auth.refresh_token_expiry %q: must not be shorter than auth.token_expiry", a.RefreshTokenExpiry)
	}

	if err := a.normalizePublicPaths(); err != nil {
		return err
	}
	if err := a.RBAC.Cache.validate(); err != nil {
		return err
	}
	return a.BootstrapAdmin.validate()
}

// normalizePublicPaths trims and deduplicates the paths, keeping their order.
func (a *AuthConfig) normalizePublicPaths() error {
	paths := make([]string, 0, len(a.PublicPaths))
	for i, raw := range a.PublicPaths {
		p := strings.TrimSpace(raw)
		switch {
		case p == "":
			return fmt.Errorf("auth.public_paths[%d] cannot be empty when auth is enabled", i)
		case !strings.HasPrefix(p, "/"):
			return fmt.Errorf("invalid auth.public_paths[%d] %q: must start with '/'", i, raw)
		case !slices.Contains(paths, p):
			paths = append(paths, p)
		}
	}
	for _, p := range requiredPublicPaths {
		if !slices.Contains(paths, p) {
			return fmt.Errorf("auth.public_paths must include %q when auth is enabled", p)
		}
	}
	a.PublicPaths = paths
	return nil
}

// Empty TTLs and zero limits keep the RBAC library defaults.
func (r *RBACCacheConfig) validate() error {
	for name, v := range map[string]*string{
		"auth.rbac.cache.role_ttl":       &r.RoleTTL,
		"auth.rbac.cache.user_role_ttl":  &r.UserRoleTTL,
		"auth.rbac.cache.permission_ttl": &r.PermissionTTL,
	} {
		if err := optionalDuration(name, v); err != nil {
			return err
		}
	}
	for name, n := range map[string]int{
		"auth.rbac.cache.max_role_entries":       r.MaxRoleEntries,
		"auth.rbac.cache.max_user_entries":       r.MaxUserEntries,
		"auth.rbac.cache.max_permission_entries": r.MaxPermissionEntries,
	} {
		if n < 0 {
			return fmt.Errorf("invalid %s %d: must not be negative", name, n)
		}
	}
	return nil
}

// normalize trims the fields and lowercases the email, matching how every
// other account's email is stored.
func (b *BootstrapAdminConfig) normalize() {
	b.Username = strings.TrimSpace(b.Username)
	b.Email = strings.ToLower(strings.TrimSpace(b.Email))
}

// The bootstrap admin is all or nothing.
func (b *BootstrapAdminConfig) validate() error {
	if !b.IsSet() {
		return nil
	}
	if b.Username == "" || b.Email == "" || b.Password == "" {
		return errors.New("auth.bootstrap_admin requires username, email and password together")
	}
	if len(b.Password) < 8 {
		return errors.New("invalid auth.bootstrap_admin.password: must be at least 8 characters")
	}
	return nil
}

func (l *LogConfig) validate() error {
	if err := oneOf("log.level", &l.Level, true, "debug", "info", "warn", "error"); err != nil {
		return err
	}
	return oneOf("log.format", &l.Format, true, "text", "json")
}

// required trims *v and rejects an empty result.
func required(name string, v *string, when string) error {
	*v = strings.TrimSpace(*v)
	if *v != "" {
		return nil
	}
	if when == "" {
		return fmt.Errorf("%s is required", name)
	}
	return fmt.Errorf("%s is required %s", name, when)
}

// oneOf trims (and optionally lowercases) *v and checks it against allowed.
func oneOf(name string, v *string, fold bool, allowed ...string) error {
	got := strings.TrimSpace(*v)
	if fold {
		got = strings.ToLower(got)
	}
	if !slices.Contains(allowed, got) {
		quoted := make([]string, len(allowed))
		for i, a := range allowed {
			quoted[i] = fmt.Sprintf("%q", a)
		}
		return fmt.Errorf("invalid %s %q: must be one of %s", name, *v, strings.Join(quoted, ", "))
	}
	*v = got
	return nil
}

func validPort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid %s %d: must be between 1 and 65535", name, port)
	}
	return nil
}

// optionalDuration trims *v; blank means unset, anything else must be a
// positive Go duration.
func optionalDuration(name string, v *string) error {
	*v = strings.TrimSpace(*v)
	if *v == "" {
		return nil
	}
	_, err := positiveDuration(name, *v)
	return err
}

func requiredDuration(name string, v *string, when string) (time.Duration, error) {
	if err := required(name, v, when); err != nil {
		return 0, err
	}
	return positiveDuration(name, *v)
}

func positiveDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be greater than 0", name, v)
	}
	return d, nil
}

// CountSecretClasses counts the character classes (lowercase, uppercase,
// digit, symbol) present in secret.
func CountSecretClasses(secret string) int {
	var lower, upper, digit, symbol bool
	for _, r := range secret {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	n := 0
	for _, has := range []bool{lower, upper, digit, symbol} {
		if has {
			n++
		}
	}
	return n
}
