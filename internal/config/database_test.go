package config

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sqliteConfig(t *testing.T, pool PoolConfig) *DatabaseConfig {
	t.Helper()
	return &DatabaseConfig{
		Driver: "sqlite",
		SQLite: SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "learnhub.db")},
		Pool:   pool,
	}
}

func TestSetupDatabase_Pool(t *testing.T) {
	tests := []struct {
		name     string
		pool     PoolConfig
		wantOpen int
	}{
		{"explicit", PoolConfig{MaxIdleConns: 5, MaxOpenConns: 50, ConnMaxLifetime: "30m"}, 50},
		{"zero values take defaults", PoolConfig{}, defaultPool.maxOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := SetupDatabase(sqliteConfig(t, tt.pool), quietLogger())
			if err != nil {
				t.Fatalf("SetupDatabase() error = %v", err)
			}
			sqlDB, _ := db.DB()
			t.Cleanup(func() { sqlDB.Close() })

			if err := sqlDB.Ping(); err != nil {
				t.Fatalf("Ping() error = %v", err)
			}
			if got := sqlDB.Stats().MaxOpenConnections; got != tt.wantOpen {
				t.Errorf("MaxOpenConnections = %d, want %d", got, tt.wantOpen)
			}
		})
	}
}

func TestSetupDatabase_Errors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *DatabaseConfig
		logger  *slog.Logger
		wantErr string
	}{
		{"nil config", nil, quietLogger(), "database config is nil"},
		{"nil logger", &DatabaseConfig{Driver: "sqlite"}, nil, "logger is nil"},
		{"unknown driver", &DatabaseConfig{Driver: "mysql"}, quietLogger(), "unsupported database driver: mysql"},
		{"bad lifetime", &DatabaseConfig{Driver: "sqlite", Pool: PoolConfig{ConnMaxLifetime: "soon"}}, quietLogger(), "pool.conn_max_lifetime"},
		{"negative lifetime", &DatabaseConfig{Driver: "sqlite", Pool: PoolConfig{ConnMaxLifetime: "-1s"}}, quietLogger(), "must be greater than 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetupDatabase(tt.cfg, tt.logger)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("SetupDatabase() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPoolConfigSettings(t *testing.T) {
	tests := []struct {
		name string
		in   PoolConfig
		want poolSettings
	}{
		{"all defaults", PoolConfig{ConnMaxLifetime: "   "}, defaultPool},
		{"partial", PoolConfig{MaxIdleConns: 3}, poolSettings{maxIdle: 3, maxOpen: 100, maxLifetime: time.Hour}},
		{"negative counts fall back", PoolConfig{MaxIdleConns: -1, MaxOpenConns: -5}, defaultPool},
		{"everything set", PoolConfig{MaxIdleConns: 2, MaxOpenConns: 4, ConnMaxLifetime: "90s"}, poolSettings{2, 4, 90 * time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.settings()
			if err != nil {
				t.Fatalf("settings() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("settings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	tests := []struct {
		name string
		in   PostgresConfig
		want string
	}{
		{
			name: "full",
			in:   PostgresConfig{Host: "db", Port: 5432, User: "lh", Password: "p@ss", DBName: "learnhub", SSLMode: "require"},
			want: "postgres://lh:p%40ss@db:5432/learnhub?sslmode=require",
		},
		{
			name: "no credentials or sslmode",
			in:   PostgresConfig{Host: "localhost", Port: 6543, DBName: "lms"},
			want: "postgres://localhost:6543/lms",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.dsn(); got != tt.want {
				t.Errorf("dsn() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := map[string]string{
		"data/app.db":                  "data/app.db?_pragma=foreign_keys(1)",
		"file::memory:?cache=shared":   "file::memory:?cache=shared&_pragma=foreign_keys(1)",
		"a.db?_pragma=foreign_keys(0)": "a.db?_pragma=foreign_keys(0)",
	}
	for in, want := range tests {
		if got := sqliteDSN(in); got != want {
			t.Errorf("sqliteDSN(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetupDatabase_SQLiteEnforcesForeignKeys(t *testing.T) {
	logger := quietLogger()
	db, err := SetupDatabase(sqliteConfig(t, PoolConfig{MaxOpenConns: 1}), logger)
	if err != nil {
		t.Fatalf("SetupDatabase() error = %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	type course struct {
		ID uint
	}
	type lesson struct {
		ID       uint
		CourseID uint
		Course   *course `gorm:"constraint:OnDelete:CASCADE"`
	}
	if err := Migrate(db, logger, &course{}, &lesson{}); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if err := db.Create(&course{ID: 1}).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	if err := db.Create(&lesson{ID: 1, CourseID: 1}).Error; err != nil {
		t.Fatalf("create lesson: %v", err)
	}
	if err := db.Create(&lesson{ID: 2, CourseID: 99}).Error; err == nil {
		t.Error("lesson pointing at a missing course was accepted")
	}

	if err := db.Delete(&course{ID: 1}).Error; err != nil {
		t.Fatalf("delete course: %v", err)
	}
	var left int64
	db.Model(&lesson{}).Count(&left)
	if left != 0 {
		t.Errorf("lessons after cascade = %d, want 0", left)
	}
}

func TestSetupDatabase_SQLTracesGoThroughAppLogger(t *testing.T) {
	tests := []struct {
		name      string
		level     slog.Level
		wantTrace bool
	}{
		{"debug traces statements", slog.LevelDebug, true},
		{"info keeps them quiet", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: tt.level}))

			db, err := SetupDatabase(sqliteConfig(t, PoolConfig{}), logger)
			if err != nil {
				t.Fatalf("SetupDatabase() error = %v", err)
			}
			sqlDB, _ := db.DB()
			t.Cleanup(func() { sqlDB.Close() })

			if err := db.WithContext(context.Background()).Exec("SELECT 42").Error; err != nil {
				t.Fatalf("Exec() error = %v", err)
			}
			if got := strings.Contains(buf.String(), "SELECT 42"); got != tt.wantTrace {
				t.Errorf("trace present = %v, want %v; log:\n%s", got, tt.wantTrace, buf.String())
			}
		})
	}
}
