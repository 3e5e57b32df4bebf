package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/simp-lee/ginx"
	"github.com/simp-lee/jwt"
	"github.com/simp-lee/logger"
	"github.com/simp-lee/rbac"
	"gorm.io/gorm"

	"github.com/simp-lee/learnhub/internal/config"
	"github.com/simp-lee/learnhub/internal/domain"
	"github.com/simp-lee/learnhub/internal/middleware"
	"github.com/simp-lee/learnhub/internal/module/auth"
	"github.com/simp-lee/learnhub/internal/module/comment"
	"github.com/simp-lee/learnhub/internal/module/course"
	"github.com/simp-lee/learnhub/internal/module/discount"
	"github.com/simp-lee/learnhub/internal/module/lesson"
	"github.com/simp-lee/learnhub/internal/module/post"
	"github.com/simp-lee/learnhub/internal/module/progress"
	"github.com/simp-lee/learnhub/internal/module/user"
	"github.com/simp-lee/learnhub/internal/storage"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine      *gin.Engine
	db          *gorm.DB
	redis       *redis.Client
	logger      *logger.Logger
	cfg         *config.Config
	jwtService  jwt.Service
	rbacService rbac.Service
	// closers run on shutdown, before the database and logger.
	closers []io.Closer
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// models are migrated on every start, parents before children.
var models = []any{
	&domain.User{},
	&domain.Discount{},
	&domain.Course{},
	&domain.Lesson{},
	&domain.Post{},
	&domain.Comment{},
	&domain.LessonProgress{},
}

// closerFunc adapts a cleanup function to io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, redis, file storage, authentication and
// authorization, every business module, middleware, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg}
	success := false
	defer func() {
		if !success {
			a.close()
		}
	}()

	// 1. Logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a.logger = log

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}

	// 2. Database and schema.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	a.db = db
	if err := config.Migrate(db, log.Logger, models...); err != nil {
		return nil, err
	}

	// 3. Redis, optional.
	rdb, err := config.SetupRedis(&cfg.Redis, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup redis: %w", err)
	}
	a.redis = rdb

	// 4. Uploaded media.
	files, err := storage.NewLocal(cfg.Storage.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	// 5. Tokens and authorization. With auth disabled there is no login and
	// every route is open.
	var guard *middleware.Guard
	var authModule Module
	if cfg.Auth.Enabled {
		if guard, err = a.setupAuthorization(); err != nil {
			return nil, err
		}
	}

	// 6. Manual dependency injection: repository → service → handler → module.
	userRepo := user.NewUserRepository(db)
	discountRepo := discount.NewDiscountRepository(db)
	courseRepo := course.NewCourseRepository(db)
	lessonRepo := lesson.NewLessonRepository(db)
	postRepo := post.NewPostRepository(db)
	commentRepo := comment.NewCommentRepository(db)
	progressRepo := progress.NewProgressRepository(db)

	userSvc := user.NewUserService(userRepo, guard)
	discountSvc := discount.NewDiscountService(discountRepo)
	courseSvc := course.NewCourseService(courseRepo, discountRepo)
	lessonSvc := lesson.NewLessonService(lessonRepo, courseRepo)
	postSvc := post.NewPostService(postRepo)
	commentSvc := comment.NewCommentService(commentRepo, postRepo, lessonRepo)
	progressSvc := progress.NewProgressService(progressRepo, lessonRepo, courseRepo, userRepo)

	if cfg.Auth.Enabled {
		authSvc, err := a.newAuthService(userSvc, userRepo, guard)
		if err != nil {
			return nil, err
		}
		authModule = auth.NewModule(auth.NewHandler(authSvc))
	}

	modules := []Module{
		user.NewModule(user.NewUserHandler(userSvc, files), userSvc, guard),
		discount.NewModule(discount.NewDiscountHandler(discountSvc), discountSvc, guard),
		course.NewModule(course.NewCourseHandler(courseSvc, files), courseSvc, guard),
		lesson.NewModule(lesson.NewLessonHandler(lessonSvc, files), lessonSvc, guard),
		post.NewModule(post.NewPostHandler(postSvc, guard), guard),
		comment.NewModule(comment.NewCommentHandler(commentSvc, guard), guard),
		progress.NewModule(progress.NewProgressHandler(progressSvc), guard),
	}
	if authModule != nil {
		modules = append([]Module{authModule}, modules...)
	}

	if err := bootstrapAdmin(context.Background(), cfg.Auth.BootstrapAdmin, userRepo, userSvc, log.Logger); err != nil {
		return nil, err
	}

	// 7. Gin engine with custom middleware (not gin.Default()).
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	global, err := globalChain(&cfg.Server)
	if err != nil {
		return nil, err
	}
	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		global,
	)

	// 8. Routes.
	var apiMiddleware []gin.HandlerFunc
	if cfg.Auth.Enabled {
		apiMiddleware = append(apiMiddleware, authChain(a.jwtService, cfg.Auth.PublicPaths))
	} else {
		log.Warn("authentication disabled: every API route is open")
	}
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:       modules,
		DB:            db,
		Redis:         rdb,
		UploadDir:     files.Root(),
		PublicPath:    cfg.Storage.PublicPath,
		APIMiddleware: apiMiddleware,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	a.engine = engine
	success = true
	return a, nil
}

// setupAuthorization creates the token service and, when configured, the
// RBAC store seeded with the default policy. The returned guard checks RBAC
// when present and the token roles otherwise.
func (a *App) setupAuthorization() (*middleware.Guard, error) {
	expiry, err := tokenExpiry(&a.cfg.Auth)
	if err != nil {
		return nil, err
	}
	jwtSvc, err := jwt.New(a.cfg.Auth.JWTSecret,
		jwt.WithMaxTokenLifetime(expiry.Access),
		jwt.WithUserRevocationTTL(expiry.Refresh),
	)
	if err != nil {
		return nil, fmt.Errorf("setup jwt: %w", err)
	}
	a.jwtService = jwtSvc
	a.closers = append(a.closers, closerFunc(func() error { jwtSvc.Close(); return nil }))

	rbacSvc, err := config.SetupRBAC(&a.cfg.Auth.RBAC, a.db, a.log())
	if err != nil {
		return nil, fmt.Errorf("setup rbac: %w", err)
	}
	if rbacSvc != nil {
		a.rbacService = rbacSvc
		a.closers = append(a.closers, rbacSvc)
		if err := middleware.SeedPolicy(rbacSvc, middleware.DefaultPolicy()); err != nil {
			return nil, fmt.Errorf("seed rbac policy: %w", err)
		}
	}
	return middleware.NewGuard(rbacSvc, nil), nil
}

// newAuthService keeps refresh tokens in redis when it is configured and in
// process memory otherwise.
func (a *App) newAuthService(users domain.UserService, repo domain.UserRepository, guard *middleware.Guard) (auth.Service, error) {
	expiry, err := tokenExpiry(&a.cfg.Auth)
	if err != nil {
		return nil, err
	}

	var tokens auth.TokenStore
	if a.redis != nil {
		tokens = auth.NewRedisTokenStore(a.redis)
	} else {
		mem := auth.NewMemoryTokenStore()
		a.closers = append(a.closers, closerFunc(func() error { mem.Close(); return nil }))
		tokens = mem
	}
	return auth.NewService(a.jwtService, users, repo, tokens, guard, expiry), nil
}

// globalChain assembles the ginx middleware that runs on every request: the
// shared error envelope, CORS, the request timeout and per-IP rate limiting.
func globalChain(cfg *config.ServerConfig) (gin.HandlerFunc, error) {
	corsOpts, err := resolveCORSOptions(cfg.Mode, cfg.CORS)
	if err != nil {
		return nil, err
	}

	chain := ginx.NewChain().
		WithErrorFormat(errorFormatter).
		Use(ginx.CORS(corsOpts...))

	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid server.timeout %q: %w", cfg.Timeout, err)
		}
		chain.Use(ginx.Timeout(ginx.WithTimeout(d)))
	}

	if cfg.RateLimit.Enabled {
		chain.Use(ginx.RateLimit(effectiveRateLimitRPS(cfg.RateLimit.RPS), cfg.RateLimit.Burst, ginx.WithIP()))
	}

	return chain.Build(), nil
}

// authChain requires a valid access token on every API path except the
// configured public ones.
func authChain(jwtSvc jwt.Service, publicPaths []string) gin.HandlerFunc {
	return ginx.NewChain().
		WithErrorFormat(errorFormatter).
		Unless(ginx.PathIs(publicPaths...), ginx.Auth(jwtSvc)).
		Build()
}

// resolveCORSOptions builds ginx CORS options from configuration. Without an
// allowlist, debug mode accepts any origin (without credentials) and release
// mode denies cross-origin requests.
func resolveCORSOptions(mode string, cfg config.CORSConfig) ([]ginx.Option[ginx.CORSConfig], error) {
	origins := cfg.AllowOrigins
	credentials := cfg.AllowCredentials
	if len(origins) == 0 {
		if mode == gin.ReleaseMode {
			origins = []string{}
		} else {
			origins = []string{"*"}
			credentials = false
		}
	}
	if credentials && slices.Contains(origins, "*") {
		return nil, errors.New("server.cors: allow_credentials cannot be combined with a wildcard origin")
	}

	opts := []ginx.Option[ginx.CORSConfig]{
		ginx.WithAllowOrigins(origins...),
		ginx.WithAllowCredentials(credentials),
		ginx.WithExposeHeaders(middleware.RequestIDHeader),
	}
	if len(cfg.AllowMethods) > 0 {
		opts = append(opts, ginx.WithAllowMethods(cfg.AllowMethods...))
	}
	if len(cfg.AllowHeaders) > 0 {
		opts = append(opts, ginx.WithAllowHeaders(cfg.AllowHeaders...))
	}
	if cfg.MaxAge != "" {
		d, err := time.ParseDuration(cfg.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("invalid server.cors.max_age %q: %w", cfg.MaxAge, err)
		}
		opts = append(opts, ginx.WithMaxAge(d))
	}
	return opts, nil
}

// effectiveRateLimitRPS rounds a fractional rate up; ginx limits in whole
// requests per second.
func effectiveRateLimitRPS(rps float64) int {
	if rps <= 0 {
		return 1
	}
	return int(math.Ceil(rps))
}

func tokenExpiry(cfg *config.AuthConfig) (auth.Expiry, error) {
	access, err := time.ParseDuration(cfg.TokenExpiry)
	if err != nil {
		return auth.Expiry{}, fmt.Errorf("invalid auth.token_expiry %q: %w", cfg.TokenExpiry, err)
	}
	refresh, err := time.ParseDuration(cfg.RefreshTokenExpiry)
	if err != nil {
		return auth.Expiry{}, fmt.Errorf("invalid auth.refresh_token_expiry %q: %w", cfg.RefreshTokenExpiry, err)
	}
	return auth.Expiry{Access: access, Refresh: refresh}, nil
}

// bootstrapAdmin creates the configured admin account unless an Active user
// already owns its email.
func bootstrapAdmin(ctx context.Context, cfg config.BootstrapAdminConfig, repo domain.UserRepository, svc domain.UserService, log *slog.Logger) error {
	if !cfg.IsSet() {
		return nil
	}

	existing, err := repo.GetActiveByEmail(ctx, cfg.Email)
	switch {
	case err == nil:
		log.Info("bootstrap admin already present", slog.Uint64("user_id", uint64(existing.ID)))
		return nil
	case !domain.IsNotFound(err):
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	admin, err := svc.CreateUser(ctx, domain.UserInput{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	log.Info("bootstrap admin created", slog.Uint64("user_id", uint64(admin.ID)))
	return nil
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout, then releases every
// resource New acquired.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.log().Error("server shutdown error", slog.Any("error", err))
		}
	}

	a.log().Info("server stopped")
	a.close()
	return runErr
}

// log returns the application logger, or the slog default before one exists.
func (a *App) log() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}

// close releases resources in reverse order of acquisition. It is safe on a
// partially built App.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log().Error("resource close error", slog.Any("error", err))
		}
	}
	a.closers = nil

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log().Error("redis close error", slog.Any("error", err))
		}
		a.redis = nil
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.log().Error("database close error", slog.Any("error", err))
			} else {
				a.log().Info("database connection closed")
			}
		}
		a.db = nil
	}

	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
		a.logger = nil
	}
}
