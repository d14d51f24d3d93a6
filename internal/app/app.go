// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/bissquit/journal-templates/internal/audit"
	auditpostgres "github.com/bissquit/journal-templates/internal/audit/postgres"
	"github.com/bissquit/journal-templates/internal/config"
	"github.com/bissquit/journal-templates/internal/domain"
	"github.com/bissquit/journal-templates/internal/identity"
	identitypostgres "github.com/bissquit/journal-templates/internal/identity/postgres"
	"github.com/bissquit/journal-templates/internal/identity/token"
	"github.com/bissquit/journal-templates/internal/notifications"
	notificationspostgres "github.com/bissquit/journal-templates/internal/notifications/postgres"
	"github.com/bissquit/journal-templates/internal/pkg/ctxlog"
	"github.com/bissquit/journal-templates/internal/pkg/httputil"
	"github.com/bissquit/journal-templates/internal/pkg/metrics"
	"github.com/bissquit/journal-templates/internal/pkg/postgres"
	"github.com/bissquit/journal-templates/internal/projects"
	projectspostgres "github.com/bissquit/journal-templates/internal/projects/postgres"
	"github.com/bissquit/journal-templates/internal/retention"
	"github.com/bissquit/journal-templates/internal/subscriptions"
	subscriptionspostgres "github.com/bissquit/journal-templates/internal/subscriptions/postgres"
	"github.com/bissquit/journal-templates/internal/templates"
	"github.com/bissquit/journal-templates/internal/templates/cache"
	templatespostgres "github.com/bissquit/journal-templates/internal/templates/postgres"
	"github.com/bissquit/journal-templates/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	redis         *redis.Client
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	cleaner       *retention.Cleaner
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(cfg.Database.URL, cfg.Database.MigrationsPath); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	var redisClient *redis.Client
	if cfg.Cache.RedisURL != "" {
		redisClient, err = cache.NewClient(connectCtx, cfg.Cache.RedisURL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connect to cache: %w", err)
		}
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		redis:         redisClient,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, err := app.setupRouter(metricsCtx)
	if err != nil {
		db.Close()
		metricsCancel()
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
		"version", version.Version,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()
	a.cleaner.Stop()

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

func (a *App) setupRouter(ctx context.Context) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(a.config.Server.RequestTimeout))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	r.Get("/api/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")
		http.ServeFile(w, r, "api/openapi/openapi.yaml")
	})

	r.Get("/docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head>
    <title>Journal Templates API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
        SwaggerUIBundle({
            url: "/api/openapi.yaml",
            dom_id: '#swagger-ui',
            presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
            layout: "BaseLayout"
        });
    </script>
</body>
</html>`))
	})

	identityService := identity.NewService(identitypostgres.NewRepository(a.db))
	identityHandler := identity.NewHandler(identityService)
	authenticator := token.NewAuthenticator(a.config.JWT.SecretKey, a.config.JWT.Issuer)

	projectsService := projects.NewService(projectspostgres.NewRepository(a.db))

	templatesService := templates.NewService(templatespostgres.NewRepository(a.db))
	templatesHandler := templates.NewHandler(templatesService)

	var keywordIndex subscriptions.KeywordIndex = templatesService
	if a.redis != nil {
		keywordCache := cache.NewKeywordCache(a.redis, templatesService, a.config.Cache.KeywordTTL)
		// Migrations may have changed keyword metadata since the entries were written.
		if err := keywordCache.Invalidate(ctx); err != nil {
			a.logger.Warn("failed to invalidate keyword cache", "error", err)
		}
		keywordIndex = keywordCache
	}

	notificationsRepo := notificationspostgres.NewRepository(a.db)
	renderer, err := notifications.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("create notification renderer: %w", err)
	}
	notificationsService := notifications.NewService(notificationsRepo, renderer)
	notificationsHandler := notifications.NewHandler(notificationsService)

	var informer subscriptions.Informer
	if a.config.Notifications.Enabled {
		informer = notificationsService
	}
	slog.Info("notifications configured", "enabled", a.config.Notifications.Enabled)

	subscriptionsService := subscriptions.NewService(
		subscriptionspostgres.NewRepository(a.db),
		projectsService,
		identityService,
		templatesService,
		keywordIndex,
	)
	subscriptionsHandler := subscriptions.NewHandler(subscriptionsService, identityService, informer)

	auditService := audit.NewService(auditpostgres.NewRepository(a.db), projectsService)
	auditHandler := audit.NewHandler(auditService)

	a.cleaner = retention.NewCleaner(a.config.Audit.CleanupInterval,
		retention.Target{
			Name:      "audit",
			Retention: days(a.config.Audit.RetentionDays),
			Purger:    auditService,
		},
		retention.Target{
			Name:      "notifications",
			Retention: days(a.config.Notifications.RetentionDays),
			Purger:    notificationsService,
		},
	)
	a.cleaner.Start(ctx)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httputil.AuthMiddleware(authenticator))

			identityHandler.RegisterProtectedRoutes(r)
			subscriptionsHandler.RegisterRoutes(r)
			auditHandler.RegisterRoutes(r)
			notificationsHandler.RegisterRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(domain.RoleOperator))
				auditHandler.RegisterOperatorRoutes(r)
			})

			r.Group(func(r chi.Router) {
				r.Use(httputil.RequireRole(domain.RoleAdmin))
				templatesHandler.RegisterRoutes(r)
			})
		})
	})

	return r, nil
}

func days(n int) time.Duration {
	return time.Duration(n) * 24 * time.Hour
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			// The keyword cache falls back to the database, so this only degrades.
			ctxlog.FromContext(r.Context()).Warn("cache ping failed", "error", err)
		}
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
