package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/embed-login/internal/api/dto"
	httptransport "github.com/spec-kit/embed-login/internal/api/http"
	"github.com/spec-kit/embed-login/internal/api/http/handlers"
	"github.com/spec-kit/embed-login/internal/auth"
	"github.com/spec-kit/embed-login/internal/config"
	"github.com/spec-kit/embed-login/internal/credentials"
	"github.com/spec-kit/embed-login/internal/events"
	"github.com/spec-kit/embed-login/internal/observability"
	"github.com/spec-kit/embed-login/internal/persistence"
	"github.com/spec-kit/embed-login/internal/ratelimit"
	"github.com/spec-kit/embed-login/internal/repository"
	"github.com/spec-kit/embed-login/internal/service"
	"github.com/spec-kit/embed-login/internal/session"
	"github.com/spec-kit/embed-login/internal/vendor"
	"github.com/spec-kit/embed-login/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.Pool, persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	credStore, err := loadCredentials(ctx, pg)
	if err != nil {
		logger.Fatal("failed to load credentials", zap.Error(err))
	}
	logger.Info("credentials loaded", zap.Int("users", credStore.Len()))

	var redis *persistence.Redis
	if cfg.UsesRedis() {
		redis = persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
	}

	var sessionStore session.Store = session.NewMemoryStore(nil)
	if cfg.Session.Store == config.StoreRedis {
		sessionStore = session.NewRedisStore(redis.Client)
	}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.PerMinute, nil)
	if cfg.RateLimit.Store == config.StoreRedis {
		limiter = ratelimit.NewRedisLimiter(redis.Client, cfg.RateLimit.PerMinute)
	}

	if cfg.Vendor.MockFallback {
		logger.Warn("vendor mock fallback enabled; unreachable vendor API yields mock tokens for bearer clients")
	}
	vendorClient := vendor.NewClient(vendor.Config{
		BaseURL:      cfg.Vendor.APIURL,
		APIKey:       cfg.Vendor.APIKey,
		ReleaseID:    cfg.Vendor.ReleaseID,
		Timeout:      cfg.Vendor.Timeout(),
		MockFallback: cfg.Vendor.MockFallback,
	}, logger)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	sessions := session.NewManager(sessionStore, cfg.Session.TTL())

	authService := service.NewAuthService(service.AuthDependencies{
		Credentials:  credStore,
		Bearer:       tokens,
		Sessions:     sessions,
		Trader:       vendorClient.Strict(),
		BearerTrader: vendorClient,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})

	release := dto.ReleaseResponse{ReleaseID: cfg.Vendor.ReleaseID, EmbedScriptURL: cfg.Vendor.EmbedScriptURL}
	cookie := auth.CookieConfig{Name: cfg.Session.CookieName, Secure: cfg.Session.CookieSecure, MaxAge: sessions.TTL()}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:         logger,
		Metrics:        metrics,
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Limiter:        limiter,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Metrics:  handlers.NewMetricsHandler(metrics),
		Auth:     handlers.NewAuthHandler(authService, "/login"),
		Vendor:   handlers.NewVendorHandler(authService, vendorClient, release, "/login"),
		Sessions: handlers.NewSessionHandler(authService, cookie, handlers.SessionPaths{Login: "/ssr/login", Landing: "/ssr/protected", Home: "/ssr/"}),
		Pages:    handlers.NewPagesHandler(authService, release, logger),
		BearerGuard: auth.NewGuard(auth.GuardConfig{
			Verifier:    tokens,
			Extract:     auth.BearerToken,
			LoginPath:   "/login",
			LandingPath: "/",
		}, logger),
		SessionGuard: auth.NewGuard(auth.GuardConfig{
			Verifier:     sessions,
			Extract:      auth.CookieValue(cfg.Session.CookieName),
			LoginPath:    "/ssr/login",
			LandingPath:  "/ssr/",
			ReturnTo:     true,
			CookieSecure: cfg.Session.CookieSecure,
		}, logger),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func loadCredentials(ctx context.Context, pg *persistence.Postgres) (*credentials.Store, error) {
	if !pg.Enabled() {
		return credentials.NewStore(credentials.DefaultCredentials())
	}
	return credentials.Load(ctx, repository.NewCredentialRepository(pg.Pool))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
