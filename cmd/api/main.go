package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/gym-access/internal/api/http"
	"github.com/spec-kit/gym-access/internal/api/http/handlers"
	"github.com/spec-kit/gym-access/internal/auth"
	"github.com/spec-kit/gym-access/internal/config"
	"github.com/spec-kit/gym-access/internal/events"
	"github.com/spec-kit/gym-access/internal/observability"
	"github.com/spec-kit/gym-access/internal/persistence"
	"github.com/spec-kit/gym-access/internal/repository"
	"github.com/spec-kit/gym-access/internal/service"
	"github.com/spec-kit/gym-access/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	development := cfg.App.IsDevelopment()
	secret, err := auth.ResolveSigningSecret(cfg.Auth.Secret, development, logger)
	if err != nil {
		logger.Fatal("signing secret unavailable", zap.Error(err))
	}
	accessPhrase, err := auth.ResolveAccessPhrase(cfg.Auth.AccessPhrase, development, logger)
	if err != nil {
		logger.Fatal("access phrase unavailable", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	gymRepo := repository.NewGymRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	tokens := auth.NewTokenManager(secret,
		auth.WithIssuer(cfg.Auth.Issuer),
		auth.WithAudience(cfg.Auth.Audience),
	)
	cookies := auth.NewCookieStore(cfg.App.IsProduction())
	resolver := auth.NewResolver(tokens, cookies, gymRepo, userRepo, logger)

	limiter := persistence.NewAttemptLimiter(redis, cfg.Auth.VerifyMaxAttempts, cfg.Auth.VerifyWindow, logger)
	authService := service.NewAuthService(cfg.Auth, accessPhrase, service.AuthDependencies{
		GymRepo:    gymRepo,
		UserRepo:   userRepo,
		Tokens:     tokens,
		Limiter:    limiter,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	gateCfg := auth.DefaultGateConfig()
	gate := auth.NewAccessGate(gateCfg, resolver, metrics)
	boundary := auth.NewTenantBoundary(resolver, gateCfg.TenantPrefix, httptransport.GymIDParam, logger)

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
		handlers.Dependency{Name: "postgres", Pinger: pg},
		handlers.Dependency{Name: "redis", Pinger: redis, Optional: true},
	)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          handlers.NewUsersHandler(authService, resolver, cookies),
		GymAuth:        handlers.NewGymAuthHandler(authService, resolver, cookies),
		GymAccess:      handlers.NewGymAccessHandler(authService, cookies, httptransport.GymIDParam),
		Admin:          handlers.NewAdminHandler(authService, resolver, gateCfg.TenantPrefix, httptransport.GymIDParam),
		Resolver:       resolver,
		Gate:           gate,
		TenantBoundary: boundary,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
