package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/acadia-sis/acadia-sis/internal/app"
	"github.com/acadia-sis/acadia-sis/internal/authz"
	"github.com/acadia-sis/acadia-sis/internal/observability"
	"github.com/acadia-sis/acadia-sis/internal/platform/cache"
	"github.com/acadia-sis/acadia-sis/internal/platform/db"
	"github.com/acadia-sis/acadia-sis/internal/roles"
	"github.com/acadia-sis/acadia-sis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	permStore := authz.NewStore(dbpool)
	permCache := authz.NewCache(redisClient, cfg.PermissionCacheTTL)
	engine := authz.NewEngine(authz.DefaultHierarchy(), cfg.BypassLabels)
	ownership := authz.NewOwnershipRegistry(logger)
	gate := authz.NewGate(authz.GateConfig{
		Store:        permStore,
		Cache:        permCache,
		Engine:       engine,
		Ownership:    ownership,
		Logger:       logger,
		Metrics:      metrics,
		CacheTimeout: cfg.AuthzCacheTimeout,
		StoreTimeout: cfg.AuthzStoreTimeout,
	})
	authzMiddleware := authz.Middleware{Gate: gate}

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	rolesRepo := roles.NewRepository(dbpool)
	rolesService := roles.NewService(rolesRepo, gate, jobsClient, logger)
	rolesHandler := roles.NewHandler(logger, rolesService, authzMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		RolesHandler: rolesHandler,
		JobHandler:   jobHandler,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("runtime", slog.Any("error", err))
		os.Exit(1)
	}
}
