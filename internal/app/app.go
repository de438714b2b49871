package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-admin/internal/cache"
	"school-admin/internal/config"
	"school-admin/internal/database"
	"school-admin/internal/event"
	"school-admin/internal/handler"
	"school-admin/internal/metrics"
	"school-admin/internal/middleware"
	"school-admin/internal/repository"
	"school-admin/internal/router"
	"school-admin/internal/service"
	"school-admin/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	cleanupFuncs []func(context.Context)
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	adminRepo := repository.NewAdminRepository(pool)
	tokenRepo := repository.NewTokenRepository(pool)
	dimensionRepo := repository.NewDimensionRepository(pool)
	folderRepo := repository.NewFolderRepository(pool)
	unlockRepo := repository.NewUnlockTokenRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)
	trashRepo := repository.NewTrashRepository(pool)
	usageRepo := repository.NewUsageRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	activityRepo := repository.NewActivityRepository(pool)
	slog.Info("database ready")

	var usageCache cache.Cache = cache.Noop{}
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, cfg.RedisURL, "school-admin:")
		if err != nil {
			// Storage figures can always be recomputed from the database.
			slog.Warn("redis unavailable, storage cache disabled", "error", err.Error())
		} else {
			usageCache = redisCache
			slog.Info("redis cache ready")
		}
	}

	authService := service.NewAuthService(adminRepo, tokenRepo, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if created, err := authService.Bootstrap(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		_ = usageCache.Close()
		db.Close()
		return nil, fmt.Errorf("failed to bootstrap super-admin: %w", err)
	} else if !created && cfg.BootstrapAdminEmail != "" {
		slog.Debug("bootstrap skipped, admins already exist")
	}

	var appMetrics *metrics.Metrics
	var feedGauge websocket.Gauge
	bus := event.NewBus(cfg.ActivityQueueSize)
	if cfg.MetricsEnabled {
		appMetrics = metrics.New()
		feedGauge = appMetrics
		bus.OnDrop(func(e event.Event) { appMetrics.EventDropped(string(e.Type)) })
	}

	activityService := service.NewActivityService(activityRepo, bus)
	activityService.Start()

	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.NewHub(bus, feedGauge)
	go hub.Run(hubCtx)

	lockService := service.NewLockService(folderRepo, unlockRepo, adminRepo, cfg.UnlockTokenTTL)
	adminService := service.NewAdminService(adminRepo)
	dimensionService := service.NewDimensionService(dimensionRepo)
	storageService := service.NewStorageService(usageRepo, dimensionRepo, usageCache, cfg.StorageCapacityBytes, cfg.StorageCacheTTL)
	folderService := service.NewFolderService(folderRepo, lockService, storageService)
	taskService := service.NewTaskService(taskRepo, folderRepo, lockService, activityService, cfg.AllowConcurrentTasks)
	trashService := service.NewTrashService(trashRepo, storageService)
	announcementService := service.NewAnnouncementService(announcementRepo)

	appRouter := router.New(cfg, middleware.NewAuthMiddleware(authService), appMetrics, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Admin:        handler.NewAdminHandler(adminService),
		Dimension:    handler.NewDimensionHandler(dimensionService),
		Folder:       handler.NewFolderHandler(folderService),
		Lock:         handler.NewLockHandler(lockService),
		Task:         handler.NewTaskHandler(taskService),
		Trash:        handler.NewTrashHandler(trashService),
		Storage:      handler.NewStorageHandler(storageService),
		Announcement: handler.NewAnnouncementHandler(announcementService),
		Activity:     handler.NewActivityHandler(activityService),
		Feed:         websocket.NewHandler(hub, cfg.CORSOrigins),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		// Run in order after the server stops: disconnect feeds, drain
		// activity, then close the backends it writes to.
		cleanupFuncs: []func(context.Context){
			func(context.Context) {
				stopHub()
			},
			func(ctx context.Context) {
				if err := activityService.Flush(ctx); err != nil {
					slog.Error("activity queue not fully drained", "error", err.Error())
				}
			},
			func(context.Context) {
				if err := usageCache.Close(); err != nil {
					slog.Warn("closing redis client", "error", err.Error())
				}
			},
			func(context.Context) {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-stop:
		slog.Info("shutdown signal received", "signal", sig.String())
	case runErr = <-serveErr:
		slog.Error("server failed", "error", runErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil && runErr == nil {
		runErr = fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup(ctx)
	}

	if runErr != nil {
		return runErr
	}
	slog.Info("server stopped")
	return nil
}
