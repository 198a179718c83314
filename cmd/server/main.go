package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/rallydesk/rallydesk/internal/adapter/bus"
	httpadapter "github.com/rallydesk/rallydesk/internal/adapter/http"
	"github.com/rallydesk/rallydesk/internal/adapter/persistence/postgres"
	"github.com/rallydesk/rallydesk/internal/config"
	"github.com/rallydesk/rallydesk/internal/ports"
	"github.com/rallydesk/rallydesk/internal/scheduler"
	"github.com/rallydesk/rallydesk/internal/usecase"
	"github.com/rallydesk/rallydesk/pkg/logger"
)

type changeBus interface {
	ports.ChangeNotifier
	ports.ChangeSubscriber
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "rallydesk",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open database", err, nil)
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	// Change feed transport. Redis lets writes from other processes reach
	// the trigger router; the in-process bus only sees this service's own.
	var feed changeBus
	if cfg.RedisEnabled {
		redisBus, err := bus.NewRedisBus(cfg.RedisURL, cfg.RedisChannel, structuredLogger)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to connect to Redis", err, map[string]interface{}{
				"redis_url": cfg.RedisURL,
			})
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisBus.Close()
		feed = redisBus
		structuredLogger.Info(ctx, "Redis change feed initialized", map[string]interface{}{
			"channel": cfg.RedisChannel,
		})
	} else {
		inproc := bus.NewInProcessBus()
		defer inproc.Close()
		feed = inproc
		structuredLogger.Info(ctx, "In-process change feed initialized", nil)
	}

	eventRepo := postgres.NewEventRepository(db)
	stageRepo := postgres.NewStageRepository(db)
	entryRepo := postgres.NewEntryRepository(db)
	announcementRepo := postgres.NewAnnouncementRepository(db)
	summaryRepo := postgres.NewSummaryRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	userRepo := postgres.NewUserRepository(db)

	clock := ports.SystemClock{}
	guard := usecase.NewGuard(eventRepo)
	dashboardUC := usecase.NewDashboardUsecase(eventRepo, stageRepo, entryRepo, announcementRepo, summaryRepo, clock, structuredLogger)
	stageUC := usecase.NewStageUsecase(guard, stageRepo, announcementRepo, auditRepo, feed, dashboardUC, clock, structuredLogger)
	announcementUC := usecase.NewAnnouncementUsecase(guard, announcementRepo, auditRepo, feed, dashboardUC, clock, structuredLogger)
	entryUC := usecase.NewEntryUsecase(guard, entryRepo, auditRepo, feed, dashboardUC, clock, structuredLogger)

	router := usecase.NewTriggerRouter(feed, eventRepo, dashboardUC, structuredLogger)
	go func() {
		if err := router.Run(ctx); err != nil && err != context.Canceled {
			structuredLogger.Error(ctx, "Trigger router stopped", err, nil)
		}
	}()

	sched := scheduler.New(scheduler.Config{
		SweepInterval:    cfg.SweepInterval,
		BackstopInterval: cfg.BackstopInterval,
		PromoteInterval:  cfg.PromoteInterval,
	}, userRepo, dashboardUC, announcementUC, structuredLogger)
	sched.Start(ctx)

	httpRouter := httpadapter.NewRouter(httpadapter.RouterDeps{
		Stages:        stageUC,
		Announcements: announcementUC,
		Entries:       entryUC,
		Dashboard:     dashboardUC,
		Summaries:     summaryRepo,
		JWTSecret:     cfg.JWTSecret,
		Log:           structuredLogger,
	})

	server := &http.Server{
		Addr:         cfg.ServerHost + ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "HTTP server listening", map[string]interface{}{
			"addr": server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "HTTP server failed", err, nil)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		structuredLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "HTTP server shutdown failed", err, nil)
	}

	cancel()
	sched.Wait()
	structuredLogger.Info(context.Background(), "Application stopped", nil)
}
