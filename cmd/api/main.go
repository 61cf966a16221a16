// Package main is the entry point for the briefing API server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexroessner/newsfeed/internal/api"
	"github.com/alexroessner/newsfeed/internal/briefing/analytics"
	"github.com/alexroessner/newsfeed/internal/briefing/delivery"
	"github.com/alexroessner/newsfeed/internal/briefing/engine"
	"github.com/alexroessner/newsfeed/internal/briefing/enrichment"
	"github.com/alexroessner/newsfeed/internal/briefing/persistence"
	"github.com/alexroessner/newsfeed/internal/config"
	"github.com/alexroessner/newsfeed/internal/db"
	"github.com/alexroessner/newsfeed/internal/jobs"
	"github.com/alexroessner/newsfeed/internal/obslog"
)

// analyticsCleaner adapts analytics.CleanupOldRecords' package-level
// function, which takes a pool, to jobs.RecordCleaner's method shape.
type analyticsCleaner struct {
	pool *db.Pool
}

func (c *analyticsCleaner) CleanupOldRecords(ctx context.Context, retentionDays int) (int64, error) {
	return analytics.CleanupOldRecords(ctx, c.pool, retentionDays)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logger := obslog.New(cfg.LogLevel)

	var pool *db.Pool
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		pool, err = db.NewPool(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Warn("analytics database connection failed, continuing without it", "error", err)
		} else {
			logger.Info("analytics database connection established")
			defer pool.Close()
		}
	}

	config.LogStartupConfig(logger, cfg, pool != nil)

	agentsCfg, err := config.LoadAgentsConfig(cfg.AgentsConfigPath)
	if err != nil {
		log.Fatalf("failed to load agents config: %v", err)
	}
	pipelinesCfg, err := config.LoadPipelinesConfig(cfg.PipelinesConfigPath)
	if err != nil {
		log.Fatalf("failed to load pipelines config: %v", err)
	}
	liveCfg := config.NewLivePipelinesConfig(pipelinesCfg)

	personasCfg, err := config.LoadPersonasConfig(cfg.PersonasConfigPath)
	if err != nil {
		log.Fatalf("failed to load personas config: %v", err)
	}

	store, err := persistence.NewStore(cfg.StateDir)
	if err != nil {
		log.Fatalf("failed to open state store at %s: %v", cfg.StateDir, err)
	}

	throttle := enrichment.NewDomainThrottle(2 * time.Second)
	fetcher := enrichment.NewFetcher(10*time.Second, throttle)
	cache := enrichment.NewTTLCache(time.Duration(pipelinesCfg.ArticleCacheTTLHours) * time.Hour)
	enricher := enrichment.NewEnricher(fetcher, cache, nil, 15*time.Second)

	var dispatcher *delivery.Dispatcher
	if cfg.ResendAPIKey != "" || cfg.DatabaseURL != "" {
		webhookSender := delivery.NewWebhookSender(10 * time.Second)
		var emailSender *delivery.EmailSender
		if cfg.ResendAPIKey != "" {
			emailSender = delivery.NewEmailSender(cfg.ResendAPIKey, cfg.FromEmail)
		}
		dispatcher = delivery.NewDispatcher(webhookSender, emailSender, logger)
	}

	requestTimeout := time.Duration(cfg.PipelineTimeoutSec) * time.Second

	eng := engine.New(engine.Config{
		PipelineConfig:        liveCfg,
		AgentConfigs:          agentsCfg.Agents,
		PersonaConfigs:        personasCfg.Personas,
		Enricher:              enricher,
		Store:                 store,
		Dispatcher:            dispatcher,
		MaxConcurrentRequests: cfg.MaxConcurrentRequests,
		PipelineTimeout:       requestTimeout,
		Logger:                logger,
	})

	router := api.NewRouter(eng, requestTimeout)

	stopReload := make(chan struct{})
	go config.WatchSIGHUP(logger, liveCfg, cfg.PipelinesConfigPath, stopReload)

	var cleanupCancel context.CancelFunc
	if pool != nil {
		var cleanupCtx context.Context
		cleanupCtx, cleanupCancel = context.WithCancel(context.Background())
		cleanupJob := jobs.NewCleanupJob(&analyticsCleaner{pool: pool}, 90, logger)
		go cleanupJob.RunScheduled(cleanupCtx, jobs.DefaultCleanupInterval)
		logger.Info("analytics cleanup job started", "interval", jobs.DefaultCleanupInterval)
	}

	healthCtx, healthCancel := context.WithCancel(context.Background())
	healthJob := jobs.NewAgentHealthJob(jobs.NewHTTPEndpointChecker(10*time.Second), agentsCfg.Agents, logger)
	go healthJob.RunScheduled(healthCtx, jobs.DefaultHealthCheckInterval)
	logger.Info("agent health check job started", "interval", jobs.DefaultHealthCheckInterval)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting briefing API server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	close(stopReload)
	healthCancel()
	if cleanupCancel != nil {
		cleanupCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
