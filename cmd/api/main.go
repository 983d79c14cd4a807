package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/financial-time-machine/internal/config"
	"github.com/Dan9191/financial-time-machine/internal/handler"
	"github.com/Dan9191/financial-time-machine/internal/integrations/advisor"
	"github.com/Dan9191/financial-time-machine/internal/integrations/keyrate"
	"github.com/Dan9191/financial-time-machine/internal/middleware"
	"github.com/Dan9191/financial-time-machine/internal/repository"
	"github.com/Dan9191/financial-time-machine/internal/scheduler"
	"github.com/Dan9191/financial-time-machine/internal/service"
	"github.com/Dan9191/financial-time-machine/internal/utils/email"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	jobs := scheduler.New(logger, 30*time.Second)

	// Advice cache
	var cache repository.AdviceCache
	switch cfg.AdviceCache {
	case config.CacheMemory:
		memory := repository.NewMemoryCache(cfg.AdviceCacheTTL)
		prune := func(context.Context) error {
			logger.Debugf("Pruned %d cached advice entries", memory.Prune())
			return nil
		}
		if err := jobs.Add("advice-cache-prune", "@every 10m", prune); err != nil {
			logger.Fatalf("Failed to schedule advice cache pruning: %v", err)
		}
		cache = memory
	case config.CacheRedis:
		redisCache := repository.NewRedisCache(cfg.RedisAddr, cfg.AdviceCacheTTL)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisCache.Ping(pingCtx)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to connect to advice cache: %v", err)
		}
		defer redisCache.Close()
		cache = redisCache
	}

	// Key rate feed
	var rates service.KeyRateSource
	if cfg.KeyRateEnabled() {
		keyRateClient := keyrate.NewClient(cfg, logger)
		refresh := func(ctx context.Context) error {
			_, err := keyRateClient.Refresh(ctx)
			return err
		}
		if err := jobs.Add("key-rate-refresh", cfg.KeyRateSchedule, refresh); err != nil {
			logger.Fatalf("Failed to schedule key rate refresh: %v", err)
		}
		go jobs.RunNow("key-rate-refresh", refresh)
		rates = keyRateClient
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	pruneClients := func(context.Context) error {
		logger.Debugf("Pruned %d idle rate limit buckets", rateLimiter.Prune())
		return nil
	}
	if err := jobs.Add("rate-limit-prune", "@every 10m", pruneClients); err != nil {
		logger.Fatalf("Failed to schedule rate limit pruning: %v", err)
	}
	jobs.Start()

	var mailer service.Mailer
	if cfg.EmailEnabled() {
		mailer = email.NewSender(cfg, logger)
	}

	// Initialize layers
	svc := service.NewService(advisor.NewClient(cfg, logger), cache, rates, mailer, logger)
	h := handler.NewHandler(svc, logger)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.RateLimit(rateLimiter, logger))
	h.Register(r)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
		// advice calls wait on the upstream model
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.OpenAITimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Errorf("Server failed: %v", err)
	case <-quit:
		logger.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}
	jobs.Stop(ctx)

	logger.Info("Server exited")
}
