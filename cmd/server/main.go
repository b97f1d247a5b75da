package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/linkdrop/internal/api"
	"github.com/eldtechnologies/linkdrop/internal/api/middleware"
	"github.com/eldtechnologies/linkdrop/internal/config"
	"github.com/eldtechnologies/linkdrop/internal/handlers"
	"github.com/eldtechnologies/linkdrop/internal/notify"
	"github.com/eldtechnologies/linkdrop/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	} else {
		logger.Warn().Str("level", cfg.LogLevel).Msg("unknown LOG_LEVEL, using info")
		logger = logger.Level(zerolog.InfoLevel)
	}

	ctx := context.Background()

	// Initialize store: Redis when configured, in-memory otherwise
	var kv store.KV
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisStore.Close()
		kv = redisStore
		redisClient = redisStore.Client()
		logger.Info().Msg("connected to Redis")
	} else {
		kv = store.NewMemoryStore()
		logger.Warn().Msg("REDIS_URL not set, using in-memory store; data is lost on restart")
	}

	if cfg.BotToken() == "" {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN not set, topic closed confirmations will fail")
	}
	sender := notify.NewTelegramSender(cfg.BotToken, cfg.TelegramAPIEndpoint)

	h := handlers.NewHandler(kv, sender, logger, handlers.Options{
		TopicClosedTTL:      cfg.TopicClosedTTL,
		ConfirmationMessage: cfg.ConfirmationMessage,
	})

	// Create router
	router := api.NewRouter(logger, h, redisClient, api.RouterConfig{
		MaxBodyBytes: cfg.MaxBodyBytes,
		RateLimit:    middleware.RateLimiterConfig{Whitelist: cfg.RateLimitWhitelist},
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting linkdrop server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	// Graceful shutdown with 30 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
