package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/linkdrop/internal/api/middleware"
	"github.com/eldtechnologies/linkdrop/internal/handlers"
)

// RouterConfig holds the router's tunables.
type RouterConfig struct {
	MaxBodyBytes int64
	RateLimit    middleware.RateLimiterConfig
}

// NewRouter creates and configures the HTTP router. redisClient may be nil,
// in which case the read API is not rate limited.
func NewRouter(logger zerolog.Logger, h *handlers.Handler, redisClient *redis.Client, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)
	if cfg.MaxBodyBytes > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	}

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.Root)
	r.Get("/health", h.Health)

	// Telegram delivers updates here
	r.Post("/webhook", h.Webhook)

	// Read API
	r.Group(func(r chi.Router) {
		r.Use(middleware.ValidateRequest)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "OPTIONS"},
			AllowedHeaders:   []string{"Accept"},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		links, topic := r, r
		if redisClient != nil {
			limiter := middleware.NewRateLimiter(redisClient, logger, cfg.RateLimit)
			links = r.With(limiter.Limit("links"))
			topic = r.With(limiter.Limit("topic"))
		}

		links.Get("/chats/{id}/links", h.ChatLinks)
		topic.Get("/chats/{id}/topic", h.TopicStatus)
	})

	return r
}
