package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/middleware"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
)

const (
	defaultMaxBodySize   = 1 << 20
	defaultMaxUploadSize = 10 << 20
)

// RouterConfig holds the dependencies wired into the HTTP router.
type RouterConfig struct {
	Logger *slog.Logger

	Items     *service.ItemService
	Auth      *service.AuthService
	Users     *service.UserService
	Donations *service.DonationService

	// Store and Cache back /readyz. Cache may be nil.
	Store HealthChecker
	Cache HealthChecker

	// Uploads serves /uploads/*.
	Uploads http.Handler

	Recorder metrics.Recorder
	// MetricsHandler serves /metrics. Nil disables the endpoint.
	MetricsHandler http.Handler

	// Limiter rate limits the auth POST routes per client IP.
	Limiter          middleware.Limiter
	RateLimitEnabled bool

	CORS          middleware.CORSConfig
	IsDevelopment bool

	// Body limits in bytes. Zero selects the defaults.
	MaxBodySize   int64
	MaxUploadSize int64
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Recorder
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = defaultMaxUploadSize
	}

	h := New()
	healthHandler := NewHealthHandler(cfg.Store, cfg.Cache, logger)
	itemHandler := NewItemHandler(cfg.Items, logger)
	authHandler := NewAuthHandler(cfg.Auth, cfg.Users, logger)
	donationHandler := NewDonationHandler(cfg.Donations, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(cfg.CORS))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Get("/", h.Hello)

	if cfg.Uploads != nil {
		r.Method(http.MethodGet, "/uploads/*", cfg.Uploads)
	}

	authMW := middleware.Auth(middleware.AuthConfig{
		Logger:        logger,
		Authenticator: cfg.Auth,
	})
	bodyLimit := middleware.MaxBodySize(cfg.MaxBodySize)

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.LoginURL)
		r.Get("/callback", authHandler.Callback)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
				Logger:  logger,
				Limiter: cfg.Limiter,
				Enabled: cfg.RateLimitEnabled,
				Scope:   "auth",
			}))
			r.Use(bodyLimit)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/google", authHandler.Google)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/me", authHandler.Me)
			r.With(bodyLimit).Patch("/me", authHandler.UpdateMe)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/items", func(r chi.Router) {
			r.Get("/", itemHandler.List)
			r.With(bodyLimit).Post("/", itemHandler.Create)
			r.Get("/{id}", itemHandler.Get)
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", donationHandler.List)
			r.With(
				middleware.MaxBodySize(cfg.MaxUploadSize),
				authMW,
				middleware.RequireDonor(),
			).Post("/", donationHandler.Create)
			r.Get("/{id}", donationHandler.Get)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
