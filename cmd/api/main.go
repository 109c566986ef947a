// Package main is the entrypoint for the fooddeliveringBackend API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/app"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/auth"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/cache"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/config"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/handler"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/metrics"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/middleware"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/server"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/service"
	"github.com/PraneethKulukuri26/fooddeliveringBackend/internal/storage"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize store
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to open store",
			slog.String("driver", cfg.StoreDriver),
			slog.String("error", app.SanitizeError(err, cfg.DatabaseURL, cfg.MongoURI)),
			slog.String("database_url", app.RedactURL(cfg.DatabaseURL)),
			slog.String("mongo_uri", app.RedactURL(cfg.MongoURI)),
		)
		os.Exit(1)
	}
	logger.Info("store ready", "driver", cfg.StoreDriver)

	// Initialize cache (optional)
	var (
		cacheClient   *cache.Cache
		userCache     service.UserCache
		donationCache service.DonationCache
		cacheHealth   handler.HealthChecker
		limiter       middleware.Limiter
	)
	if cfg.HasRedis() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL,
			cache.WithKeyPrefix(cfg.RedisKeyPrefix),
			cache.WithPoolSize(cfg.RedisPoolSize),
		)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", app.SanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", app.RedactURL(cfg.RedisURL)),
			)
			_ = store.Close()
			os.Exit(1)
		}
		logger.Info("connected to Redis")
		userCache = cacheClient
		donationCache = cacheClient
		cacheHealth = cacheClient
		limiter = middleware.NewRedisLimiter(cacheClient, cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst)
	} else {
		logger.Warn("REDIS_URL not set, running without cache")
	}

	var localLimiter *middleware.LocalLimiter
	if limiter == nil {
		localLimiter = middleware.NewLocalLimiter(cfg.RateLimitAuthRPS, cfg.RateLimitAuthBurst, time.Minute)
		limiter = localLimiter
	}

	// Initialize metrics
	recorder := metrics.NewNoop()
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(reg)
		metricsHandler = metrics.Handler(reg)
	}

	// Initialize uploads
	images, err := storage.NewLocal(cfg.UploadsDir)
	if err != nil {
		logger.Error("failed to prepare uploads directory", "dir", cfg.UploadsDir, "error", err)
		os.Exit(1)
	}

	// Initialize auth
	tokens, err := auth.NewTokenIssuer(cfg.SecretKey, cfg.JWTAlgorithm, cfg.AccessTokenTTL())
	if err != nil {
		logger.Error("failed to create token issuer", "error", err)
		os.Exit(1)
	}
	if cfg.IsProduction() && cfg.SecretKey == "change-me" {
		logger.Warn("SECRET_KEY is the default value; set a real secret in production")
	}
	google := auth.NewGoogleProvider(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURI:  cfg.GoogleRedirectURI,
	})
	if !cfg.GoogleConfigured() {
		logger.Warn("GOOGLE_CLIENT_ID not set, Google sign-in is disabled")
	}

	// Initialize services
	itemService := service.NewItemService(store, recorder)
	authService := service.NewAuthService(store, google, tokens, userCache, recorder)
	userService := service.NewUserService(store, userCache, recorder)
	donationService := service.NewDonationService(store, images, donationCache, recorder)

	// Setup router
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:           logger,
		Items:            itemService,
		Auth:             authService,
		Users:            userService,
		Donations:        donationService,
		Store:            store,
		Cache:            cacheHealth,
		Uploads:          images.Handler(),
		Recorder:         recorder,
		MetricsHandler:   metricsHandler,
		Limiter:          limiter,
		RateLimitEnabled: cfg.RateLimitAuthEnabled,
		CORS:             corsCfg,
		IsDevelopment:    cfg.IsDevelopment(),
		MaxBodySize:      cfg.MaxRequestBodySize,
		MaxUploadSize:    cfg.MaxUploadSize,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// Closed in reverse order: limiter, cache, then store.
	srv.OnShutdown("store", func(context.Context) error { return store.Close() })
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error { return cacheClient.Close() })
	}
	if localLimiter != nil {
		srv.OnShutdown("rate_limiter", func(context.Context) error {
			localLimiter.Stop()
			return nil
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", cfg.StoreDriver,
		"redis", cfg.HasRedis(),
		"metrics", cfg.MetricsEnabled,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
