package main

import (
	"context"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/servify/backend/config"
	"github.com/servify/backend/internal/auth"
	database "github.com/servify/backend/internal/core"
	"github.com/servify/backend/internal/core/repository"
	"github.com/servify/backend/internal/logger"
	logicv1 "github.com/servify/backend/internal/logic/v1"
	v1 "github.com/servify/backend/internal/web/v1"
	"github.com/servify/backend/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Configuration validation failed: " + err.Error())
	}

	// Initialize Zerolog with LOG_LEVEL from config
	logger.Setup(cfg.Logging.Level)

	log.Info().
		Str("service", cfg.Service.Name).
		Str("version", cfg.Service.Version).
		Str("env", cfg.Service.Env).
		Str("port", cfg.Service.Port).
		Msg("Service starting")

	// Initialize OpenTelemetry tracing
	var tp interface{ Shutdown(context.Context) error }
	var err error
	if cfg.Tracing.Enabled {
		tp, err = middleware.InitTracing(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize tracing")
		} else {
			log.Info().
				Str("endpoint", cfg.Tracing.Endpoint).
				Float64("sample_rate", cfg.Tracing.SampleRate).
				Msg("Tracing initialized")
		}
	} else {
		log.Info().Msg("Tracing disabled (TRACING_ENABLED=false)")
	}

	// Initialize Pyroscope profiling
	if cfg.Profiling.Enabled {
		if err := middleware.InitProfiling(cfg); err != nil {
			log.Warn().Err(err).Msg("Failed to initialize profiling")
		} else {
			log.Info().
				Str("endpoint", cfg.Profiling.Endpoint).
				Msg("Profiling initialized")
			defer middleware.StopProfiling()
		}
	} else {
		log.Info().Msg("Profiling disabled (PROFILING_ENABLED=false)")
	}

	// Apply the declared schema over the non-pooling endpoint
	if err := database.MigrateSchema(context.Background(), cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	// Initialize database connection pool (pgx)
	pool, err := database.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Database connection pool established")

	// Repositories
	users := repository.NewUserRepository(pool)
	sessions := repository.NewSessionRepository(pool)
	accounts := repository.NewAccountRepository(pool)
	metadata := repository.NewUserMetadataRepository(pool)
	providers := repository.NewProviderProfileRepository(pool)
	locations := repository.NewLocationRepository(pool)
	addresses := repository.NewAddressRepository(pool)

	// Identity service: constructed once here, read-only afterwards
	identity, err := auth.New(auth.Config{
		AppName:       "Servify",
		BaseURL:       cfg.Auth.BaseURL,
		ProductionURL: cfg.Auth.ProductionURL,
		Secret:        cfg.Auth.Secret,
		Providers: auth.Providers{
			auth.ProviderDiscord: {
				Enabled:      cfg.Auth.Discord.Enabled,
				ClientID:     cfg.Auth.Discord.ClientID,
				ClientSecret: cfg.Auth.Discord.ClientSecret,
			},
			auth.ProviderApple: {
				Enabled:             cfg.Auth.Apple.Enabled,
				ClientID:            cfg.Auth.Apple.ClientID,
				ClientSecret:        cfg.Auth.Apple.ClientSecret,
				AppBundleIdentifier: cfg.Auth.Apple.AppBundleIdentifier,
				Scopes:              []string{"email", "name"},
			},
			auth.ProviderGoogle: {
				Enabled:      cfg.Auth.Google.Enabled,
				ClientID:     cfg.Auth.Google.ClientID,
				ClientSecret: cfg.Auth.Google.ClientSecret,
				Prompt:       "select_account",
			},
		},
	}, auth.Repositories{
		Users:    users,
		Sessions: sessions,
		Accounts: accounts,
		Metadata: metadata,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize identity service")
	}
	log.Info().
		Strs("trusted_origins", identity.TrustedOrigins()).
		Msg("Identity service initialized")

	// Reclaim expired session rows before taking traffic
	if pruned, err := identity.PruneExpiredSessions(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Failed to prune expired sessions")
	} else if pruned > 0 {
		log.Info().Int64("sessions", pruned).Msg("Expired sessions pruned")
	}

	accountService := logicv1.NewAccountService(users, accounts, metadata, providers, locations, addresses, identity)
	handler := v1.NewHandler(accountService, identity)

	r := gin.Default()

	var isShuttingDown atomic.Bool

	// Tracing middleware
	r.Use(middleware.TracingMiddleware(cfg.Service.Name))

	// Logging middleware
	r.Use(middleware.LoggingMiddleware())

	// Prometheus middleware
	r.Use(middleware.PrometheusMiddleware())

	// Per-request memoized session accessor
	r.Use(middleware.Session(identity))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Readiness check
	// Returns 503 once shutdown has started, to drain traffic before HTTP shutdown.
	r.GET("/ready", func(c *gin.Context) {
		if isShuttingDown.Load() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Metrics endpoint
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth API (fixed callback URL shape: /api/auth/callback/<provider>)
	handler.RegisterRoutes(r.Group("/api/auth"))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Service.Port,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Service.Port).Msg("Starting Servify backend")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Fail readiness first and wait for propagation before HTTP shutdown.
	isShuttingDown.Store(true)
	drainDelay := cfg.GetReadinessDrainDelayDuration()
	if drainDelay > 0 {
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay started")
		time.Sleep(drainDelay)
		log.Info().Dur("delay", drainDelay).Msg("Readiness drain delay completed")
	}

	// Shutdown context with configurable timeout
	shutdownTimeout := cfg.GetShutdownTimeoutDuration()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Dur("timeout", shutdownTimeout).Msg("Shutting down server...")

	// 1. Shutdown HTTP server
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	} else {
		log.Info().Msg("HTTP server shutdown complete")
	}

	// 2. Close database connections
	pool.Close()
	log.Info().Msg("Database pool closed")

	// 3. Shutdown tracer
	if tp != nil {
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Tracer shutdown error")
		} else {
			log.Info().Msg("Tracer shutdown complete")
		}
	}

	log.Info().Msg("Graceful shutdown complete")
}
