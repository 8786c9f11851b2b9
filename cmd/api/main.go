package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rehabnet/rehabtracking/backend/internal/adapters/cache"
	"github.com/rehabnet/rehabtracking/backend/internal/adapters/database"
	"github.com/rehabnet/rehabtracking/backend/internal/api/handlers"
	"github.com/rehabnet/rehabtracking/backend/internal/api/routes"
	"github.com/rehabnet/rehabtracking/backend/internal/application/services"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/providers"
	"github.com/rehabnet/rehabtracking/backend/internal/domain/repositories"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/postgres"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/clients/redis"
	"github.com/rehabnet/rehabtracking/backend/internal/infrastructure/observability"
	"github.com/rehabnet/rehabtracking/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	var shutdown func(context.Context) error
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err = observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized successfully")

	// Initialize Redis client. The service still works without it; history
	// reads just skip the cache.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without caching")
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	exerciseAdapter := database.NewExerciseAdapter(pgClient)
	patientAdapter := database.NewPatientAdapter(pgClient)
	profileAdapter := database.NewRehabProfileAdapter(pgClient)

	baseLogAdapter := database.NewProgressLogAdapter(pgClient)
	var logAdapter repositories.ProgressLogRepository
	if cacheProvider != nil {
		logAdapter = database.NewCachedProgressLogAdapter(baseLogAdapter, cacheProvider, metrics)
		log.Info().Msg("progress log adapter wrapped with caching layer")
	} else {
		logAdapter = baseLogAdapter
		log.Warn().Msg("progress log adapter running without cache (Redis unavailable)")
	}

	// Initialize services
	progressService := services.NewProgressService(logAdapter, patientAdapter, exerciseAdapter, metrics)
	exerciseService := services.NewExerciseService(exerciseAdapter, progressService, metrics)
	patientService := services.NewPatientService(patientAdapter, profileAdapter, exerciseAdapter, logAdapter)

	// Initialize handlers
	exerciseHandler := handlers.NewExerciseHandler(exerciseService, patientService)
	progressHandler := handlers.NewProgressHandler(progressService, patientService)
	patientHandler := handlers.NewPatientHandler(patientService, patientService)

	// Set up router
	router := routes.NewRouter(
		exerciseHandler,
		progressHandler,
		patientHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
