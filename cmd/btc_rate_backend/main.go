package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/adapters/database/pgsql"
	"github.com/SscSPs/btc_rate_service/internal/adapters/events"
	"github.com/SscSPs/btc_rate_service/internal/adapters/filestore"
	"github.com/SscSPs/btc_rate_service/internal/adapters/ratesource"
	"github.com/SscSPs/btc_rate_service/internal/adapters/redisstore"
	"github.com/SscSPs/btc_rate_service/internal/core/ports"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	"github.com/SscSPs/btc_rate_service/internal/core/services"
	"github.com/SscSPs/btc_rate_service/internal/handlers"
	"github.com/SscSPs/btc_rate_service/internal/middleware"
	"github.com/SscSPs/btc_rate_service/internal/platform/config"
	"github.com/SscSPs/btc_rate_service/internal/utils"
	"github.com/SscSPs/btc_rate_service/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// @title BTC Rate Service API
// @version 1.0
// @description Serves the current BTC price in UAH to registered users.

// @host localhost:8000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisstore.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		logger.Info("Redis connection established.")
	}

	repos, closeRepos, err := setupRepositories(ctx, cfg, redisClient, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	var publisher ports.EventPublisher
	if redisClient != nil {
		wp, err := events.NewRedisStreamPublisher(redisClient, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := wp.Close(); cerr != nil {
				logger.Warn("Failed to close event publisher", slog.String("error", cerr.Error()))
			}
		}()
		publisher = wp
	}

	httpClient := ratesource.NewHTTPClient(cfg.RateFetchTimeout, cfg.RateMaxRedirects)
	fetchers := []services.RateSourceConfig{
		{Fetcher: ratesource.NewBitstampTicker(cfg.BTCUSDURL, httpClient), Interval: cfg.BTCUSDInterval},
		{Fetcher: ratesource.NewXEConverterPage(cfg.USDUAHURL, cfg.USDUAHClassTokens, httpClient), Interval: cfg.USDUAHInterval},
	}

	container, err := services.NewServiceContainer(cfg, repos, fetchers, publisher, logger)
	if err != nil {
		return err
	}
	container.RateCache.Start(ctx)
	defer container.RateCache.Stop()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, cors)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), corsMiddleware(cfg))

	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}

	if err := handlers.RegisterRoutes(r, cfg, container, posthogClient); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Gracefully shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down http server", slog.String("error", err.Error()))
	}
	return nil
}

// setupRepositories opens the configured user store. The returned func releases it.
// Rate snapshots go to Redis when it is configured, otherwise to Postgres when that is the user store.
func setupRepositories(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	repos := portsrepo.RepositoryProvider{}
	closeFn := func() {}

	switch cfg.UserStore {
	case config.UserStorePostgres:
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return repos, closeFn, err
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return repos, closeFn, err
		}
		repos = pgsql.NewRepositoryProvider(pool)
		closeFn = func() { database.ClosePgxPool(pool, logger) }
	case config.UserStoreRedis:
		repos.UserRepo = redisstore.NewUserRepository(redisClient, redisstore.DefaultUsersKey)
	default:
		repos.UserRepo = filestore.NewUserRepository(cfg.UsersFile)
	}

	if redisClient != nil {
		repos.RateSnapshot = redisstore.NewRateSnapshotStore(redisClient, redisstore.DefaultRatesKeyPrefix)
	}

	logger.Info("User store ready", slog.String("store", cfg.UserStore))
	return repos, closeFn, nil
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AddAllowHeaders("Authorization")
	if len(cfg.CORSAllowedOrigins) == 0 || slices.Contains(cfg.CORSAllowedOrigins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	}
	return cors.New(corsConfig)
}
