package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mstern/restockwatch/config"
	"mstern/restockwatch/internal/checker"
	"mstern/restockwatch/internal/renderer"
	"mstern/restockwatch/internal/watch"
	"mstern/restockwatch/logger"
	"mstern/restockwatch/services/cache"
	"mstern/restockwatch/services/publisher"
	"mstern/restockwatch/services/worker"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Load and validate configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("environment", cfg.Environment).
		Dur("check_interval", cfg.CheckInterval).
		Msg("Starting application")

	// Load the watchlist
	products, err := watch.LoadWatchlist(cfg.WatchlistFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load watchlist")
	}
	log.Info().
		Int("product_count", len(products)).
		Str("file", cfg.WatchlistFile).
		Msg("Loaded watchlist")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	// Create the renderer pool and check orchestrator
	pool := renderer.NewPool(renderer.DefaultFactory(cfg.ChromeHeadless))
	defer pool.Close()

	chk := checker.New(pool, services.Cache, checker.Options{
		UserAgent:       cfg.UserAgent,
		SettleDelay:     cfg.SettleDelay,
		FailureCooldown: cfg.FailureCooldown,
	})

	// Create and start worker
	w := worker.NewWorker(
		chk,
		services.Publisher,
		products,
		cfg.CheckInterval,
		cfg.InterCheckDelay,
	)

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting restock worker")
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker error
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		<-workerDone
	case err := <-workerDone:
		if err != nil {
			log.Error().Err(err).Msg("Worker exited with error")
		} else {
			log.Info().Msg("Worker exited normally")
		}
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down gracefully...")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
	}
}

// initializeServices initializes all required services
func initializeServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	services := &Services{}

	// Initialize cache service
	cacheService := cache.NewMemcacheService(cfg.MemcacheAddr)
	if cacheService == nil {
		return nil, fmt.Errorf("failed to create cache service")
	}
	services.Cache = cacheService

	logger.Info("Connected to Memcache at %s", cfg.MemcacheAddr)

	// Initialize publisher
	redisPublisher := publisher.NewRedisPublisher(
		ctx,
		cfg.RedisAddr,
		cfg.RedisDB,
		cfg.RedisStream,
		cfg.RedisStreamMaxLen,
	)
	if redisPublisher == nil {
		return nil, fmt.Errorf("failed to create redis publisher")
	}
	services.Publisher = redisPublisher

	logger.Info("Connected to Redis at %s (DB: %d, Stream: %s)",
		cfg.RedisAddr, cfg.RedisDB, cfg.RedisStream)

	return services, nil
}
