package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/address"
	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/jobs"
	"storefront/internal/payment"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize cache store; an empty Redis address disables caching
	var store cache.Store
	if cfg.Redis.Addr != "" {
		store = cache.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	} else {
		store = cache.NewNoopStore()
		logger.Info().Msg("caching disabled (no Redis address configured)")
	}
	cacheTTL := time.Duration(cfg.Redis.TTL) * time.Second

	// Initialize background job dispatcher; empty brokers disable dispatch
	var dispatcher jobs.Dispatcher
	if cfg.Jobs.Brokers != "" {
		dispatcher = jobs.NewKafkaDispatcher(cfg.Jobs.Brokers, time.Duration(cfg.Jobs.WriteTimeout)*time.Second, logger)
	} else {
		dispatcher = jobs.NewNoopDispatcher(logger)
		logger.Info().Msg("job dispatch disabled (no Kafka brokers configured)")
	}
	defer dispatcher.Close()

	// Initialize postal pattern table with S3 and local fallback
	patterns := address.DefaultPatterns()
	if cfg.Address.PatternFile != "" {
		fileLoader := address.NewFileLoader(logger)
		loader := fileLoader

		if cfg.Address.S3Enabled {
			s3Loader, err := address.NewS3Loader(ctx, cfg.Address.S3Bucket, cfg.Address.S3Region, logger)
			if err != nil {
				logger.Warn().
					Err(err).
					Msg("failed to initialise S3 loader, falling back to local file system only")
			} else {
				loader = address.NewFallbackLoader(s3Loader, fileLoader, cfg.Address.S3Prefix, true, logger)
			}
		}

		loaded, err := loader.Load(ctx, cfg.Address.PatternFile)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("file", cfg.Address.PatternFile).
				Msg("failed to load postal pattern table, using built-in patterns")
		} else {
			patterns = loaded
		}
	}
	addrValidator := address.NewValidator(patterns)

	// Initialize payment gateway and webhook verifier
	gateway := payment.NewStripeGateway(cfg.Payment.SecretKey, logger)
	verifier := payment.NewStripeVerifier(cfg.Payment.WebhookSecret, logger)

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)

	// Initialize services
	productService := service.NewProductService(productRepo, store, cacheTTL, logger)
	cartService := service.NewCartService(cartRepo, productRepo, logger)
	checkoutService := service.NewCheckoutService(
		orderRepo,
		productRepo,
		cartRepo,
		gateway,
		addrValidator,
		dispatcher,
		store,
		service.CheckoutConfig{
			Currency:      cfg.Payment.Currency,
			MinimumAmount: cfg.Payment.MinimumAmount,
		},
		logger,
	)
	orderService := service.NewOrderService(orderRepo, store, cacheTTL, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	cartHandler := handler.NewCartHandler(cartService, logger)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	webhookHandler := handler.NewWebhookHandler(verifier, checkoutService, logger)

	// Initialize router
	mux := router.New(productHandler, cartHandler, checkoutHandler, orderHandler, webhookHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
