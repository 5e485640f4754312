package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"froid-storefront/internal/asset"
	"froid-storefront/internal/auth"
	"froid-storefront/internal/backend"
	"froid-storefront/internal/cart"
	"froid-storefront/internal/checkout"
	"froid-storefront/internal/config"
	"froid-storefront/internal/database"
	"froid-storefront/internal/events"
	"froid-storefront/internal/handler"
	"froid-storefront/internal/listing"
	"froid-storefront/internal/metrics"
	"froid-storefront/internal/model"
	"froid-storefront/internal/repository"
	"froid-storefront/internal/router"
	"froid-storefront/internal/service"
	"froid-storefront/internal/wishlist"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// purgeInterval is how often expired postgres carts are removed.
const purgeInterval = time.Hour

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
	logger.Info().Msg("starting froid storefront server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Initialize cart storage
	storage, closeStorage, err := newCartStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	client := backend.New(cfg.Backend.BaseURL, cfg.Backend.Timeout, logger, backend.WithObserver(m))

	// Initialize asset resolver with optional S3 existence checks
	var checker asset.Checker
	if cfg.Assets.S3Enabled {
		checker, err = asset.NewS3Checker(ctx, cfg.Assets.S3Bucket, cfg.Assets.S3Region, cfg.Assets.S3Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 checker, serving image URLs unchecked")
			checker = nil
		}
	}
	resolver := asset.NewResolver(cfg.Assets.UploadBaseURL, cfg.Assets.Placeholder, checker, logger)

	// Initialize order event publisher
	publisher := events.NewNopPublisher()
	if cfg.RabbitMQ.Enabled {
		publisher, err = events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize order publisher: %w", err)
		}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close order publisher")
		}
	}()

	sf := cfg.Storefront
	settings := listing.Settings{DefaultPageSize: sf.DefaultPageSize, PageSizes: sf.PageSizeOptions}
	fees := checkout.FeeSchedule{ExpressFee: sf.ExpressFee}
	policy := checkout.Policy{
		GuestCheckout:          sf.Features.GuestCheckout,
		MultiplePaymentMethods: sf.Features.MultiplePaymentMethods,
	}

	carts := cart.NewRegistry(storage, sf.MaxCartQuantity, logger,
		cart.WithMutationHook(m.IncCartMutation),
		cart.WithIdleTimeout(cfg.Cart.IdleTimeout),
	)
	go sweepIdleCarts(ctx, carts)
	views := listing.NewRegistry()
	defer views.CloseAll()

	// Initialize services
	catalogService := service.NewCatalogService(client, resolver, logger)
	cartService := service.NewCartService(carts, catalogService, logger)
	checkoutService := service.NewCheckoutService(carts, client, fees, policy, publisher, m, logger)
	wishlistService := service.NewWishlistService(
		wishlist.NewCache(client, sf.WishlistTTL, logger),
		sf.Features.Wishlist,
		logger,
	)
	listingService := service.NewListingService(catalogService, views, service.ListingOptions{
		Settings: settings,
		Debounce: sf.ListingDebounce,
		OnStale:  m.IncStaleResponse,
	}, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogService, settings, logger),
		Cart:     handler.NewCartHandler(cartService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Wishlist: handler.NewWishlistHandler(wishlistService, logger),
		Listing:  handler.NewListingHandler(listingService, settings, logger),
		Config: handler.Config(handler.StorefrontConfig{
			DefaultPageSize: sf.DefaultPageSize,
			PageSizeOptions: sf.PageSizeOptions,
			MaxCartQuantity: sf.MaxCartQuantity,
			ExpressFee:      sf.ExpressFee,
			DeliveryModes:   []model.DeliveryMode{model.DeliveryHome, model.DeliveryExpress, model.DeliveryPickup},
			PaymentMethods:  policy.PaymentMethods(),
			Features:        sf.Features,
			Placeholder:     cfg.Assets.Placeholder,
		}, logger),
		Metrics: m.Handler(),
	}, router.Options{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		MetricsAPIKey: cfg.Server.MetricsAPIKey,
		SessionTTL:    cfg.Cart.TTL,
		SecureCookies: strings.HasPrefix(cfg.Server.AllowedOrigin, "https://"),
		Verifier:      auth.NewVerifier(cfg.Auth),
	}, logger)

	// Event streams stay open, so no write timeout.
	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           mux,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Str("cart_storage", cfg.Cart.Storage).
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

		// Listing streams return once their view is closed.
		views.CloseAll()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// newCartStorage opens the durable cart storage selected by CART_STORAGE.
// The returned func releases its connections.
func newCartStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (cart.Storage, func(), error) {
	switch cfg.Cart.Storage {
	case "postgres":
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, pool, logger); err != nil {
				pool.Close()
				return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		repo := repository.NewCartRepository(pool, logger)
		go purgeStaleCarts(ctx, repo, cfg.Cart.TTL, logger)
		return repo, pool.Close, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("address", cfg.Redis.Address).Msg("redis connection established")
		return repository.NewRedisCartRepository(client, cfg.Cart.TTL, logger), func() { client.Close() }, nil

	default:
		logger.Warn().Msg("using in-memory cart storage, carts are lost on restart")
		return cart.NewMemoryStorage(), func() {}, nil
	}
}

func purgeStaleCarts(ctx context.Context, repo repository.ExpiringCartRepository, ttl time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := repo.PurgeStale(ctx, now.Add(-ttl))
			if err != nil {
				logger.Error().Err(err).Msg("failed to purge stale carts")
				continue
			}
			if n > 0 {
				logger.Info().Int64("carts", n).Msg("purged stale carts")
			}
		}
	}
}

// sweepIdleCarts evicts idle carts from memory twice per idle timeout.
func sweepIdleCarts(ctx context.Context, carts *cart.Registry) {
	ticker := time.NewTicker(carts.IdleTimeout() / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			carts.Sweep(ctx)
		}
	}
}
