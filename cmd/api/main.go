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

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/inventory"
	"github.com/example/storefront/internal/infrastructure/kafka"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/payment"
	"github.com/example/storefront/internal/pricing"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Info().
		Str("http_addr", cfg.HTTPAddr).
		Strs("kafka_brokers", cfg.Brokers()).
		Str("kafka_topic", cfg.KafkaTopic).
		Float64("tax_rate", cfg.TaxRate).
		Msg("starting storefront api")

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer db.Close()

	if err := store.Migrate(db, "migrations"); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}
	logger.Info().Msg("connected to postgres, schema up to date")

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to connect to redis")
	}

	producer := kafka.NewProducer(cfg.Brokers(), cfg.KafkaTopic)
	defer producer.Close()

	// Repositories
	userCarts := store.NewPostgresCartRepository(db)
	guestCarts := store.NewRedisCartRepository(redisClient, time.Duration(cfg.GuestCartTTLHours)*time.Hour)
	catalogRepo := store.NewPostgresCatalogRepository(db)
	inventoryStore := store.NewPostgresInventoryStore(db)
	orderRepo := store.NewPostgresOrderRepository(db)
	addressRepo := store.NewPostgresAddressRepository(db)

	// Domain services
	cartSvc := cart.NewService(userCarts, guestCarts, logger)
	verifier := inventory.NewVerifier(inventoryStore)
	coordinator := payment.NewCoordinator(
		payment.NewCardGateway(cfg.CardGatewayURL, cfg.CardGatewayKey),
		payment.NewWalletGateway(cfg.WalletGatewayURL, cfg.WalletGatewayKey, "paypal"),
	)

	pricingCfg := pricing.Config{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}

	pipeline := checkout.NewPipeline(orderRepo, inventoryStore, cartSvc, producer, logger)
	machine := checkout.NewMachine(cartSvc, verifier, coordinator, addressRepo, pipeline, pricingCfg, cfg.Currency, logger)

	router := api.NewRouter(api.RouterConfig{
		Cart:      api.NewCartHandlers(cartSvc, catalogRepo, pricingCfg),
		Checkout:  api.NewCheckoutHandlers(machine),
		Orders:    api.NewOrderHandlers(orderRepo),
		Address:   api.NewAddressHandlers(addressRepo),
		Validator: auth.NewValidator(cfg.JWTSecret),
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server started")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
