package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/sahanr/harvestlink/internal"
	"github.com/sahanr/harvestlink/internal/billing"
	"github.com/sahanr/harvestlink/internal/carrier"
	"github.com/sahanr/harvestlink/internal/email"
	"github.com/sahanr/harvestlink/internal/events"
	"github.com/sahanr/harvestlink/internal/geo"
	"github.com/sahanr/harvestlink/internal/handler"
	"github.com/sahanr/harvestlink/internal/middleware"
	"github.com/sahanr/harvestlink/internal/postgres"
	"github.com/sahanr/harvestlink/internal/router"
	"github.com/sahanr/harvestlink/internal/service"
	"github.com/sahanr/harvestlink/internal/shipping"
	"github.com/sahanr/harvestlink/internal/worker"

	payoutprovider "github.com/sahanr/harvestlink/internal/payout"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := postgres.NewPool(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize stores
	orderStore := postgres.NewOrderStore(pool)
	catalogStore := postgres.NewCatalogStore(pool)
	notificationStore := postgres.NewNotificationStore(pool)
	recipientStore := postgres.NewRecipientStore(pool)

	// Initialize event publisher and mail worker
	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsUrl != "" {
		logger.Info("Connecting to event bus...", "url", cfg.NatsUrl)
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsUrl, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to event bus: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher

		natsConn, err := nats.Connect(cfg.NatsUrl, nats.Name("harvestlink-mailer"))
		if err != nil {
			return fmt.Errorf("failed to connect mail worker: %w", err)
		}
		defer natsConn.Close()

		sender := email.NewSMTPSender(cfg.Email.Host, cfg.Email.Port,
			cfg.Email.Username, cfg.Email.Password, cfg.Email.From, cfg.Email.FromName)
		mailer := worker.NewMailer(natsConn, sender, logger)
		if err := mailer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start mail worker: %w", err)
		}
		defer mailer.Stop()
	} else {
		logger.Warn("NATS_URL not set, events and transactional email disabled")
	}

	// Initialize geo client and shipping engine
	geoClient := geo.NewOpenRouteClient(cfg.Geo.BaseURL, cfg.Geo.APIKey, cfg.Geo.Timeout)
	engine := shipping.NewEngine(geoClient, shipping.Tiers{
		SameCityCents: cfg.Shipping.SameCityCents,
		NearCents:     cfg.Shipping.NearCents,
		MidCents:      cfg.Shipping.MidCents,
		FarCents:      cfg.Shipping.FarCents,
		NearLimitKm:   cfg.Shipping.NearLimitKm,
		MidLimitKm:    cfg.Shipping.MidLimitKm,
	})

	// Initialize billing provider
	var billingProvider billing.Provider
	switch cfg.Billing.Provider {
	case "paypal":
		billingProvider = billing.NewPayPalProvider(cfg.Billing.PayPalAPI,
			cfg.Billing.PayPalClient, cfg.Billing.PayPalSecret, cfg.Billing.Timeout)
	case "stripe":
		billingProvider = billing.NewStripeProvider(cfg.Billing.StripeKey)
	case "mock":
		billingProvider = billing.NewMockProvider()
	default:
		return fmt.Errorf("unknown billing provider: %s", cfg.Billing.Provider)
	}
	logger.Info("Billing provider initialized", "provider", cfg.Billing.Provider)

	// Initialize carrier and payout providers
	carrierProvider := carrier.NewShipEngineProvider(cfg.Carrier.BaseURL, cfg.Carrier.APIKey,
		cfg.Carrier.CarrierID, cfg.Carrier.ServiceCode, cfg.Carrier.CountryCode, cfg.Carrier.Timeout)
	payoutProvider := payoutprovider.NewPayPalProvider(cfg.Payout.PayPalAPI,
		cfg.Payout.ClientID, cfg.Payout.ClientSecret, cfg.Payout.Timeout)

	// Initialize services
	checkoutService := service.NewCheckoutService(engine)
	orderService := service.NewOrderService(orderStore, checkoutService, billingProvider, carrierProvider, publisher, logger)
	settlementService := service.NewSettlementService(orderStore, payoutProvider, publisher,
		cfg.Payout.ConversionRate, cfg.Payout.SettlementCurrency, logger)
	reviewService := service.NewReviewService(orderStore)
	notificationService := service.NewNotificationService(notificationStore, recipientStore, publisher, logger)
	catalogService := service.NewCatalogService(catalogStore, notificationService, logger)
	logger.Info("Services initialized")

	// Initialize Prometheus metrics
	metrics := middleware.NewMetrics("harvestlink")

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		router.CORS([]string{"*"}),
		router.Logger(logger),
	)

	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	apiHandler := handler.New(checkoutService, orderService, settlementService,
		reviewService, catalogService, notificationService, logger)
	apiHandler.RegisterRoutes(r)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
