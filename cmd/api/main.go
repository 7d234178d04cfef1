package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/inkshelf/inkshelf-backend/api/routes"
	"github.com/inkshelf/inkshelf-backend/internal/ebooks"
	"github.com/inkshelf/inkshelf-backend/internal/payments"
	"github.com/inkshelf/inkshelf-backend/internal/payouts"
	"github.com/inkshelf/inkshelf-backend/internal/revenue"
	"github.com/inkshelf/inkshelf-backend/internal/sales"
	"github.com/inkshelf/inkshelf-backend/internal/vendors"
	"github.com/inkshelf/inkshelf-backend/pkg/config"
	"github.com/inkshelf/inkshelf-backend/pkg/db"
	"github.com/inkshelf/inkshelf-backend/pkg/logger"
	"github.com/inkshelf/inkshelf-backend/pkg/migrate"
	"github.com/inkshelf/inkshelf-backend/pkg/outbox"
	"github.com/inkshelf/inkshelf-backend/pkg/redis"
	"github.com/inkshelf/inkshelf-backend/pkg/stripe"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(cfg.DB)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(gdb), logg)

	vendorRepo := vendors.NewRepository(gdb)
	payoutRepo := payouts.NewRepository(gdb)
	ebookRepo := ebooks.NewRepository(gdb)
	saleRepo := sales.NewRepository(gdb)
	revenueRepo := revenue.NewRepository(gdb)

	vendorService, err := vendors.NewService(
		dbClient,
		vendorRepo,
		payoutRepo,
		vendors.NewStripeOnboardingClient(stripeClient),
		outboxSvc,
		logg,
		cfg.Stripe,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}

	ebookService, err := ebooks.NewService(ebookRepo, vendorRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ebook service", err)
		os.Exit(1)
	}

	saleService, err := sales.NewService(dbClient, saleRepo, outboxSvc, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create sale service", err)
		os.Exit(1)
	}

	payoutService, err := payouts.NewService(
		dbClient,
		payoutRepo,
		payouts.NewStripeTransferClient(stripeClient),
		outboxSvc,
		logg,
		cfg.Settlement,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payout service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(ebookRepo, vendorRepo, payments.NewStripeIntentClient(stripeClient), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	revenueService, err := revenue.NewService(revenueRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create revenue service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			vendorService,
			ebookService,
			saleService,
			payoutService,
			paymentService,
			revenueService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
