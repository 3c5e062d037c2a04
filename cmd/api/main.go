package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tradelinkhq/tradelink-backend/api/routes"
	"github.com/tradelinkhq/tradelink-backend/internal/catalog"
	"github.com/tradelinkhq/tradelink-backend/internal/inquiries"
	"github.com/tradelinkhq/tradelink-backend/internal/invoices"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/rfq"
	"github.com/tradelinkhq/tradelink-backend/internal/sellers"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/currency"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/metrics"
	"github.com/tradelinkhq/tradelink-backend/pkg/migrate"
	"github.com/tradelinkhq/tradelink-backend/pkg/pdf"
	"github.com/tradelinkhq/tradelink-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	sellerRepo := sellers.NewRepository(conn)
	catalogRepo := catalog.NewRepository(conn)
	inquiryRepo := inquiries.NewRepository(conn)
	rfqRepo := rfq.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)
	invoiceRepo := invoices.NewRepository(conn)

	sellerSvc, err := sellers.NewService(sellerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create seller service", err)
		os.Exit(1)
	}

	catalogSvc, err := catalog.NewService(catalogRepo, dbClient, sellerRepo, catalog.Config{
		LowStockThreshold:     cfg.Stock.LowStockThreshold,
		BasicActiveProductCap: cfg.Quota.BasicActiveProductCap,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	inquirySvc, err := inquiries.NewService(inquiryRepo, catalogRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create inquiry service", err)
		os.Exit(1)
	}

	rfqSvc, err := rfq.NewService(rfqRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rfq service", err)
		os.Exit(1)
	}

	orderSvc, err := orders.NewService(orderRepo, catalogRepo, inquiryRepo, dbClient, orders.Config{
		InvoiceNumberPrefix: cfg.Invoicing.NumberPrefix,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	invoiceSvc, err := invoices.NewService(invoiceRepo, inquiryRepo, catalogRepo, dbClient,
		pdf.PlainRenderer{}, currency.NewFixedRateConverter(nil),
		invoices.Config{NumberPrefix: cfg.Invoicing.NumberPrefix})
	if err != nil {
		logg.Error(context.Background(), "failed to create invoice service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			HTTPMetrics: httpMetrics,
			Registry:    registry,
			Sellers:     sellerSvc,
			Catalog:     catalogSvc,
			Inquiries:   inquirySvc,
			RFQs:        rfqSvc,
			Orders:      orderSvc,
			Invoices:    invoiceSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
