package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/coursedesk/payment-order-service/internal/config"
	"github.com/coursedesk/payment-order-service/internal/delivery/http/handlers"
	"github.com/coursedesk/payment-order-service/internal/domain"
	"github.com/coursedesk/payment-order-service/internal/gateway/cashfree"
	"github.com/coursedesk/payment-order-service/internal/gateway/razorpay"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/kafka"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/metrics"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/migrate"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/postgres"
	"github.com/coursedesk/payment-order-service/internal/infrastructure/postgres/repository"
	"github.com/coursedesk/payment-order-service/internal/usecase"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	setupLogger(cfg)

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.OrderDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.OrderDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	// Init kafka publisher for the operational topic
	brokers := []string{fmt.Sprintf("%s:%s", cfg.Kafka.Host, cfg.Kafka.Port)}
	publisher := kafka.NewKafkaPublisher(brokers, cfg.Kafka.OrderTopic)

	// Init metrics
	paymentMetrics := metrics.NewPaymentMetrics()

	// Init order repo
	orderRepo := repository.NewDefaultOrderRepository(db)

	// Init gateway adapters
	gateways := map[string]domain.PaymentGateway{}

	cashfreeClient := cashfree.NewClient(
		cfg.Gateways.Cashfree.BaseURL,
		cfg.Gateways.Cashfree.ClientID,
		cfg.Gateways.Cashfree.ClientSecret,
		cfg.Gateways.Cashfree.WebhookSecret,
	)
	gateways[cashfreeClient.Name()] = cashfreeClient

	razorpayClient := razorpay.NewClient(
		cfg.Gateways.Razorpay.BaseURL,
		cfg.Gateways.Razorpay.ClientID,
		cfg.Gateways.Razorpay.ClientSecret,
		cfg.Gateways.Razorpay.WebhookSecret,
	)
	gateways[razorpayClient.Name()] = razorpayClient

	defaultGateway, ok := gateways[cfg.Gateways.Default]
	if !ok {
		log.Fatalf("unknown default gateway: %s", cfg.Gateways.Default)
	}

	// Init usecases
	orderUsecase := usecase.NewDefaultOrderUsecase(orderRepo, defaultGateway, publisher)
	webhookUsecase := usecase.NewDefaultWebhookUsecase(orderRepo, gateways, publisher, paymentMetrics)
	reconcileUsecase := usecase.NewDefaultReconcileUsecase(
		orderRepo,
		defaultGateway,
		publisher,
		paymentMetrics,
		cfg.Reconciler.PendingAge,
		cfg.Reconciler.BatchSize,
	)

	// HTTP delivery
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase)
	orderHandler := handlers.NewOrderHandler(orderUsecase, reconcileUsecase)
	router := handlers.NewRouter(webhookHandler, orderHandler)

	// Background sweep for orders whose webhook never arrived
	if cfg.Reconciler.Enabled {
		go func() {
			ticker := time.NewTicker(cfg.Reconciler.Interval)
			defer ticker.Stop()

			for {
				<-ticker.C
				if err := reconcileUsecase.ReconcileStalePending(context.Background()); err != nil {
					slog.Error("stale pending sweep failed", "error", err.Error())
				}
			}
		}()
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	slog.Info("http server started", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("failed to serve: %v\n", err)
	}
}

func setupLogger(cfg *config.PaymentConfig) {
	var level slog.Level
	switch cfg.LogConfig.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.LogConfig.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
