package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto-card-shop/internal/client"
	"crypto-card-shop/internal/config"
	"crypto-card-shop/internal/repository"
	"crypto-card-shop/internal/server"
	"crypto-card-shop/internal/service"
	"crypto-card-shop/pkg/logger"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Environment.Name == "development")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := client.InitSqliteClient(client.InMemoryDSN)
	if err != nil {
		log.Fatalw("init database", "err", err)
	}

	cardRepo := repository.NewCardRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	redeemRepo := repository.NewRedeemRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	ctx := context.Background()
	if err := cardRepo.Seed(ctx); err != nil {
		log.Fatalw("seed cards", "err", err)
	}
	if err := redeemRepo.Seed(ctx); err != nil {
		log.Fatalw("seed redeem codes", "err", err)
	}

	gateway := client.NewNowPaymentsClient(&cfg.NowPayments)

	if cfg.NowPayments.IPNSecret == "" {
		log.Warnw("IPN secret not configured, webhook signature verification disabled")
	}

	paymentService := service.NewPaymentService(
		db, gateway, cfg.BaseURL, cfg.NowPayments.IPNSecret,
		cardRepo,
		orderRepo,
		webhookEventRepo,
		log,
	)
	redeemService := service.NewRedeemService(redeemRepo, log)

	srv := server.NewServer(paymentService, redeemService, log)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Infow("starting HTTP server", "addr", serverAddr, "sandbox", cfg.NowPayments.Sandbox)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalw("http server", "err", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Infow("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("http server shutdown", "err", err)
	}
}
