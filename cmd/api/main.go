package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyatra/travel-booking/internal/app"
	"github.com/voyatra/travel-booking/internal/clock"
	"github.com/voyatra/travel-booking/internal/config"
	"github.com/voyatra/travel-booking/internal/events"
	"github.com/voyatra/travel-booking/internal/obs"
	"github.com/voyatra/travel-booking/internal/payment"
	"github.com/voyatra/travel-booking/internal/storage/postgres"
	transporthttp "github.com/voyatra/travel-booking/internal/transport/http"
	"github.com/voyatra/travel-booking/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		obs.NewLogger("dev").Error("load config", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("parse database url", "error", err)
		os.Exit(1)
	}
	poolCfg.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(startupCtx, poolCfg)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Error("db ping", "error", err)
		os.Exit(1)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Error("apply migrations", "error", err)
		os.Exit(1)
	}

	var publisher app.EventPublisher
	if cfg.AMQPURL != "" {
		pub, err := events.NewPublisher(cfg.AMQPURL, events.Exchange)
		if err != nil {
			logger.Error("connect to broker", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
	} else {
		logger.Warn("AMQP_URL not set, domain events disabled")
	}

	var gateway app.PaymentGateway
	if cfg.OmisePublicKey != "" && cfg.OmiseSecretKey != "" {
		gw, err := payment.NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			logger.Error("init payment gateway", "error", err)
			os.Exit(1)
		}
		gateway = gw
	} else {
		logger.Warn("Omise keys not set, gateway refunds disabled")
	}

	clk := clock.NewSystem()
	bookingRepo := postgres.NewBookingRepository(pool)
	bookingSvc := app.NewBookingService(bookingRepo, clk, publisher, logger)
	lifecycleRepo := postgres.NewLifecycleRepository(pool)
	lifecycleSvc := app.NewLifecycleService(lifecycleRepo, bookingSvc, gateway, clk, publisher, logger)
	adminRepo := postgres.NewAdminRepository(pool)
	adminSvc := app.NewAdminService(adminRepo, clk)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/bookings", transporthttp.HandleBookings(bookingSvc))
	mux.Handle("/bookings/", transporthttp.HandleBookingSubtree(bookingSvc, lifecycleSvc))
	mux.Handle("/admin/items", transporthttp.HandleAdminItems(adminSvc))
	mux.Handle("/admin/promotions", transporthttp.HandleAdminPromotions(adminSvc))
	mux.Handle("/admin/promotions/", transporthttp.HandleAdminPromotions(adminSvc))
	mux.Handle("/admin/refund-policies", transporthttp.HandleAdminRefundPolicies(adminSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info("api listening", "port", cfg.Port, "env", cfg.Env)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
