package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/leaatimberini/sucht-backend-sub000/internal/app"
	"github.com/leaatimberini/sucht-backend-sub000/internal/clock"
	"github.com/leaatimberini/sucht-backend-sub000/internal/config"
	"github.com/leaatimberini/sucht-backend-sub000/internal/notify"
	"github.com/leaatimberini/sucht-backend-sub000/internal/payment"
	"github.com/leaatimberini/sucht-backend-sub000/internal/storage/postgres"
	transporthttp "github.com/leaatimberini/sucht-backend-sub000/internal/transport/http"
	"github.com/leaatimberini/sucht-backend-sub000/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.PaymentsOn && cfg.StripeKey == "" {
		logger.Warn().Msg("STRIPE_SECRET_KEY not set, running in free-issuance mode")
		cfg.PaymentsOn = false
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	var processor app.PaymentProcessor
	if cfg.PaymentsOn {
		processor = payment.NewStripeProcessor(cfg.StripeKey, logger)
	}

	var notifier app.Notifier
	if cfg.RabbitURL != "" {
		broker, err := notify.NewBroker(cfg.RabbitURL, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("broker unavailable, notifications disabled")
		} else {
			notifier = broker
			defer broker.Close()
		}
	}

	clk := clock.NewSystem()
	loyaltyRepo := postgres.NewLoyaltyRepository(pool)
	loyalty := app.NewLoyaltyDispatcher(loyaltyRepo, logger)

	ticketRepo := postgres.NewTicketRepository(pool)
	ticketSvc := app.NewTicketService(
		ticketRepo, processor, notifier, loyalty, cfg, clk, logger,
		app.WithReturnURLs(cfg.SuccessURL, cfg.CancelURL),
	)

	redemptionRepo := postgres.NewRedemptionRepository(pool)
	redemptionSvc := app.NewRedemptionService(redemptionRepo, loyalty, notifier, clk, logger)

	adminRepo := postgres.NewAdminRepository(pool)
	adminSvc := app.NewAdminService(adminRepo, clk)

	sweepRepo := postgres.NewSweepRepository(pool)
	sweeper := app.NewSweeper(
		sweepRepo, ticketSvc, clk, logger,
		app.WithSweepInterval(cfg.SweepInterval),
		app.WithConfirmGrace(cfg.ConfirmGrace),
	)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sweeper.Run(sweepCtx)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/purchases", transporthttp.HandleCreatePurchase(ticketSvc))
	mux.Handle("/settlements/webhook", transporthttp.HandleSettlementWebhook(ticketSvc, logger))
	mux.Handle("/tickets/", transporthttp.HandleTickets(redemptionSvc))
	mux.Handle("/admin/events", transporthttp.HandleAdminEvents(adminSvc))
	mux.Handle("/admin/events/", transporthttp.HandleAdminEventSub(adminSvc))
	mux.Handle("/admin/users", transporthttp.HandleAdminUsers(adminSvc))
	mux.Handle("/admin/tickets", transporthttp.HandleAdminIssueTicket(ticketSvc))
	mux.Handle("/admin/tickets/", transporthttp.HandleAdminCancelTicket(ticketSvc))
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	logger.Info().Str("port", cfg.Port).Msg("api listening")

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		logger.Info().Msg("shutdown signal received, stopping server")
	}

	stopSweep()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}
