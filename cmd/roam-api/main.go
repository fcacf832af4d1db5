// README: Entry point; loads config, wires services, rehydrates the ledger,
// starts the HTTP server and the expiry sweep.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"googlemaps.github.io/maps"

	"roam/internal/config"
	"roam/internal/events"
	httptransport "roam/internal/http"
	"roam/internal/infra"
	"roam/internal/logging"
	"roam/internal/modules/advisor"
	"roam/internal/modules/ledger"
	"roam/internal/modules/location"
	"roam/internal/modules/pricing"
	"roam/internal/modules/reservation"
	"roam/internal/modules/vehicle"
	"roam/internal/payments"
	"roam/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatalw("db init", "error", err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr, cfg.Redis.Password)
	defer func() { _ = redisClient.Close() }()

	var emitter events.Emitter
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaEmitter := events.NewKafkaEmitter(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		defer func() { _ = kafkaEmitter.Close() }()
		emitter = kafkaEmitter
	} else {
		emitter = &events.LogEmitter{Log: logger}
	}

	vehicles := vehicle.NewService(vehicle.NewPGStore(dbPool))

	calc := pricing.NewCalculator(logger, pricing.LongStayDiscount(7, 10))

	ldg := ledger.New()

	var cancelPolicy reservation.CancelPolicy
	if cfg.Reservation.CancelNotice >= 0 {
		cancelPolicy = reservation.MinNoticePolicy(cfg.Reservation.CancelNotice)
	}
	reservations := reservation.NewService(
		reservation.NewPGStore(dbPool), ldg, vehicles, calc,
		reservation.Options{
			Emitter:      emitter,
			HoldTTL:      cfg.Reservation.HoldTTL,
			CancelPolicy: cancelPolicy,
			Logger:       logger,
		},
	)
	// The in-memory ledger is rebuilt from blocking rows before any
	// request can race against it.
	if err := reservations.Rehydrate(ctx); err != nil {
		logger.Fatalw("ledger rehydrate", "error", err)
	}

	hub := ws.NewHub(logger)
	go hub.Run()

	var geocoder *maps.Client
	if cfg.Maps.APIKey != "" {
		geocoder, err = maps.NewClient(maps.WithAPIKey(cfg.Maps.APIKey))
		if err != nil {
			logger.Warnw("maps client init failed, address lookups disabled", "error", err)
		}
	}
	locations := location.NewService(
		location.NewRedisPGStore(dbPool, redisClient),
		location.ServiceOptions{
			HistoryBound: cfg.Location.HistoryBound,
			Hub:          hub,
			Geocoder:     geocoder,
			Logger:       logger,
		},
	)

	var rateAdvisor *advisor.Advisor
	if cfg.Gemini.APIKey != "" {
		rateAdvisor, err = advisor.New(ctx, cfg.Gemini.APIKey)
		if err != nil {
			logger.Warnw("advisor init failed, suggestions disabled", "error", err)
		} else {
			defer rateAdvisor.Close()
		}
	}

	var deposits *payments.StripeClient
	if cfg.Stripe.APIKey != "" {
		deposits = payments.NewStripeClient(cfg.Stripe.APIKey)
	}

	sweeper := reservation.NewSweeper(reservations, cfg.Reservation.SweepSchedule, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatalw("sweep start", "error", err)
	}
	defer sweeper.Stop()

	router := httptransport.NewRouter(httptransport.Deps{
		Reservations:        reservations,
		Vehicles:            vehicles,
		Locations:           locations,
		Ledger:              ldg,
		Advisor:             rateAdvisor,
		Deposits:            deposits,
		Hub:                 hub,
		JWTSecret:           cfg.Auth.JWTSecret,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
		Logger:              logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Infow("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("serve", "error", err)
	}
}
