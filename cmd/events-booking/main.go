package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventsBooking/internal/booking"
	"eventsBooking/internal/config"
	"eventsBooking/internal/http-server/handlers/booking/createBooking"
	"eventsBooking/internal/http-server/handlers/event/createEvent"
	"eventsBooking/internal/http-server/handlers/event/getEvent"
	"eventsBooking/internal/http-server/handlers/event/listEvents"
	"eventsBooking/internal/http-server/handlers/pages/catalog"
	"eventsBooking/internal/http-server/handlers/pages/eventPage"
	"eventsBooking/internal/http-server/handlers/pages/success"
	"eventsBooking/internal/http-server/handlers/webhook/paymentWebhook"
	"eventsBooking/internal/http-server/middleware/mwauth"
	"eventsBooking/internal/http-server/middleware/mwlogger"
	"eventsBooking/internal/http-server/middleware/mwmetrics"
	"eventsBooking/internal/http-server/middleware/mwratelimit"
	"eventsBooking/internal/lib/api/response"
	"eventsBooking/internal/lib/dedup"
	"eventsBooking/internal/lib/kafka"
	"eventsBooking/internal/lib/logger/handlers/slogpretty"
	"eventsBooking/internal/lib/logger/sl"
	"eventsBooking/internal/lib/metrics"
	"eventsBooking/internal/payment"
	"eventsBooking/internal/storage/postgres"
	"eventsBooking/internal/web"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"

	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting events booking", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	storage, err := postgres.New(ctx, cfg.Store)
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		log.Warn("events database is not configured, serving setup hints", sl.Err(err))
	case err != nil:
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if cfg.Store.AutoMigrate && err == nil {
		if err = storage.Migrate(ctx); err != nil {
			log.Error("failed to apply schema", sl.Err(err))
			os.Exit(1)
		}
		log.Info("schema applied")
	}

	if err = cfg.Stripe.CheckoutReady(); err != nil {
		log.Warn("checkout disabled", sl.Err(err))
	}
	if err = cfg.Stripe.WebhookReady(); err != nil {
		log.Warn("payment webhook disabled", sl.Err(err))
	}

	deduplicator, closeRedis := setupDedup(ctx, log, cfg.Redis)
	defer closeRedis()

	publisher, closeKafka := setupPublisher(log, cfg.Kafka)
	defer closeKafka()

	provider := payment.New(cfg.Stripe)
	bookings := booking.New(log, storage, provider, deduplicator, publisher, cfg.AppURL)
	renderer := web.MustNew()
	limiter := mwratelimit.NewLimiter(cfg.HTTPServer.RateLimit, cfg.HTTPServer.RateBurst)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mwlogger.New(log))
	router.Use(mwmetrics.New())
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Get("/", catalog.New(log, storage, renderer, cfg.HTTPServer.CatalogTimeout))
	router.Get("/events/{id}", eventPage.New(log, storage, renderer))
	router.Get("/success", success.New(log, renderer))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := storage.Ping(r.Context()); err != nil {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}
		render.JSON(w, r, response.OK())
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/events", listEvents.New(log, storage))
		r.Get("/events/{id}", getEvent.New(log, storage))
		r.With(mwauth.Required(log, cfg.Auth.JWTSecret)).
			Post("/events", createEvent.New(log, storage))

		r.With(limiter.Middleware(log), mwauth.Optional(log, cfg.Auth.JWTSecret)).
			Post("/bookings", createBooking.New(log, bookings))

		webhook := paymentWebhook.New(log, provider, bookings)
		r.Post("/webhooks/payment-provider", webhook)
		r.Post("/webhooks/stripe", webhook)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("application stopping")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		every(gctx, time.Minute, limiter.Cleanup)
		return nil
	})

	if cfg.Booking.PendingTTL > 0 {
		g.Go(func() error {
			every(gctx, cfg.Booking.SweepInterval, func() {
				n, err := storage.ExpirePendingBookings(gctx, cfg.Booking.PendingTTL)
				if err != nil {
					log.Error("failed to expire pending bookings", sl.Err(err))
					return
				}
				if n > 0 {
					metrics.TrackExpired(n)
					log.Info("expired pending bookings", slog.Int64("count", n))
				}
			})
			return nil
		})
	}

	if err = g.Wait(); err != nil {
		log.Error("server stopped with error", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}
}

func every(ctx context.Context, d time.Duration, fn func()) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

func setupDedup(ctx context.Context, log *slog.Logger, cfg config.Redis) (booking.Deduplicator, func()) {
	if cfg.Addr == "" {
		log.Info("redis not configured, webhook dedup relies on booking state")
		return dedup.Noop{}, func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis unreachable, claims will fall back to booking state", sl.Err(err))
	}

	return dedup.New(client, cfg.DedupTTL), func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close redis client", sl.Err(err))
		}
	}
}

func setupPublisher(log *slog.Logger, cfg config.Kafka) (booking.Publisher, func()) {
	if len(cfg.Brokers) == 0 {
		return kafka.Noop{}, func() {}
	}

	sp, err := kafka.NewSyncProducer(cfg)
	if err != nil {
		log.Warn("kafka unavailable, booking events will not be published", sl.Err(err))
		return kafka.Noop{}, func() {}
	}

	log.Info("kafka producer connected", slog.Any("brokers", cfg.Brokers))

	p := kafka.New(sp, cfg.Topic, log)

	return p, func() {
		if err := p.Close(); err != nil {
			log.Error("failed to close kafka producer", sl.Err(err))
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
