// Package app wires the whole service together: configuration, database,
// domain services, HTTP surface, background jobs and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shubhanshu-a32/katelog/internal/api"
	"github.com/shubhanshu-a32/katelog/internal/domain/checkout"
	"github.com/shubhanshu-a32/katelog/internal/domain/delivery"
	"github.com/shubhanshu-a32/katelog/internal/domain/shipping"
	"github.com/shubhanshu-a32/katelog/internal/invoice"
	"github.com/shubhanshu-a32/katelog/internal/jobs"
	"github.com/shubhanshu-a32/katelog/internal/notify"
	"github.com/shubhanshu-a32/katelog/internal/storage/postgres"
	"github.com/shubhanshu-a32/katelog/pkg/health"
	"github.com/shubhanshu-a32/katelog/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Repositories.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	offerRepo := postgres.NewOfferRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	analyticsRepo := postgres.NewAnalyticsRepository(pool)
	checkoutStore := postgres.NewCheckoutStore(pool)

	// Notification pipeline: Kafka when brokers are configured, logs otherwise.
	var sender notify.Sender
	if len(cfg.Notify.KafkaBrokers) > 0 {
		kafkaSender := notify.NewKafkaSender(cfg.Notify.KafkaBrokers, cfg.Notify.Topic)
		defer func() { _ = kafkaSender.Close() }()
		sender = kafkaSender
	} else {
		sender = notify.NewLogSender(lg.Named("notify"))
	}
	dispatcher := notify.NewDispatcher(sender, lg.Named("notify"), cfg.Notify.QueueSize, cfg.Notify.Workers)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Domain services.
	checkoutSvc := checkout.NewService(productRepo, offerRepo, shipping.ByName(cfg.ShippingPolicy), checkoutStore)
	deliverySvc := delivery.NewService(orderRepo, userRepo, dispatcher)

	// Background jobs.
	expiryJob := jobs.NewOfferExpiryJob(offerRepo, lg)
	if err := expiryJob.Start(cfg.Jobs.OfferExpirySchedule); err != nil {
		return errors.Wrap(err, "start offer expiry job")
	}
	defer expiryJob.Stop()

	// HTTP surface.
	handler := api.NewHandler(checkoutSvc, deliverySvc, orderRepo, analyticsRepo, invoice.TextRenderer{})
	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	handler.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "X-User-ID", "X-User-Role"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
