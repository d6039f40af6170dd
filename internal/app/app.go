// Package app wires the order service together: configuration, database,
// domain services, HTTP routes, middleware, and graceful shutdown.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/freshbasket/orderd/internal/domain/auth"
	"github.com/freshbasket/orderd/internal/domain/order"
	"github.com/freshbasket/orderd/internal/domain/report"
	"github.com/freshbasket/orderd/internal/domain/user"
	"github.com/freshbasket/orderd/internal/handler"
	"github.com/freshbasket/orderd/internal/repository"
	"github.com/freshbasket/orderd/pkg/health"
	"github.com/freshbasket/orderd/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health probes.
	probes := health.New()
	probes.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	probes.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	probes.SetReady(true)

	// Repositories.
	orderRepo := repository.NewOrderRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	newsletterRepo := repository.NewNewsletterRepository(pool)
	bannerRepo := repository.NewBannerRepository(pool)

	// Domain services.
	orderService := order.NewService(orderRepo)
	userService := user.NewService(userRepo)
	tokenManager := auth.NewTokenManager([]byte(cfg.TokenSecret), cfg.TokenTTL)
	reportService := report.NewService(orderRepo, userRepo, productRepo)

	// HTTP routes: health endpoints + API routes on one mux.
	h := handler.New(
		orderService,
		userService,
		tokenManager,
		reportService,
		productRepo,
		memberRepo,
		newsletterRepo,
		bannerRepo,
	)
	mux := h.Routes()
	mux.HandleFunc("/livez", probes.LiveEndpoint)
	mux.HandleFunc("/readyz", probes.ReadyEndpoint)

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
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Instrument("orderd-api", m),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		probes.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
