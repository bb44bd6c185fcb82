package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/suteetoe/storefront/internal/account"
	"github.com/suteetoe/storefront/internal/directory"
	"github.com/suteetoe/storefront/internal/gateway"
	"github.com/suteetoe/storefront/internal/handler"
	"github.com/suteetoe/storefront/internal/middleware"
	"github.com/suteetoe/storefront/internal/model"
	"github.com/suteetoe/storefront/internal/tenancy"
	"github.com/suteetoe/storefront/pkg/database"
	"github.com/suteetoe/storefront/pkg/jwtutil"
	"github.com/suteetoe/storefront/pkg/logger"
	"github.com/suteetoe/storefront/pkg/metrics"
	"github.com/suteetoe/storefront/prometheus"
	"go.uber.org/zap"
)

// rateLimitIdle is how long a client's bucket survives without requests
const rateLimitIdle = 10 * time.Minute

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	log.Info("Starting "+cfg.ServiceName, cfg.LogConfig()...)

	prometheus.InitMetrics(cfg.Metrics.Prefix, prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return err
	}
	if migrate {
		if err := database.MigrateModels(db, model.All()...); err != nil {
			return err
		}
		log.Info("Database migrated")
	}

	var dir directory.Directory = directory.NewRepository(db, cfg.Tenancy.ReservedSubdomains)
	if cfg.Redis.URL != "" {
		client, err := directory.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer func() { _ = client.Close() }()
		dir = directory.NewCached(dir, directory.NewRedisCache(client, cfg.ServiceName, cfg.Redis.TenantCacheTTL))
		log.Info("Tenant cache enabled", zap.Duration("ttl", cfg.Redis.TenantCacheTTL))
	}

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	e := handler.NewRouter(handler.Dependencies{
		ServiceName: cfg.ServiceName,
		DB:          db,
		Directory:   dir,
		Gateway:     gateway.New(db),
		Accounts:    account.NewService(db, jwt, 0),
		Resolver:    tenancy.NewResolver(cfg.Tenancy.RootDomain, cfg.Tenancy.PreviewPathPrefix),
		JWT:         jwt,
		Limiter:     middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, rateLimitIdle),
		Metrics:     metrics.NewHTTPMetrics(cfg.ServiceName, prom.DefaultRegisterer),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("Server error", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, draining connections",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
		return err
	}
	log.Info("Server stopped")
	return nil
}
