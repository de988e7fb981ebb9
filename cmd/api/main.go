package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/silvergrain/studio-backend/api/routes"
	"github.com/silvergrain/studio-backend/internal/access"
	"github.com/silvergrain/studio-backend/internal/accounts"
	"github.com/silvergrain/studio-backend/internal/analytics"
	"github.com/silvergrain/studio-backend/internal/contact"
	"github.com/silvergrain/studio-backend/internal/downloads"
	"github.com/silvergrain/studio-backend/internal/engagement"
	"github.com/silvergrain/studio-backend/internal/galleries"
	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/internal/media"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db"
	"github.com/silvergrain/studio-backend/pkg/logger"
	"github.com/silvergrain/studio-backend/pkg/metrics"
	"github.com/silvergrain/studio-backend/pkg/migrate"
	"github.com/silvergrain/studio-backend/pkg/redis"
	"github.com/silvergrain/studio-backend/pkg/storage/s3"
)

const shutdownGrace = 15 * time.Second

func main() {
	startedAt := time.Now()
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
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

	storageClient, err := s3.New(context.Background(), cfg.Storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	identityRepo := identity.NewRepository(gormDB)
	accessRepo := access.NewRepository(gormDB)
	accountsRepo := accounts.NewRepository(gormDB)
	galleriesRepo := galleries.NewRepository(gormDB)
	mediaRepo := media.NewRepository(gormDB)
	engagementRepo := engagement.NewRepository(gormDB)
	analyticsRepo := analytics.NewRepository(gormDB)
	downloadsRepo := downloads.NewRepository(gormDB)
	contactRepo := contact.NewRepository(gormDB)

	resolver, err := identity.NewResolver(identityRepo, identityRepo, cfg.JWT)
	exitOnErr(logg, "identity resolver", err)

	accountsSvc, err := accounts.NewService(accountsRepo, cfg.JWT, cfg.Password, logg)
	exitOnErr(logg, "accounts service", err)

	accessSvc, err := access.NewService(accessRepo, accessRepo, cfg.Guest)
	exitOnErr(logg, "access service", err)

	mediaSvc, err := media.NewService(mediaRepo, galleriesRepo, storageClient, cfg.Media, logg)
	exitOnErr(logg, "media service", err)

	galleriesSvc, err := galleries.NewService(galleriesRepo, mediaSvc)
	exitOnErr(logg, "galleries service", err)

	engagementSvc, err := engagement.NewService(engagementRepo)
	exitOnErr(logg, "engagement service", err)

	analyticsSvc, err := analytics.NewService(analyticsRepo, logg)
	exitOnErr(logg, "analytics service", err)

	downloadsSvc, err := downloads.NewService(downloadsRepo, storageClient)
	exitOnErr(logg, "downloads service", err)

	contactSvc, err := contact.NewService(contactRepo, redisClient, cfg.ContactLimit, logg)
	exitOnErr(logg, "contact service", err)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

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
			Cfg:         cfg,
			Logg:        logg,
			DB:          dbClient,
			Redis:       redisClient,
			Storage:     storageClient,
			Resolver:    resolver,
			HTTPMetrics: httpMetrics,
			Registry:    registry,
			StartedAt:   startedAt,
			Accounts:    accountsSvc,
			Access:      accessSvc,
			Galleries:   galleriesSvc,
			Media:       mediaSvc,
			Engagement:  engagementSvc,
			Analytics:   analyticsSvc,
			Downloads:   downloadsSvc,
			Contact:     contactSvc,
		}),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func exitOnErr(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
