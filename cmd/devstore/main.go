package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"CatalogDesk/config"
	"CatalogDesk/internal/catalog"
	"CatalogDesk/internal/devstore"
	"CatalogDesk/pkg/kit"
)

func main() {
	service := "devstore"
	cfg := config.MustLoad()

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var seed []catalog.Product
	if cfg.DevStore.Seed {
		seed = devstore.SampleProducts()
	}

	var store devstore.Store
	if cfg.DevStore.DatabaseURL == "" {
		log.Info("using in-memory store", zap.Int("seeded", len(seed)))
		store = devstore.NewMemStore(seed...)
	} else {
		db := mustOpenPostgres(ctx, cfg.DevStore.DatabaseURL, log)
		defer func() { _ = db.Close() }()

		pg := devstore.NewPostgresStore(db)
		if err := pg.SeedIfEmpty(ctx, seed); err != nil {
			log.Fatal("seed failed", zap.Error(err))
		}
		store = pg
	}

	reg := prometheus.NewRegistry()
	h := devstore.NewHandler(&devstore.Server{Store: store, Log: log}, devstore.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(ctx, cfg.DevStore.Addr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func mustOpenPostgres(ctx context.Context, url string, log *zap.Logger) *sql.DB {
	db, err := devstore.OpenPostgres(ctx, url)
	if err != nil {
		log.Fatal("database unavailable", zap.Error(err))
	}
	if err := devstore.Migrate(db, log.Named("migrate")); err != nil {
		_ = db.Close()
		log.Fatal("migrations failed", zap.Error(err))
	}
	return db
}
