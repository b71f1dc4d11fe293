package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"CatalogDesk/config"
	"CatalogDesk/internal/catalog"
	"CatalogDesk/internal/console"
	"CatalogDesk/internal/remote"
	"CatalogDesk/pkg/kit"
)

func main() {
	service := "catalogd"
	cfg := config.MustLoad()

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	clientMetrics := kit.NewClientMetrics(reg)
	hc := &http.Client{
		Timeout:   cfg.Remote.Timeout,
		Transport: clientMetrics.RoundTripper("remote", nil),
	}
	rc := remote.NewClient(cfg.Remote.BaseURL, hc, log.Named("remote"))

	catalogMetrics := console.NewCatalogMetrics(reg)
	store := catalog.NewStore(rc,
		catalog.WithStoreLogger(log.Named("store")),
		catalog.WithLoadHook(catalogMetrics.LoadHook()),
	)
	mutator := catalog.NewMutator(rc,
		catalog.WithMutatorLogger(log.Named("mutator")),
		catalog.WithObserver(catalogMetrics.Observer()),
	)

	// A failed first load is not fatal; the first list request retries it.
	if _, err := store.Load(ctx); err != nil {
		log.Warn("initial catalog load failed", zap.Error(err))
	}

	s := &console.Server{
		Store:               store,
		Mutator:             mutator,
		Remote:              rc,
		Log:                 log,
		Limiter:             kit.NewIPRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
		StaleAfter:          cfg.Catalog.StaleAfter,
		ReloadAfterMutation: cfg.Catalog.ReloadAfterMutation,
	}

	h := console.NewHandler(s, console.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsToken:   cfg.Metrics.Token,
	})

	if err := kit.RunHTTPServer(ctx, cfg.HTTPAddr, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}
