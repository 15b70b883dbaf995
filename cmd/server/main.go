package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/billingops/invoice-console/internal/adapter/api"
	"github.com/billingops/invoice-console/internal/adapter/api/handler"
	"github.com/billingops/invoice-console/internal/adapter/api/middleware"
	"github.com/billingops/invoice-console/internal/adapter/graph"
	"github.com/billingops/invoice-console/internal/adapter/metrics"
	"github.com/billingops/invoice-console/internal/pkg/config"
	"github.com/billingops/invoice-console/internal/pkg/logger"
	"github.com/billingops/invoice-console/internal/usecase"
)

func main() {
	// Amounts go over the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	tenants := config.LoadTenants(cfg.AuthorityBaseURL)
	log.Info("loaded tenant configurations", "count", len(tenants))

	m := metrics.NewBillingMetrics(prometheus.DefaultRegisterer)

	// --- Metrics Server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metricsMux,
	}

	go func() {
		log.Info("starting metrics server", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", "error", err)
		}
	}()

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Upstream Clients ---
	limiter := rate.NewLimiter(rate.Limit(cfg.UpstreamRateLimit), cfg.UpstreamRateBurst)
	tokenClient := graph.NewTokenClient(log)
	invoiceClient := graph.NewInvoiceClient(cfg.GraphBaseURL, limiter, log, m)

	// --- Use Cases ---
	searchUseCase := usecase.NewSearchInvoicesUseCase(tenants, tokenClient, invoiceClient, cfg.TenantCallTimeout, log, m)
	downloadUseCase := usecase.NewDownloadInvoiceUseCase(tenants, tokenClient, invoiceClient, cfg.TenantCallTimeout, log, m)
	statusUseCase := usecase.NewTenantStatusUseCase(tenants, tokenClient, cfg.TenantCallTimeout, log)

	// --- API Server ---
	invoiceHandler := handler.NewInvoiceHandler(searchUseCase, downloadUseCase, statusUseCase, log)
	router := api.NewRouter(cfg.APIKey, log, invoiceHandler)
	apiServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(log)(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		log.Info("starting api server", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("api server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	log.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Error("metrics server shutdown failed", "error", err)
	}
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Error("api server shutdown failed", "error", err)
	}

	log.Info("servers shut down gracefully")
}
