package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/datasource"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

const (
	renderTimeout = 10 * time.Second
	pageCache     = "no-cache"
)

// dashboardHandler renders the page with the session's filter options.
func dashboardHandler(analytics *services.Analytics, logger *slog.Logger, defaultTopN int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		opts, err := analytics.Options(ctx)
		if err != nil {
			errors.WriteError(w, logger, errors.ServiceUnavailable("sales data unavailable: "+err.Error()), observability.GetRequestID(ctx))
			return
		}

		page := templates.Page{
			Options:     opts,
			DefaultTopN: services.ClampTopN(defaultTopN),
			MinTopN:     services.MinTopN,
			MaxTopN:     services.MaxTopN,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", pageCache)
		if err := templates.Dashboard(page).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newHandler(cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics, logger, cfg.Dashboard.DefaultTopN),
	}

	srv := server.NewServer(analytics, logger, cfg.Dashboard.DefaultTopN, templateHandlers)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(logger),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"data_source", cfg.Data.Source,
		"locator", cfg.Data.Locator(),
		"driver", cfg.Data.Driver,
	)

	source, err := datasource.NewSource(cfg.Data)
	if err != nil {
		logger.Error("invalid data source", "error", err)
		os.Exit(1)
	}

	analytics := services.NewAnalytics(datasource.NewLoader(source, logger), logger)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Dashboard.LoadTimeout)
	start := time.Now()
	snap, err := analytics.Load(ctx)
	cancel()
	if err != nil {
		logger.Error("failed to load sales data", "error", err, "locator", source.Locator())
		os.Exit(1)
	}
	if len(snap.Sales) == 0 {
		logger.Warn("no sales to display; check that the database or CSV has records", "locator", source.Locator())
	}
	logger.Info("sales data loaded", "records", len(snap.Sales), "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg.Server)

	gracefulServer.RegisterShutdownHook("analytics", func(ctx context.Context) error {
		logger.Info("shutting down analytics service", "stats", analytics.Stats())
		return nil
	})

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(context.Background()); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
