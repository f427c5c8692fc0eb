package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"returns-dashboard/internal/config"
	"returns-dashboard/internal/middleware"
	"returns-dashboard/internal/observability"
	"returns-dashboard/internal/server"
	"returns-dashboard/internal/services"
	"returns-dashboard/internal/spreadsheet"
	"returns-dashboard/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	loadTimeout    = 30 * time.Second
	cacheMaxAge    = "public, max-age=300"
	dashboardTitle = "Sales & Returns"
)

func dashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		ds := analytics.Dataset()
		view := templates.DashboardView{
			Title:   dashboardTitle,
			Months:  ds.Months,
			Summary: ds.Summary,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", cacheMaxAge)
		if err := templates.Dashboard(view).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func readOptions(cfg config.DataConfig) spreadsheet.ReadOptions {
	return spreadsheet.ReadOptions{
		Sheet: cfg.SheetName,
		Columns: spreadsheet.Columns{
			OrderDate:  cfg.OrderDateColumn,
			ReturnDate: cfg.ReturnDateColumn,
			Status:     cfg.StatusColumn,
			Quantity:   cfg.QuantityColumn,
		},
	}
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
		"input", cfg.Data.InputFile,
		"output", cfg.Data.OutputFile,
	)

	analytics := services.NewAnalytics()
	if cfg.Data.CacheEnabled {
		analytics.WithCache(cfg.Data.CacheDir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	if err := analytics.LoadFromFile(ctx, cfg.Data.InputFile, readOptions(cfg.Data)); err != nil {
		logger.Error("failed to load input spreadsheet", "error", err)
		os.Exit(1)
	}

	summary := analytics.MonthlySummary()
	if cfg.Data.OutputFile != "" {
		if err := spreadsheet.WriteSummary(cfg.Data.OutputFile, summary); err != nil {
			logger.Error("failed to write monthly summary", "error", err)
			os.Exit(1)
		}
		logger.Info("monthly summary written", "path", cfg.Data.OutputFile, "months", len(summary))
	}

	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics),
	}

	srv := server.NewServer(analytics, logger, templateHandlers)

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

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      middlewareChain(srv),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("shutting down dashboard", "records", len(analytics.Dataset().Records))
		return nil
	})

	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
