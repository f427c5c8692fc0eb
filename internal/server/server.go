package server

import (
	"log/slog"
	"net/http"

	"returns-dashboard/internal/handlers"
	"returns-dashboard/internal/services"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	s.mux.HandleFunc("GET /api/monthly-summary", s.apiHandlers.HandleMonthlySummary)
	s.mux.HandleFunc("GET /api/months", s.apiHandlers.HandleMonths)
	s.mux.HandleFunc("GET /api/month-series", s.apiHandlers.HandleMonthSeries)

	s.mux.HandleFunc("GET /sse/summary-table", s.sseHandlers.HandleSummaryTable)
	s.mux.HandleFunc("GET /sse/month-series", s.sseHandlers.HandleMonthSeries)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
