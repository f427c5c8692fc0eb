package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"returns-dashboard/internal/errors"
	"returns-dashboard/internal/models"
	"returns-dashboard/internal/services"
)

const cacheControl = "public, max-age=300"

var validate = validator.New()

type monthQuery struct {
	Month string `validate:"required,datetime=2006-01"`
}

type monthEntry struct {
	Period models.Period `json:"period"`
	Label  string        `json:"label"`
}

type monthSeriesResponse struct {
	Period models.Period        `json:"period"`
	Label  string               `json:"label"`
	Series []models.DailySeries `json:"series"`
	Figure models.ChartFigure   `json:"figure"`
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *APIHandlers) HandleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.analytics.MonthlySummary(), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleMonths(w http.ResponseWriter, r *http.Request) {
	months := h.analytics.Months()
	data := make([]monthEntry, 0, len(months))
	for _, p := range months {
		data = append(data, monthEntry{Period: p, Label: p.Label()})
	}

	errors.WriteSuccessWithHeaders(w, data, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleMonthSeries(w http.ResponseWriter, r *http.Request) {
	q := monthQuery{Month: r.URL.Query().Get("month")}
	if err := validate.Struct(q); err != nil {
		errors.WriteError(w, r, h.logger, errors.ValidationWrap(err, "month must be given as YYYY-MM"))
		return
	}

	period, err := models.ParsePeriod(q.Month)
	if err != nil {
		errors.WriteError(w, r, h.logger, errors.ValidationWrap(err, "month must be given as YYYY-MM"))
		return
	}

	if !h.analytics.HasMonth(period) {
		errors.WriteError(w, r, h.logger, errors.NotFound("month "+period.String()+" is outside the data range"))
		return
	}

	errors.WriteSuccess(w, monthSeriesResponse{
		Period: period,
		Label:  period.Label(),
		Series: h.analytics.MonthSeries(period),
		Figure: h.analytics.MonthFigure(period),
	})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	})
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.analytics.Stats())
}
