package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"returns-dashboard/internal/errors"
	"returns-dashboard/internal/models"
	"returns-dashboard/internal/services"
	"returns-dashboard/internal/ui/templates"
)

// sliderIndex accepts the slider position either as a JSON number or as the
// numeric string a bound range input produces.
type sliderIndex int

func (s *sliderIndex) UnmarshalJSON(b []byte) error {
	raw := strings.Trim(string(b), `"`)
	if raw == "" || raw == "null" {
		*s = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("slider index %q: %w", raw, err)
	}
	*s = sliderIndex(int(f))
	return nil
}

type dashboardSignals struct {
	Month sliderIndex `json:"month"`
}

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func (h *SSEHandlers) renderSummaryTable(ctx context.Context, summary []models.MonthlySummary) (string, error) {
	var buf bytes.Buffer
	err := templates.SummaryTable(summary).Render(ctx, &buf)
	return buf.String(), err
}

// selectedMonth resolves the slider signal against the month range.
func (h *SSEHandlers) selectedMonth(r *http.Request) (*models.Period, error) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		return nil, errors.ValidationWrap(err, "invalid dashboard signals")
	}

	months := h.analytics.Months()
	if len(months) == 0 {
		return nil, nil
	}
	i := int(signals.Month)
	if i < 0 || i >= len(months) {
		return nil, errors.NotFound(fmt.Sprintf("month index %d is outside the slider range", i))
	}
	return &months[i], nil
}

func (h *SSEHandlers) patchMonth(sse *datastar.ServerSentEventGenerator, r *http.Request, month *models.Period) error {
	figure := models.ChartFigure{Labels: []string{}, Datasets: []models.ChartDataset{}}
	if month != nil {
		figure = h.analytics.MonthFigure(*month)
	}

	signals, err := json.Marshal(map[string]any{"seriesData": figure})
	if err != nil {
		return fmt.Errorf("marshal series signals: %w", err)
	}
	if err := sse.PatchSignals(signals); err != nil {
		return fmt.Errorf("patch series signals: %w", err)
	}

	var label bytes.Buffer
	if err := templates.MonthLabel(month).Render(r.Context(), &label); err != nil {
		return fmt.Errorf("render month label: %w", err)
	}
	return sse.PatchElements(label.String())
}

func (h *SSEHandlers) HandleSummaryTable(w http.ResponseWriter, r *http.Request) {
	html, err := h.renderSummaryTable(r.Context(), h.analytics.MonthlySummary())
	if err != nil {
		h.logger.Error("render summary table", "error", err)
		errors.WriteError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(html); err != nil {
		h.logger.Error("patch summary table", "error", err)
	}
}

// HandleMonthSeries recomputes the chart traces for the month the slider points at.
func (h *SSEHandlers) HandleMonthSeries(w http.ResponseWriter, r *http.Request) {
	month, err := h.selectedMonth(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := h.patchMonth(sse, r, month); err != nil {
		h.logger.Error("patch month series", "error", err)
	}
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	month, err := h.selectedMonth(r)
	if err != nil {
		errors.WriteError(w, r, h.logger, err)
		return
	}

	html, err := h.renderSummaryTable(r.Context(), h.analytics.MonthlySummary())
	if err != nil {
		h.logger.Error("render summary table", "error", err)
		errors.WriteError(w, r, h.logger, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(html); err != nil {
		h.logger.Error("patch summary table", "error", err)
		return
	}
	if err := h.patchMonth(sse, r, month); err != nil {
		h.logger.Error("patch month series", "error", err)
	}
}
