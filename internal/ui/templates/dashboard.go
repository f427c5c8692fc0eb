package templates

//go:generate templ generate

import (
	"github.com/shopspring/decimal"

	"returns-dashboard/internal/models"
)

// MaxSummaryRows caps the Monthly Totals table.
const MaxSummaryRows = 20

const initialSignals = `{"month":0,"seriesData":null}`

var summaryColumns = []string{
	"period",
	"returns",
	"orders",
	"return_rate",
	"return_rate_percentage",
	"return_rate_%_delta",
}

type DashboardView struct {
	Title   string
	Months  []models.Period
	Summary []models.MonthlySummary
}

func visibleRows(summary []models.MonthlySummary) []models.MonthlySummary {
	if len(summary) > MaxSummaryRows {
		return summary[:MaxSummaryRows]
	}
	return summary
}

func summaryCells(s models.MonthlySummary) []string {
	return []string{
		s.Period.String(),
		s.TotalReturns.String(),
		s.TotalOrders.String(),
		formatNullable(s.ReturnRate, 4),
		formatNullable(s.ReturnRatePercent, 2),
		formatNullable(s.ReturnRatePercentDelta, 2),
	}
}

func formatNullable(d decimal.NullDecimal, places int32) string {
	if !d.Valid {
		return "NaN"
	}
	return d.Decimal.StringFixed(places)
}

func firstMonth(months []models.Period) *models.Period {
	if len(months) == 0 {
		return nil
	}
	return &months[0]
}

func sliderMax(months []models.Period) int {
	return max(len(months)-1, 0)
}
