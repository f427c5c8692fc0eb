package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusComplete Status = "complete"
	StatusReturned Status = "returned"
)

func NormalizeStatus(raw string) Status {
	return Status(strings.ToLower(strings.TrimSpace(raw)))
}

// TransactionRecord is one row of the input workbook. A zero OrderDate or
// ReturnDate means the cell was empty or could not be parsed.
type TransactionRecord struct {
	OrderDate  time.Time
	ReturnDate time.Time
	Status     Status
	Quantity   decimal.Decimal
}

// RelevantDate is the date a record is charted on: the return date for
// returned records, the order date for everything else.
func (r TransactionRecord) RelevantDate() time.Time {
	if r.Status == StatusReturned {
		return r.ReturnDate
	}
	return r.OrderDate
}

type MonthlySummary struct {
	Period                 Period              `json:"period"`
	TotalOrders            decimal.Decimal     `json:"orders"`
	TotalReturns           decimal.Decimal     `json:"returns"`
	ReturnRate             decimal.NullDecimal `json:"return_rate"`
	ReturnRatePercent      decimal.NullDecimal `json:"return_rate_percentage"`
	ReturnRatePercentDelta decimal.NullDecimal `json:"return_rate_percentage_delta"`
}

type DailyPoint struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type DailySeries struct {
	Status Status       `json:"status"`
	Period Period       `json:"period"`
	Points []DailyPoint `json:"points"`
}

// ChartDataset is one line-with-markers trace; Values align with ChartFigure.Labels
// and hold nil where the status has no total on that day.
type ChartDataset struct {
	Label  string     `json:"label"`
	Values []*float64 `json:"values"`
	Marker string     `json:"marker"`
}

type ChartFigure struct {
	Title    string         `json:"title"`
	XTitle   string         `json:"x_title"`
	YTitle   string         `json:"y_title"`
	XMin     string         `json:"x_min,omitempty"`
	XMax     string         `json:"x_max,omitempty"`
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}
