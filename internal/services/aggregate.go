package services

import (
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"returns-dashboard/internal/models"
)

const (
	percentPlaces = 2
	deltaPlaces   = 2
	dateLabel     = "2006-01-02"
)

var hundred = decimal.NewFromInt(100)

// AggregateMonthly buckets records into per-month order and return totals and
// derives the return rate columns. A period appears when any record has an order
// or return date in it, even if no complete/returned quantity lands there.
func AggregateMonthly(records []models.TransactionRecord) []models.MonthlySummary {
	orders := make(map[models.Period]decimal.Decimal)
	returns := make(map[models.Period]decimal.Decimal)

	for _, r := range records {
		if !r.OrderDate.IsZero() {
			p := models.PeriodOf(r.OrderDate)
			total := orders[p]
			if r.Status == models.StatusComplete {
				total = total.Add(r.Quantity)
			}
			orders[p] = total
		}
		if !r.ReturnDate.IsZero() {
			p := models.PeriodOf(r.ReturnDate)
			total := returns[p]
			if r.Status == models.StatusReturned {
				total = total.Add(r.Quantity)
			}
			returns[p] = total
		}
	}

	periods := lo.Uniq(append(lo.Keys(orders), lo.Keys(returns)...))
	slices.SortFunc(periods, models.Period.Compare)

	result := make([]models.MonthlySummary, 0, len(periods))
	var prev decimal.NullDecimal
	for i, p := range periods {
		row := models.MonthlySummary{
			Period:       p,
			TotalOrders:  orders[p],
			TotalReturns: returns[p],
		}
		if !row.TotalOrders.IsZero() {
			rate := row.TotalReturns.Div(row.TotalOrders)
			row.ReturnRate = decimal.NewNullDecimal(rate)
			row.ReturnRatePercent = decimal.NewNullDecimal(rate.Mul(hundred).RoundBank(percentPlaces))
		}
		if i > 0 {
			row.ReturnRatePercentDelta = percentDelta(prev, row.ReturnRatePercent)
		}
		prev = row.ReturnRatePercent
		result = append(result, row)
	}
	return result
}

// percentDelta is (curr - prev) / prev, undefined without a non-zero baseline.
func percentDelta(prev, curr decimal.NullDecimal) decimal.NullDecimal {
	if !prev.Valid || !curr.Valid || prev.Decimal.IsZero() {
		return decimal.NullDecimal{}
	}
	delta := curr.Decimal.Sub(prev.Decimal).Div(prev.Decimal)
	return decimal.NewNullDecimal(delta.RoundBank(deltaPlaces))
}

// FilterMonthSeries sums quantity per day for records of one status whose
// relevant date falls inside period. Statuses other than complete and returned
// keep their dates but count as zero, the same as in the monthly totals.
func FilterMonthSeries(records []models.TransactionRecord, period models.Period, status models.Status) models.DailySeries {
	counted := status == models.StatusComplete || status == models.StatusReturned

	totals := make(map[time.Time]decimal.Decimal)
	for _, r := range records {
		if r.Status != status {
			continue
		}
		date := r.RelevantDate()
		if !period.Contains(date) {
			continue
		}
		day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		qty := decimal.Zero
		if counted {
			qty = r.Quantity
		}
		totals[day] = totals[day].Add(qty)
	}

	days := lo.Keys(totals)
	slices.SortFunc(days, time.Time.Compare)

	points := make([]models.DailyPoint, 0, len(days))
	for _, d := range days {
		points = append(points, models.DailyPoint{Date: d, Total: totals[d]})
	}
	return models.DailySeries{Status: status, Period: period, Points: points}
}

// Statuses returns the distinct non-empty statuses in order of first appearance.
func Statuses(records []models.TransactionRecord) []models.Status {
	all := lo.Map(records, func(r models.TransactionRecord, _ int) models.Status { return r.Status })
	return lo.Uniq(lo.Filter(all, func(s models.Status, _ int) bool { return s != "" }))
}

// MonthTraces builds one series per status present in the data.
func MonthTraces(records []models.TransactionRecord, period models.Period) []models.DailySeries {
	return lo.Map(Statuses(records), func(s models.Status, _ int) models.DailySeries {
		return FilterMonthSeries(records, period, s)
	})
}

// DataSpan reports the earliest and latest period carrying any order or return date.
func DataSpan(records []models.TransactionRecord) (first, last models.Period, ok bool) {
	for _, r := range records {
		for _, d := range []time.Time{r.OrderDate, r.ReturnDate} {
			if d.IsZero() {
				continue
			}
			p := models.PeriodOf(d)
			if !ok || p.Before(first) {
				first = p
			}
			if !ok || last.Before(p) {
				last = p
			}
			ok = true
		}
	}
	return first, last, ok
}

// BuildFigure lays the traces out on a shared date axis for the chart.
func BuildFigure(traces []models.DailySeries, first, last models.Period) models.ChartFigure {
	fig := models.ChartFigure{
		Title:    "Returns & Orders by Month",
		XTitle:   "Date",
		YTitle:   "# of Transactions",
		Labels:   []string{},
		Datasets: []models.ChartDataset{},
	}
	if !last.Before(first) && first != (models.Period{}) {
		fig.XMin = first.Start().Format(dateLabel)
		fig.XMax = last.Next().Start().Format(dateLabel)
	}

	var days []time.Time
	for _, tr := range traces {
		for _, pt := range tr.Points {
			days = append(days, pt.Date)
		}
	}
	days = lo.Uniq(days)
	slices.SortFunc(days, time.Time.Compare)
	index := make(map[time.Time]int, len(days))
	for i, d := range days {
		index[d] = i
		fig.Labels = append(fig.Labels, d.Format(dateLabel))
	}

	for _, tr := range traces {
		ds := models.ChartDataset{
			Label:  string(tr.Status),
			Values: make([]*float64, len(days)),
			Marker: "circle",
		}
		if tr.Status == models.StatusReturned {
			ds.Marker = "rect"
		}
		for _, pt := range tr.Points {
			v := pt.Total.InexactFloat64()
			ds.Values[index[pt.Date]] = &v
		}
		fig.Datasets = append(fig.Datasets, ds)
	}
	return fig
}
