package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"returns-dashboard/internal/models"
	"returns-dashboard/internal/spreadsheet"
)

// Dataset is the loaded record set together with everything derived from it at
// load time. It is replaced as a whole and never mutated.
type Dataset struct {
	Records  []models.TransactionRecord
	Summary  []models.MonthlySummary
	Months   []models.Period
	Statuses []models.Status
	First    models.Period
	Last     models.Period
	Report   spreadsheet.LoadReport
	Source   string
	LoadedAt time.Time
}

func NewDataset(records []models.TransactionRecord) *Dataset {
	ds := &Dataset{
		Records:  records,
		Summary:  AggregateMonthly(records),
		Statuses: Statuses(records),
		LoadedAt: time.Now(),
	}
	if first, last, ok := DataSpan(records); ok {
		ds.First, ds.Last = first, last
		ds.Months = models.PeriodRange(first, last)
	}
	return ds
}

type Analytics struct {
	mu       sync.RWMutex
	dataset  *Dataset
	cacheDir string
	logger   *slog.Logger
}

func NewAnalytics() *Analytics {
	return &Analytics{
		dataset: NewDataset(nil),
		logger:  slog.Default(),
	}
}

// WithCache enables the parsed-record cache under dir.
func (a *Analytics) WithCache(dir string) *Analytics {
	a.cacheDir = dir
	return a
}

func (a *Analytics) SetData(records []models.TransactionRecord) {
	ds := NewDataset(records)
	ds.Report = spreadsheet.LoadReport{Rows: len(records), Records: len(records)}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
}

func (a *Analytics) LoadFromFile(ctx context.Context, path string, opts spreadsheet.ReadOptions) error {
	if a.cacheDir != "" {
		if cached, err := loadCache(a.cacheDir, path, opts); err == nil {
			info, err := os.Stat(path)
			if err == nil && info.ModTime().Before(cached.CreatedAt) {
				a.install(path, cached.Records, cached.Report)
				a.logger.Info("loaded records from cache", "records", len(cached.Records))
				return nil
			}
		}
	}

	start := time.Now()
	a.logger.Info("reading input spreadsheet", "filename", path)

	records, report, err := spreadsheet.ReadRecords(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}

	if a.cacheDir != "" {
		if err := saveCache(a.cacheDir, path, opts, records, report); err != nil {
			a.logger.Warn("failed to save cache", "error", err)
		}
	}

	a.install(path, records, report)

	a.logger.Info("input spreadsheet loaded",
		"rows", report.Rows,
		"records", report.Records,
		"skipped_rows", report.SkippedRows,
		"missing_order_dates", report.MissingOrderDates,
		"missing_return_dates", report.MissingReturnDates,
		"duration", time.Since(start),
	)
	return nil
}

func (a *Analytics) install(source string, records []models.TransactionRecord, report spreadsheet.LoadReport) {
	ds := NewDataset(records)
	ds.Source = source
	ds.Report = report

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset = ds
}

func (a *Analytics) Dataset() *Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

func (a *Analytics) MonthlySummary() []models.MonthlySummary {
	return a.Dataset().Summary
}

func (a *Analytics) Months() []models.Period {
	return a.Dataset().Months
}

// HasMonth reports whether p lies inside the selectable month range.
func (a *Analytics) HasMonth(p models.Period) bool {
	ds := a.Dataset()
	return len(ds.Months) > 0 && !p.Before(ds.First) && !ds.Last.Before(p)
}

// MonthSeries recomputes the per-status daily series for one month.
func (a *Analytics) MonthSeries(p models.Period) []models.DailySeries {
	return MonthTraces(a.Dataset().Records, p)
}

func (a *Analytics) MonthFigure(p models.Period) models.ChartFigure {
	ds := a.Dataset()
	return BuildFigure(MonthTraces(ds.Records, p), ds.First, ds.Last)
}

func (a *Analytics) Stats() map[string]any {
	ds := a.Dataset()
	return map[string]any{
		"source":      ds.Source,
		"loaded_at":   ds.LoadedAt,
		"records":     len(ds.Records),
		"months":      len(ds.Months),
		"summary":     len(ds.Summary),
		"statuses":    ds.Statuses,
		"load_report": ds.Report,
	}
}
