package spreadsheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"returns-dashboard/internal/models"
)

const (
	batchSize  = 5000
	maxWorkers = 8

	// maxExcelSerial is 9999-12-31 in the 1900 date system.
	maxExcelSerial = 2958465
	compactLayout  = "20060102"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/06",
}

// Columns names the input headers. Matching is case-insensitive.
type Columns struct {
	OrderDate  string
	ReturnDate string
	Status     string
	Quantity   string
}

type ReadOptions struct {
	Sheet   string
	Columns Columns
}

type LoadReport struct {
	Rows               int `json:"rows"`
	Records            int `json:"records"`
	SkippedRows        int `json:"skipped_rows"`
	MissingOrderDates  int `json:"missing_order_dates"`
	MissingReturnDates int `json:"missing_return_dates"`
}

// ReadRecords loads transaction rows from an .xlsx or .csv file.
func ReadRecords(ctx context.Context, path string, opts ReadOptions) ([]models.TransactionRecord, LoadReport, error) {
	var (
		rows []map[string]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readWorkbook(path, opts.Sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, LoadReport{}, fmt.Errorf("unsupported input format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, LoadReport{}, err
	}

	if len(rows) > 0 {
		if err := checkColumns(rows[0], opts.Columns); err != nil {
			return nil, LoadReport{}, err
		}
	}

	return parseRows(ctx, rows, opts.Columns)
}

func readWorkbook(path, sheet string) ([]map[string]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	table, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(table) == 0 {
		return nil, nil
	}

	header := make([]string, len(table[0]))
	for i, h := range table[0] {
		header[i] = normalizeHeader(h)
	}

	rows := make([]map[string]string, 0, len(table)-1)
	for _, cells := range table[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	raw, err := gocsv.CSVToMaps(f)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	rows := make([]map[string]string, 0, len(raw))
	for _, r := range raw {
		row := make(map[string]string, len(r))
		for k, v := range r {
			row[normalizeHeader(k)] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func checkColumns(row map[string]string, cols Columns) error {
	var missing []string
	for _, c := range []string{cols.OrderDate, cols.ReturnDate, cols.Status, cols.Quantity} {
		if _, ok := row[normalizeHeader(c)]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

type parsedRow struct {
	record models.TransactionRecord
	valid  bool
}

func parseRows(ctx context.Context, rows []map[string]string, cols Columns) ([]models.TransactionRecord, LoadReport, error) {
	parsed := make([]parsedRow, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, ok := parseRecord(rows[i], cols)
				parsed[i] = parsedRow{record: rec, valid: ok}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, LoadReport{}, err
	}

	report := LoadReport{Rows: len(rows)}
	records := make([]models.TransactionRecord, 0, len(rows))
	for _, p := range parsed {
		if !p.valid {
			report.SkippedRows++
			continue
		}
		if p.record.OrderDate.IsZero() {
			report.MissingOrderDates++
		}
		if p.record.ReturnDate.IsZero() {
			report.MissingReturnDates++
		}
		records = append(records, p.record)
	}
	report.Records = len(records)
	return records, report, nil
}

func parseRecord(row map[string]string, cols Columns) (models.TransactionRecord, bool) {
	qty, err := decimal.NewFromString(strings.TrimSpace(row[normalizeHeader(cols.Quantity)]))
	if err != nil {
		return models.TransactionRecord{}, false
	}
	orderDate, _ := ParseDate(row[normalizeHeader(cols.OrderDate)])
	returnDate, _ := ParseDate(row[normalizeHeader(cols.ReturnDate)])

	return models.TransactionRecord{
		OrderDate:  orderDate,
		ReturnDate: returnDate,
		Status:     models.NormalizeStatus(row[normalizeHeader(cols.Status)]),
		Quantity:   qty,
	}, true
}

// ParseDate accepts Excel serial numbers and the common textual layouts.
// Eight digit values read as YYYYMMDD before any serial interpretation.
// Empty cells and NaT markers report false.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nat", "nan", "none", "null":
		return time.Time{}, false
	}

	if len(s) == len(compactLayout) {
		if t, err := time.Parse(compactLayout, s); err == nil {
			return t, true
		}
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
