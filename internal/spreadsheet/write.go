package spreadsheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"returns-dashboard/internal/models"
)

// SummaryHeader is the column order of the written summary artifact.
var SummaryHeader = []string{
	"period",
	"returns",
	"orders",
	"return_rate",
	"return_rate_percentage",
	"return_rate_%_delta",
}

type summaryRow struct {
	Period               string `csv:"period"`
	Returns              string `csv:"returns"`
	Orders               string `csv:"orders"`
	ReturnRate           string `csv:"return_rate"`
	ReturnRatePercentage string `csv:"return_rate_percentage"`
	ReturnRateDelta      string `csv:"return_rate_%_delta"`
}

// WriteSummary writes the monthly summary as .xlsx or .csv depending on the
// extension of path. Undefined values become empty cells.
func WriteSummary(path string, summary []models.MonthlySummary) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeWorkbook(path, summary)
	case ".csv":
		return writeCSV(path, summary)
	default:
		return fmt.Errorf("unsupported output format %q", filepath.Ext(path))
	}
}

func writeWorkbook(path string, summary []models.MonthlySummary) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, name := range SummaryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, s := range summary {
		values := []any{
			s.Period.String(),
			s.TotalReturns.InexactFloat64(),
			s.TotalOrders.InexactFloat64(),
			nullableFloat(s.ReturnRate),
			nullableFloat(s.ReturnRatePercent),
			nullableFloat(s.ReturnRatePercentDelta),
		}
		for col, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeCSV(path string, summary []models.MonthlySummary) error {
	rows := make([]*summaryRow, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, &summaryRow{
			Period:               s.Period.String(),
			Returns:              s.TotalReturns.String(),
			Orders:               s.TotalOrders.String(),
			ReturnRate:           nullableString(s.ReturnRate),
			ReturnRatePercentage: nullableString(s.ReturnRatePercent),
			ReturnRateDelta:      nullableString(s.ReturnRatePercentDelta),
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	if err := gocsv.Marshal(rows, f); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

func nullableFloat(d decimal.NullDecimal) any {
	if !d.Valid {
		return nil
	}
	return d.Decimal.InexactFloat64()
}

func nullableString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
