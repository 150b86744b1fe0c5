// Package report renders the finished dataset into the files and message
// that get distributed.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"countysales/internal/domain"
	"countysales/internal/normalize"
)

// Columns is the header row of every report CSV.
var Columns = []string{
	"parcel_id", "address", "fin_sqft", "year_built", "sale_date", "sale_price", "county",
	"sale_price_clean", "price_per_sqft", "est_monthly_rent", "est_roi", "cash_sale_flag", "deal_flag",
}

// FileName names the CSV for a run, e.g. ALL_SOLD_04-14-2025_to_08-12-2025.csv.
func FileName(window domain.DateRange) string {
	return fmt.Sprintf("ALL_SOLD_%s_to_%s.csv",
		window.Start.Format("01-02-2006"), window.End.Format("01-02-2006"))
}

// WriteCSV writes records to dir, creating it if needed, and returns the path.
func WriteCSV(dir string, window domain.DateRange, records []domain.EnrichedRecord) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, FileName(window))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return "", fmt.Errorf("write row %s: %w", r.ParcelID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}
	return path, f.Close()
}

func row(r domain.EnrichedRecord) []string {
	return []string{
		r.ParcelID,
		r.Address,
		optionalInt(r.FinishedSqft),
		optionalInt(r.YearBuilt),
		normalize.FormatDate(r.SaleDate),
		normalize.FormatPrice(r.SalePrice),
		r.Source,
		formatFloat(r.SalePriceClean),
		optionalFloat(r.PricePerSqft),
		formatFloat(r.EstMonthlyRent),
		optionalFloat(r.EstROI),
		formatBool(r.CashSale),
		formatBool(r.Deal),
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatBool(v bool) string {
	if v {
		return "True"
	}
	return "False"
}
