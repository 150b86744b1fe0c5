// Package normalize turns classified portal rows into canonical sale records.
package normalize

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"countysales/internal/domain"
)

// Normalizer applies the cleaning steps shared by every county adapter.
type Normalizer struct {
	logger *slog.Logger
}

// New returns a normalizer; a nil logger disables step tracing.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize is the logger-free form of (*Normalizer).Normalize.
func Normalize(rows []domain.RawRecord, window domain.DateRange) []domain.SaleRecord {
	return New(nil).Normalize(rows, window)
}

type datedRow struct {
	raw  domain.RawRecord
	date time.Time
}

// Normalize runs, in order: exact-duplicate removal, date parsing, window
// restriction, latest-sale-per-parcel, price parsing with the plausibility
// floor. The result is ordered by sale date, newest first.
func (n *Normalizer) Normalize(rows []domain.RawRecord, window domain.DateRange) []domain.SaleRecord {
	n.debug("parsed raw rows", "rows", len(rows))
	if len(rows) == 0 {
		return nil
	}

	unique := dropExactDuplicates(rows)
	n.debug("after removing duplicates", "rows", len(unique))

	dated := make([]datedRow, 0, len(unique))
	for _, row := range unique {
		d, err := ParseSaleDate(row.SaleDate)
		if err != nil {
			continue
		}
		dated = append(dated, datedRow{raw: row, date: d})
	}
	n.debug("after parsing dates", "rows", len(dated))

	dated = slices.DeleteFunc(dated, func(r datedRow) bool {
		return !window.Contains(r.date)
	})
	n.debug("after date filtering", "rows", len(dated))

	dated = latestPerParcel(dated)
	n.debug("after keeping latest sale per property", "rows", len(dated))

	out := make([]domain.SaleRecord, 0, len(dated))
	for _, r := range dated {
		price, err := ParsePrice(r.raw.SalePrice)
		if err != nil {
			continue
		}
		// Reports carry whole currency units; the floor applies to what is reported,
		// so $1,000.40 rounds to $1,000 and is dropped.
		price = price.RoundBank(0)
		if !price.GreaterThan(MinPlausiblePrice) {
			continue
		}
		out = append(out, domain.SaleRecord{
			ParcelID:     r.raw.ParcelID,
			Address:      r.raw.Address,
			FinishedSqft: parseOptionalInt(r.raw.FinSqft),
			YearBuilt:    parseOptionalInt(r.raw.YearBuilt),
			SaleDate:     r.date,
			SalePrice:    price,
		})
	}
	n.debug("after price filtering", "rows", len(out))

	return out
}

func dropExactDuplicates(rows []domain.RawRecord) []domain.RawRecord {
	seen := make(map[domain.RawRecord]struct{}, len(rows))
	out := make([]domain.RawRecord, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row]; ok {
			continue
		}
		seen[row] = struct{}{}
		out = append(out, row)
	}
	return out
}

func latestPerParcel(rows []datedRow) []datedRow {
	slices.SortStableFunc(rows, func(a, b datedRow) int {
		return b.date.Compare(a.date)
	})

	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if _, ok := seen[r.raw.ParcelID]; ok {
			continue
		}
		seen[r.raw.ParcelID] = struct{}{}
		out = append(out, r)
	}
	return out
}

func parseOptionalInt(s string) *int {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

func (n *Normalizer) debug(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
