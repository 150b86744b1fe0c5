package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date rendering used in reports.
const DateLayout = "2006-01-02"

// PortalDateLayout is how county portals expect date filters to be typed.
const PortalDateLayout = "01/02/2006"

// DateRange is an inclusive calendar window; times are truncated to the day.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a window from two instants, dropping the time of day.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// LastDays returns the window ending on now and starting days earlier.
func LastDays(now time.Time, days int) DateRange {
	return NewDateRange(now.AddDate(0, 0, -days), now)
}

// Contains reports whether the day of t lies within the window.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// PortalStart and PortalEnd render the bounds in MM/DD/YYYY.
func (r DateRange) PortalStart() string { return r.Start.Format(PortalDateLayout) }
func (r DateRange) PortalEnd() string   { return r.End.Format(PortalDateLayout) }

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RawRecord is one classified portal row before normalization. Every field is
// the cell text as the portal printed it; an empty string means the portal
// left the cell blank.
type RawRecord struct {
	ParcelID  string
	Address   string
	FinSqft   string
	YearBuilt string
	SaleDate  string
	SalePrice string
}

// SaleRecord is a normalized, completed sale.
type SaleRecord struct {
	ParcelID     string
	Address      string
	FinishedSqft *int
	YearBuilt    *int
	SaleDate     time.Time
	SalePrice    decimal.Decimal
	// Source is attached by the aggregator.
	Source string
}

// EnrichedRecord carries the investment metrics computed at report time.
type EnrichedRecord struct {
	SaleRecord

	SalePriceClean float64
	PricePerSqft   *float64
	EstMonthlyRent float64
	EstROI         *float64
	CashSale       bool
	Deal           bool
}

// CountySummary is the per-source rollup printed in the report body.
type CountySummary struct {
	Source             string
	MedianSalePrice    float64
	MedianPricePerSqft *float64
	TotalRecords       int
	FlaggedDeals       int
	CashSales          int
}
