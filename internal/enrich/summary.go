package enrich

import (
	"fmt"
	"slices"
	"strings"

	"countysales/internal/domain"
)

// Summarize groups records by source, in source-name order.
func Summarize(records []domain.EnrichedRecord) []domain.CountySummary {
	groups := map[string][]domain.EnrichedRecord{}
	for _, r := range records {
		groups[r.Source] = append(groups[r.Source], r)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	slices.Sort(names)

	out := make([]domain.CountySummary, 0, len(names))
	for _, name := range names {
		out = append(out, summarizeGroup(name, groups[name]))
	}
	return out
}

func summarizeGroup(source string, group []domain.EnrichedRecord) domain.CountySummary {
	s := domain.CountySummary{Source: source, TotalRecords: len(group)}

	prices := make([]float64, 0, len(group))
	for _, r := range group {
		prices = append(prices, r.SalePriceClean)
		if r.Deal {
			s.FlaggedDeals++
		}
		if r.CashSale {
			s.CashSales++
		}
	}
	s.MedianSalePrice, _ = median(prices)
	if med, ok := median(pricesPerSqft(group)); ok {
		s.MedianPricePerSqft = &med
	}
	return s
}

// SummaryText renders one block per county, separated by a blank line.
func SummaryText(summaries []domain.CountySummary) string {
	blocks := make([]string, 0, len(summaries))
	for _, s := range summaries {
		blocks = append(blocks, summaryBlock(s))
	}
	return strings.Join(blocks, "\n")
}

func summaryBlock(s domain.CountySummary) string {
	ppsf := "n/a"
	if s.MedianPricePerSqft != nil {
		ppsf = fmt.Sprintf("$%.0f", *s.MedianPricePerSqft)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s County:\n", s.Source)
	fmt.Fprintf(&b, "- Median Sale Price: $%.0f\n", s.MedianSalePrice)
	fmt.Fprintf(&b, "- Median Price per SqFt: %s\n", ppsf)
	fmt.Fprintf(&b, "- Total Records: %d\n", s.TotalRecords)
	fmt.Fprintf(&b, "- Flagged Deals: %d\n", s.FlaggedDeals)
	fmt.Fprintf(&b, "- Cash Sales: %d\n", s.CashSales)
	return b.String()
}
