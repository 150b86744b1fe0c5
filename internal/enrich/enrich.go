// Package enrich derives the investor metrics and per-county summaries from
// a merged set of normalized sales.
package enrich

import (
	"cmp"
	"math"
	"slices"

	"countysales/internal/domain"
)

const (
	// rentRatio is the "1% rule": monthly rent as a fraction of price.
	rentRatio = 0.01
	// dealRatio marks a sale priced this far under the median $/sqft.
	dealRatio = 0.8
)

// Enrich computes per-record metrics, drops price and $/sqft outliers, flags
// below-market deals and returns the survivors ordered by ascending price
// together with the rendered per-county summary text.
func Enrich(records []domain.SaleRecord) ([]domain.EnrichedRecord, string) {
	enriched := withMetrics(dedupeByParcel(records))
	enriched = dropPriceOutliers(enriched)
	enriched = dropPricePerSqftOutliers(enriched)
	flagDeals(enriched)

	slices.SortStableFunc(enriched, func(a, b domain.EnrichedRecord) int {
		return cmp.Compare(a.SalePriceClean, b.SalePriceClean)
	})

	return enriched, SummaryText(Summarize(enriched))
}

func dedupeByParcel(records []domain.SaleRecord) []domain.SaleRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]domain.SaleRecord, 0, len(records))
	for _, rec := range records {
		if _, ok := seen[rec.ParcelID]; ok {
			continue
		}
		seen[rec.ParcelID] = struct{}{}
		out = append(out, rec)
	}
	return out
}

func withMetrics(records []domain.SaleRecord) []domain.EnrichedRecord {
	out := make([]domain.EnrichedRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, metrics(rec))
	}
	return out
}

func metrics(rec domain.SaleRecord) domain.EnrichedRecord {
	price := rec.SalePrice.InexactFloat64()
	e := domain.EnrichedRecord{
		SaleRecord:     rec,
		SalePriceClean: price,
		EstMonthlyRent: math.RoundToEven(price * rentRatio),
		CashSale:       price == 0,
	}
	if rec.FinishedSqft != nil && *rec.FinishedSqft > 0 {
		ppsf := price / float64(*rec.FinishedSqft)
		e.PricePerSqft = &ppsf
	}
	if price > 0 {
		roi := e.EstMonthlyRent * 12 / price
		e.EstROI = &roi
	}
	return e
}

func dropPriceOutliers(records []domain.EnrichedRecord) []domain.EnrichedRecord {
	prices := make([]float64, 0, len(records))
	for _, r := range records {
		prices = append(prices, r.SalePriceClean)
	}
	f, ok := iqrFence(prices)
	if !ok {
		return records
	}
	return slices.DeleteFunc(records, func(r domain.EnrichedRecord) bool {
		return !f.contains(r.SalePriceClean)
	})
}

func dropPricePerSqftOutliers(records []domain.EnrichedRecord) []domain.EnrichedRecord {
	f, ok := iqrFence(pricesPerSqft(records))
	if !ok {
		return records
	}
	return slices.DeleteFunc(records, func(r domain.EnrichedRecord) bool {
		return r.PricePerSqft != nil && !f.contains(*r.PricePerSqft)
	})
}

// flagDeals marks records whose $/sqft is under dealRatio of the median
// $/sqft of the whole set. Records without $/sqft are never deals.
func flagDeals(records []domain.EnrichedRecord) {
	med, ok := median(pricesPerSqft(records))
	threshold := dealRatio * med
	for i := range records {
		ppsf := records[i].PricePerSqft
		records[i].Deal = ok && ppsf != nil && *ppsf < threshold
	}
}

func pricesPerSqft(records []domain.EnrichedRecord) []float64 {
	var out []float64
	for _, r := range records {
		if r.PricePerSqft != nil {
			out = append(out, *r.PricePerSqft)
		}
	}
	return out
}
