package portal

import (
	"context"
	"log/slog"

	"countysales/internal/county"
	"countysales/internal/domain"
	"countysales/internal/ports"
)

// CountySource implements ports.SalesSource over registered county adapters.
// A failing adapter is logged and skipped; the others still contribute.
type CountySource struct {
	adapters []county.Adapter
	logger   *slog.Logger
}

var _ ports.SalesSource = (*CountySource)(nil)

// NewCountySource runs the given adapters in order.
func NewCountySource(adapters []county.Adapter, log *slog.Logger) *CountySource {
	return &CountySource{
		adapters: adapters,
		logger:   log,
	}
}

// FetchSales invokes every adapter sequentially and merges what succeeded.
// Each record is tagged with the display name of the adapter that produced it.
func (s *CountySource) FetchSales(ctx context.Context, window domain.DateRange) domain.Collection {
	s.debug("fetch sales", "adapters", len(s.adapters),
		"start", window.Start.Format(domain.DateLayout), "end", window.End.Format(domain.DateLayout))

	var out domain.Collection
	for _, adapter := range s.adapters {
		out.Results = append(out.Results, s.run(ctx, adapter, window))
	}

	for _, res := range out.Results {
		if res.Err == nil {
			out.Records = append(out.Records, res.Records...)
		}
	}

	s.debug("county source done", "total_records", len(out.Records))
	return out
}

func (s *CountySource) run(ctx context.Context, adapter county.Adapter, window domain.DateRange) domain.SourceResult {
	name := adapter.Name()
	source := county.DisplayName(name)
	s.debug("process county", "county", name)

	records, err := adapter.FetchSales(ctx, window)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("county adapter failed", "county", name, "err", err)
		}
		return domain.SourceResult{Source: source, Err: err}
	}

	for i := range records {
		records[i].Source = source
	}
	s.debug("county produced sales", "county", name, "count", len(records))
	return domain.SourceResult{Source: source, Records: records}
}

func (s *CountySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
