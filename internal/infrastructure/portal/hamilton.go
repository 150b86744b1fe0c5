package portal

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"countysales/internal/county"
	"countysales/internal/domain"
	"countysales/internal/normalize"
)

const (
	hamiltonBaseURL   = "https://wedge1.hcauditor.org"
	hamiltonQueryPath = "/execute"
	hamiltonPrintPath = "/results/print"
)

// hamiltonBlankFields are sent empty on every query; the portal rejects a
// sales search that omits any of them.
var hamiltonBlankFields = []string{
	"sale_book", "sale_page",
	"sale_price_low", "sale_price_high",
	"year_built_low", "year_built_high",
	"finished_sq_ft_low", "finished_sq_ft_high",
	"acreage_low", "acreage_high",
	"bedrooms_low", "bedrooms_high",
	"fireplaces_low", "fireplaces_high",
	"full_baths_low", "full_baths_high",
	"half_baths_low", "half_baths_high",
	"total_rooms_low", "total_rooms_high",
	"stories_low", "stories_high",
	"origin_property_key", "feet_from_origin",
}

// Hamilton scrapes the Hamilton County auditor portal, which accepts the
// whole query in one POST and then serves a printable view of it.
type Hamilton struct {
	opts Options
}

var _ county.Adapter = (*Hamilton)(nil)

// NewHamilton builds the adapter; see Options for defaults.
func NewHamilton(opts Options) *Hamilton {
	return &Hamilton{opts: opts.withDefaults(hamiltonBaseURL)}
}

// Name identifies the adapter inside the registry.
func (h *Hamilton) Name() string {
	return "hamilton"
}

func hamiltonQuery(window domain.DateRange) map[string]string {
	form := make(map[string]string, len(hamiltonBlankFields)+3)
	for _, field := range hamiltonBlankFields {
		form[field] = ""
	}
	form["search_type"] = "Sales"
	form["sale_date_low"] = window.PortalStart()
	form["sale_date_high"] = window.PortalEnd()
	return form
}

// FetchSales posts the sales query and parses the printable results.
func (h *Hamilton) FetchSales(ctx context.Context, window domain.DateRange) ([]domain.SaleRecord, error) {
	ctx, span := tracer.Start(ctx, "hamilton:FetchSales", trace.WithAttributes(
		attribute.String("start", window.PortalStart()),
		attribute.String("end", window.PortalEnd()),
	))
	defer span.End()

	log := h.opts.Logger
	log.Debug("fetching sales", "start", window.PortalStart(), "end", window.PortalEnd())

	session, err := newSession(h.opts)
	if err != nil {
		return nil, err
	}

	log.Debug("posting sales search request", "path", hamiltonQueryPath)
	if err := postForm(ctx, session, hamiltonQueryPath, hamiltonQuery(window)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to post search")
		return nil, fmt.Errorf("post search: %w", err)
	}

	results, err := getDocument(ctx, session, hamiltonPrintPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load printable results")
		return nil, fmt.Errorf("load printable results: %w", err)
	}
	// Portals answer an empty window with a bare message instead of a table.
	if results.Find("table").Length() == 0 {
		log.Debug("printable results have no table, no sales in window")
		span.SetAttributes(attribute.Int("records", 0))
		return nil, nil
	}

	rows := ExtractRows(results, "td, th")
	log.Debug("found sales table rows to process", "rows", len(rows))

	records := normalize.New(log).Normalize(ClassifyRows(rows), window)
	log.Debug("final clean records", "records", len(records))
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
