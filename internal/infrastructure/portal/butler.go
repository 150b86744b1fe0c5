package portal

import (
	"context"
	"fmt"
	"maps"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"countysales/internal/county"
	"countysales/internal/domain"
	"countysales/internal/normalize"
)

const (
	butlerBaseURL    = "https://propertysearch.bcohio.gov"
	butlerSearchPath = "/search/advancedsearch.aspx?mode=sales"
	butlerPrintPath  = "/Search/PrintSearch.aspx?type=SALES&sIndex=0"
)

// Butler scrapes the Butler County auditor portal. The search form is an
// ASP.NET page: its hidden state must be echoed back with the date filter
// before the printable results view reflects the query.
type Butler struct {
	opts Options
}

var _ county.Adapter = (*Butler)(nil)

// NewButler builds the adapter; see Options for defaults.
func NewButler(opts Options) *Butler {
	return &Butler{opts: opts.withDefaults(butlerBaseURL)}
}

// Name identifies the adapter inside the registry.
func (b *Butler) Name() string {
	return "butler"
}

// FetchSales loads the form, replays its state with the date range, then
// reads the printable results page.
func (b *Butler) FetchSales(ctx context.Context, window domain.DateRange) ([]domain.SaleRecord, error) {
	ctx, span := tracer.Start(ctx, "butler:FetchSales", trace.WithAttributes(
		attribute.String("start", window.PortalStart()),
		attribute.String("end", window.PortalEnd()),
	))
	defer span.End()

	log := b.opts.Logger
	log.Debug("fetching sales", "start", window.PortalStart(), "end", window.PortalEnd())

	session, err := newSession(b.opts)
	if err != nil {
		return nil, err
	}

	form, err := getDocument(ctx, session, butlerSearchPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load search form")
		return nil, fmt.Errorf("load search form: %w", err)
	}
	hidden := HiddenFields(form)
	if len(hidden) == 0 {
		span.SetStatus(codes.Error, "search form has no hidden state")
		return nil, fmt.Errorf("search form: %w: no hidden fields", ErrUnexpectedPage)
	}

	payload := maps.Clone(hidden)
	payload["SaleSearchOptions$SaleDateFrom"] = window.PortalStart()
	payload["SaleSearchOptions$SaleDateTo"] = window.PortalEnd()
	payload["SaleSearchOptions$chkSaleDate"] = "on"
	payload["cmdSearch"] = "Search"

	if err := postForm(ctx, session, butlerSearchPath, payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit search")
		return nil, fmt.Errorf("submit search: %w", err)
	}

	results, err := getDocument(ctx, session, butlerPrintPath)
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

	rows := ExtractRows(results, "td")
	log.Debug("found table rows to process", "rows", len(rows))

	records := normalize.New(log).Normalize(ClassifyRows(rows), window)
	log.Debug("final clean records", "records", len(records))
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}
