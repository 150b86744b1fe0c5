package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"countysales/internal/domain"
	"countysales/internal/enrich"
	"countysales/internal/ports"
	"countysales/internal/report"
)

var (
	tracer = otel.Tracer("countysales/usecase")
	meter  = otel.Meter("countysales/usecase")

	recordsCounter, _  = meter.Int64Counter("report_records", metric.WithDescription("Enriched rows written to report CSVs."))
	failuresCounter, _ = meter.Int64Counter("county_failures", metric.WithDescription("County adapters that failed during a run."))
)

// PipelineDeps wires all driven adapters into the report pipeline. Only
// Source is required; nil sinks are skipped.
type PipelineDeps struct {
	Source   ports.SalesSource
	Archive  ports.ReportArchive
	Chart    ports.ChartRenderer
	Mailer   ports.Mailer
	Notifier ports.Notifier
	Logger   *slog.Logger

	OutputDir    string
	EmailEnabled bool
}

// Pipeline implements one report run: collect, enrich, write, deliver.
type Pipeline struct {
	source   ports.SalesSource
	archive  ports.ReportArchive
	chart    ports.ChartRenderer
	mailer   ports.Mailer
	notifier ports.Notifier
	logger   *slog.Logger

	outputDir    string
	emailEnabled bool
}

// RunResult describes what a run produced. A run with nothing to report
// returns a zero CSVPath.
type RunResult struct {
	Window    domain.DateRange
	Records   []domain.EnrichedRecord
	Summaries []domain.CountySummary
	Summary   string
	Failed    []string
	CSVPath   string
	ChartPath string
	Message   ports.Message
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		source:       deps.Source,
		archive:      deps.Archive,
		chart:        deps.Chart,
		mailer:       deps.Mailer,
		notifier:     deps.Notifier,
		logger:       logger,
		outputDir:    deps.OutputDir,
		emailEnabled: deps.EmailEnabled,
	}
}

// Run executes the report for window. Adapter failures never surface here;
// an empty merged set ends the run quietly. Once the CSV is on disk, failing
// sinks are logged and returned together.
func (p *Pipeline) Run(ctx context.Context, window domain.DateRange) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("window.start", window.Start.Format(domain.DateLayout)),
		attribute.String("window.end", window.End.Format(domain.DateLayout)),
	)

	result := RunResult{Window: window}
	if p.source == nil {
		return result, nil
	}

	collection := p.source.FetchSales(ctx, window)
	result.Failed = collection.Failed()
	p.logger.Info("collected sales", "records", len(collection.Records), "failed_counties", len(result.Failed))
	for _, name := range result.Failed {
		failuresCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("county", name)))
	}

	if len(collection.Records) == 0 {
		p.logger.Info("no sold properties found")
		return result, nil
	}

	records, summary := enrich.Enrich(collection.Records)
	result.Records = records
	result.Summaries = enrich.Summarize(records)
	result.Summary = summary
	span.SetAttributes(attribute.Int("records", len(records)))

	csvPath, err := report.WriteCSV(p.outputDir, window, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write csv")
		return result, fmt.Errorf("write report: %w", err)
	}
	result.CSVPath = csvPath
	recordsCounter.Add(ctx, int64(len(records)))
	p.logger.Info("saved combined file", "path", csvPath, "records", len(records))

	var errs []error
	attachments := []string{csvPath}

	if p.chart != nil {
		chartPath, err := p.chart.Render(ctx, csvPath)
		if err != nil {
			p.logger.Error("chart failed", "err", err)
			errs = append(errs, fmt.Errorf("render chart: %w", err))
		} else {
			result.ChartPath = chartPath
			attachments = append(attachments, chartPath)
		}
	}

	if p.archive != nil {
		if err := p.archive.SaveReport(ctx, window, records); err != nil {
			p.logger.Error("archive failed", "err", err)
			errs = append(errs, fmt.Errorf("archive report: %w", err))
		}
	}

	result.Message = report.NewMessage(window, summary, attachments)
	switch {
	case p.emailEnabled && p.mailer != nil:
		if err := p.mailer.Send(ctx, result.Message); err != nil {
			p.logger.Error("email failed", "err", err)
			errs = append(errs, fmt.Errorf("send email: %w", err))
		} else {
			p.logger.Info("email sent", "attachments", len(attachments))
		}
	default:
		p.logger.Info("email disabled, would have sent",
			"subject", result.Message.Subject, "attachments", attachments)
	}

	if p.notifier != nil {
		if err := p.notifier.PublishSummary(ctx, summary); err != nil {
			p.logger.Error("notify failed", "err", err)
			errs = append(errs, fmt.Errorf("publish summary: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery")
		return result, err
	}
	return result, nil
}
