package usecase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"countysales/internal/domain"
	"countysales/internal/logging"
	"countysales/internal/ports"
	"countysales/internal/report"
)

type fakeSource struct {
	collection domain.Collection
	windows    []domain.DateRange
	mu         sync.Mutex
}

func (f *fakeSource) FetchSales(_ context.Context, window domain.DateRange) domain.Collection {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.windows = append(f.windows, window)
	return f.collection
}

type fakeChart struct{ err error }

func (f fakeChart) Render(_ context.Context, csvPath string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return strings.TrimSuffix(csvPath, ".csv") + ".png", nil
}

type fakeMailer struct {
	sent []ports.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg ports.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeArchive struct{ saved int }

func (f *fakeArchive) SaveReport(_ context.Context, _ domain.DateRange, records []domain.EnrichedRecord) error {
	f.saved += len(records)
	return nil
}

type fakeNotifier struct{ summaries []string }

func (f *fakeNotifier) PublishSummary(_ context.Context, summary string) error {
	f.summaries = append(f.summaries, summary)
	return nil
}

var window = domain.NewDateRange(
	time.Date(2025, time.April, 14, 0, 0, 0, 0, time.UTC),
	time.Date(2025, time.August, 12, 0, 0, 0, 0, time.UTC),
)

func sale(source, parcel string, price int64, sqft int) domain.SaleRecord {
	return domain.SaleRecord{
		ParcelID:     parcel,
		Address:      parcel + " Main St",
		FinishedSqft: &sqft,
		SaleDate:     time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		SalePrice:    decimal.NewFromInt(price),
		Source:       source,
	}
}

func twoCountyCollection() domain.Collection {
	butler := []domain.SaleRecord{sale("Butler", "B1", 150000, 1500), sale("Butler", "B2", 90000, 1200)}
	return domain.Collection{
		Records: butler,
		Results: []domain.SourceResult{
			{Source: "Butler", Records: butler},
			{Source: "Hamilton", Err: errors.New("timeout")},
		},
	}
}

func TestPipelineRunDeliversReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mailer := &fakeMailer{}
	archive := &fakeArchive{}
	notifier := &fakeNotifier{}
	pipeline := NewPipeline(PipelineDeps{
		Source:       &fakeSource{collection: twoCountyCollection()},
		Archive:      archive,
		Chart:        fakeChart{},
		Mailer:       mailer,
		Notifier:     notifier,
		OutputDir:    dir,
		EmailEnabled: true,
	})

	res, err := pipeline.Run(context.Background(), window)
	require.NoError(t, err)

	require.Equal(t, []string{"Hamilton"}, res.Failed)
	require.Len(t, res.Records, 2)
	require.Equal(t, "B2", res.Records[0].ParcelID)
	require.Equal(t, filepath.Join(dir, report.FileName(window)), res.CSVPath)
	require.FileExists(t, res.CSVPath)
	require.Equal(t, strings.TrimSuffix(res.CSVPath, ".csv")+".png", res.ChartPath)

	require.Len(t, mailer.sent, 1)
	msg := mailer.sent[0]
	require.Equal(t, "Real Estate Sales Report - 04/14/2025 to 08/12/2025", msg.Subject)
	require.Equal(t, []string{res.CSVPath, res.ChartPath}, msg.Attachments)
	require.Contains(t, msg.Body, "Butler County:\n- Median Sale Price: $120000\n")
	require.NotContains(t, msg.Body, "Hamilton County")

	require.Equal(t, 2, archive.saved)
	require.Equal(t, []string{res.Summary}, notifier.summaries)
	require.Len(t, res.Summaries, 1)
}

func TestPipelineNothingToReport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var logs bytes.Buffer
	mailer := &fakeMailer{}
	pipeline := NewPipeline(PipelineDeps{
		Source: &fakeSource{collection: domain.Collection{Results: []domain.SourceResult{
			{Source: "Butler", Err: errors.New("boom")},
			{Source: "Hamilton", Err: errors.New("boom")},
		}}},
		Mailer:       mailer,
		Logger:       logging.NewWithWriter(&logs, "info"),
		OutputDir:    dir,
		EmailEnabled: true,
	})

	res, err := pipeline.Run(context.Background(), window)
	require.NoError(t, err)
	require.Empty(t, res.CSVPath)
	require.Empty(t, mailer.sent)
	require.Contains(t, logs.String(), "no sold properties found")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPipelineSinkFailuresAreJoined(t *testing.T) {
	t.Parallel()

	chartErr := errors.New("no font")
	mailErr := errors.New("smtp down")
	mailer := &fakeMailer{err: mailErr}
	pipeline := NewPipeline(PipelineDeps{
		Source:       &fakeSource{collection: twoCountyCollection()},
		Chart:        fakeChart{err: chartErr},
		Mailer:       mailer,
		OutputDir:    t.TempDir(),
		EmailEnabled: true,
	})

	res, err := pipeline.Run(context.Background(), window)
	require.ErrorIs(t, err, chartErr)
	require.ErrorIs(t, err, mailErr)
	require.FileExists(t, res.CSVPath)
	require.Empty(t, res.ChartPath)
	require.Len(t, mailer.sent, 1)
	require.Equal(t, []string{res.CSVPath}, mailer.sent[0].Attachments)
}

func TestPipelineEmailDisabledOnlyLogs(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	mailer := &fakeMailer{}
	pipeline := NewPipeline(PipelineDeps{
		Source:    &fakeSource{collection: twoCountyCollection()},
		Mailer:    mailer,
		Logger:    logging.NewWithWriter(&logs, "info"),
		OutputDir: t.TempDir(),
	})

	_, err := pipeline.Run(context.Background(), window)
	require.NoError(t, err)
	require.Empty(t, mailer.sent)
	require.Contains(t, logs.String(), "would have sent")
}

type fakeDriver struct {
	job     func(time.Time)
	stopped bool
}

func (f *fakeDriver) Start(_ context.Context, job func(time.Time)) error {
	f.job = job
	return nil
}

func (f *fakeDriver) Stop(context.Context) error {
	f.stopped = true
	return nil
}

func TestSchedulerRunsPipelineOverLookbackWindow(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	driver := &fakeDriver{}
	s := NewScheduler(driver, NewPipeline(PipelineDeps{Source: source}), 120, nil)

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)
	driver.job(time.Date(2025, time.August, 12, 9, 30, 0, 0, time.UTC))

	require.Len(t, source.windows, 1)
	require.Equal(t, window, source.windows[0])

	require.NoError(t, s.Stop(context.Background()))
	require.True(t, driver.stopped)
}
