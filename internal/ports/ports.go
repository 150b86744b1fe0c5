package ports

import (
	"context"
	"time"

	"countysales/internal/domain"
)

// SalesSource pulls normalized sales from every configured county.
type SalesSource interface {
	FetchSales(ctx context.Context, window domain.DateRange) domain.Collection
}

// ReportArchive stores each run's enriched rows for later inspection.
type ReportArchive interface {
	SaveReport(ctx context.Context, window domain.DateRange, records []domain.EnrichedRecord) error
}

// ChartRenderer draws an image next to a finished report CSV and returns its path.
type ChartRenderer interface {
	Render(ctx context.Context, csvPath string) (string, error)
}

// Message is one outbound report email.
type Message struct {
	Subject     string
	Body        string
	Attachments []string
}

// Mailer delivers the report to the configured recipients.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Notifier pushes the summary text to a chat channel.
type Notifier interface {
	PublishSummary(ctx context.Context, summary string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
