package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"countysales/internal/config"
	"countysales/internal/county"
	"countysales/internal/domain"
	"countysales/internal/infrastructure/chart"
	"countysales/internal/infrastructure/mail"
	"countysales/internal/infrastructure/portal"
	"countysales/internal/infrastructure/scheduler"
	"countysales/internal/infrastructure/storage"
	"countysales/internal/infrastructure/telegram"
	"countysales/internal/logging"
	"countysales/internal/ports"
	"countysales/internal/telemetry"
	"countysales/internal/usecase"
)

const serviceName = "salesreport"

// adapterFactories lists every county the binary knows how to scrape.
var adapterFactories = map[string]func(portal.Options) county.Adapter{
	"butler":   func(o portal.Options) county.Adapter { return portal.NewButler(o) },
	"hamilton": func(o portal.Options) county.Adapter { return portal.NewHamilton(o) },
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *county.Registry
	enabled  []county.Adapter
	pipeline *usecase.Pipeline
	db       *sql.DB
	tel      telemetry.Telemetry
}

// New builds the registry from the configured counties and connects the
// optional sinks. Unknown county names are logged and skipped.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry, enabled := buildRegistry(cfg, baseLogger)
	source := portal.NewCountySource(enabled, baseLogger.With("component", "source"))

	tel, err := telemetry.Setup(ctx, serviceName, cfg.Telemetry, baseLogger.With("component", "telemetry"))
	if err != nil {
		return nil, fmt.Errorf("setup telemetry: %w", err)
	}
	a := &Application{cfg: cfg, logger: baseLogger, registry: registry, enabled: enabled, tel: tel}

	var archive ports.ReportArchive
	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, errors.Join(err, a.Close())
		}
		a.db = db
		repo := storage.NewPostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, errors.Join(err, a.Close())
		}
		archive = repo
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:       source,
		Archive:      archive,
		Chart:        chart.NewRenderer(),
		Mailer:       mail.NewMailer(cfg.SMTP, cfg.Email),
		Notifier:     notifier,
		Logger:       baseLogger.With("component", "pipeline"),
		OutputDir:    cfg.Report.OutputDir,
		EmailEnabled: cfg.Email.Enabled,
	})
	return a, nil
}

func buildRegistry(cfg config.Config, logger *slog.Logger) (*county.Registry, []county.Adapter) {
	overrides := map[string]string{}
	for _, c := range cfg.Counties {
		if c.BaseURL != "" {
			overrides[c.Name] = c.BaseURL
		}
	}

	registry := county.NewRegistry()
	for _, name := range []string{"butler", "hamilton"} {
		registry.Register(adapterFactories[name](portal.Options{
			BaseURL:   overrides[name],
			Timeout:   cfg.HTTP.Timeout,
			UserAgent: cfg.HTTP.UserAgent,
			Logger:    logger.With("component", "county."+name),
		}))
	}

	enabled := make([]county.Adapter, 0, len(cfg.Counties))
	for _, c := range cfg.Counties {
		adapter, err := registry.Resolve(c.Name)
		if err != nil {
			if guess, ok := registry.Suggest(c.Name); ok {
				logger.Warn("skipping county", "county", c.Name, "did_you_mean", guess, "err", err)
			} else {
				logger.Warn("skipping county", "county", c.Name, "err", err)
			}
			continue
		}
		enabled = append(enabled, adapter)
	}
	return registry, enabled
}

// Registry exposes every adapter the binary was built with.
func (a *Application) Registry() *county.Registry {
	return a.registry
}

// Enabled lists the adapter names a run visits, in run order.
func (a *Application) Enabled() []string {
	out := make([]string, 0, len(a.enabled))
	for _, adapter := range a.enabled {
		out = append(out, adapter.Name())
	}
	return out
}

// DefaultWindow is the configured lookback ending on now.
func (a *Application) DefaultWindow(now time.Time) domain.DateRange {
	return domain.LastDays(now.In(a.cfg.Schedule.Location()), a.cfg.Report.LookbackDays)
}

// Run performs a single report for window.
func (a *Application) Run(ctx context.Context, window domain.DateRange) (usecase.RunResult, error) {
	return a.pipeline.Run(ctx, window)
}

// Schedule repeats the report every schedule.interval until ctx ends.
func (a *Application) Schedule(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Schedule.Interval, a.cfg.Schedule.Location(), a.logger.With("component", "cron"))
	s := usecase.NewScheduler(driver, a.pipeline, a.cfg.Report.LookbackDays, a.logger.With("component", "scheduler"))
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "interval", a.cfg.Schedule.Interval)

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.Stop(stopCtx)
}

// Close releases the archive connection and flushes telemetry.
func (a *Application) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
	}
	errs = append(errs, a.tel.Shutdown(ctx))
	return errors.Join(errs...)
}
