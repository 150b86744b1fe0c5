package scheduler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"countysales/internal/ports"
)

// CronScheduler runs a job immediately and then on an "@every" cron entry
// until stopped or the context ends. A run still in progress when the next
// tick fires causes that tick to be skipped.
type CronScheduler struct {
	spec   string
	loc    *time.Location
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	stop    chan struct{}
	initial sync.WaitGroup
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler; a non-positive interval means daily.
func NewCronScheduler(interval time.Duration, loc *time.Location, logger *slog.Logger) *CronScheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CronScheduler{
		spec:   fmt.Sprintf("@every %s", interval),
		loc:    loc,
		logger: logger,
	}
}

// Start registers job and starts the cron loop. Calling Start twice is a no-op.
func (s *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}

	logger := cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithLogger(logger),
	)
	run := cron.NewChain(cron.SkipIfStillRunning(logger)).Then(cron.FuncJob(func() {
		job(time.Now().In(s.loc))
	}))
	if _, err := c.AddJob(s.spec, run); err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	stop := make(chan struct{})
	s.cron, s.stop = c, stop
	c.Start()

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		run.Run()
	}()

	go func() {
		select {
		case <-ctx.Done():
			c.Stop()
		case <-stop:
		}
	}()

	return nil
}

// Stop halts the cron loop and waits for in-flight runs to finish, or for
// ctx to expire.
func (s *CronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c, stop := s.cron, s.stop
	s.cron, s.stop = nil, nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	close(stop)
	stopped := c.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		s.initial.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}
