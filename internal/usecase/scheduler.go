package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"countysales/internal/domain"
	"countysales/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver       ports.Scheduler
	pipeline     *Pipeline
	lookbackDays int
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs. Each run covers
// the lookbackDays ending on the trigger time.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, lookbackDays int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scheduler{driver: driver, pipeline: pipeline, lookbackDays: lookbackDays, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		window := domain.LastDays(trigger, s.lookbackDays)
		if _, err := s.pipeline.Run(ctx, window); err != nil {
			s.logger.Error("scheduled run failed", "err", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
