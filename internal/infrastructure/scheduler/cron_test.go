package scheduler

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"countysales/internal/logging"
)

func TestCronSchedulerRunsImmediatelyAndRepeats(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(time.Second, time.UTC, nil)
	require.Equal(t, "@every 1s", s.spec)

	var runs atomic.Int32
	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	require.Equal(t, after, runs.Load())
}

func TestCronSchedulerUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EST", -5*60*60)
	s := NewCronScheduler(time.Hour, loc, nil)
	ran := make(chan time.Time, 1)
	require.NoError(t, s.Start(context.Background(), func(at time.Time) { ran <- at }))

	select {
	case at := <-ran:
		require.Equal(t, loc, at.Location())
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
	require.NoError(t, s.Stop(context.Background()))
}

func TestCronSchedulerStopWaitsForRunningJob(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	s := NewCronScheduler(time.Hour, time.UTC, nil)
	require.NoError(t, s.Start(context.Background(), func(time.Time) {
		close(started)
		<-release
		finished.Store(true)
	}))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, s.Stop(ctx), context.DeadlineExceeded)

	close(release)
	require.Eventually(t, finished.Load, time.Second, 5*time.Millisecond)
}

func TestCronSchedulerStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler(time.Hour, nil, nil)
	ran := make(chan struct{}, 1)
	require.NoError(t, s.Start(ctx, func(time.Time) { ran <- struct{}{} }))
	<-ran

	cancel()
	require.NoError(t, s.Stop(context.Background()))
}

func TestCronLoggerForwardsToSlog(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	l := cronLogger{logger: logging.NewWithWriter(&logs, "debug")}
	l.Info("wake", "entry", 1)
	l.Error(errors.New("boom"), "panic")

	out := logs.String()
	require.Contains(t, out, `msg="cron: wake" entry=1`)
	require.Contains(t, out, `msg="cron: panic" err=boom`)
}

func TestCronSchedulerNilJobAndDoubleStop(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(0, time.UTC, nil)
	require.Equal(t, "@every 24h0m0s", s.spec)
	require.NoError(t, s.Start(context.Background(), nil))
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, s.Stop(context.Background()))
}
