// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package coordinator runs polling cycles on a fixed interval and publishes
// their result as an immutable snapshot.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/health"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
	"github.com/ManuGH/hafeeds/internal/telemetry"
)

const tracerName = "hafeeds/coordinator"

// State is the phase of the current polling cycle.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateMerging   State = "merging"
	StatePublished State = "published"
)

// Job is one polling cycle split into its two phases. Fetch talks to the
// outside world; Merge turns the raw result into the snapshot.
type Job[R, T any] interface {
	Fetch(ctx context.Context) (R, error)
	Merge(ctx context.Context, raw R) (T, error)
}

// Status describes the coordinator for health checks and the API.
type Status struct {
	Name         string        `json:"name"`
	State        State         `json:"state"`
	Interval     time.Duration `json:"interval"`
	Cycles       int           `json:"cycles"`
	Failures     int           `json:"failures"`
	LastAttempt  time.Time     `json:"last_attempt,omitempty"`
	LastSuccess  time.Time     `json:"last_success,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	LastJobID    string        `json:"last_job_id,omitempty"`
}

// Option configures a Coordinator.
type Option func(*options)

type options struct {
	clock clock.Clock
}

// WithClock replaces the wall clock driving the interval.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// Coordinator owns the published snapshot of one data domain. Cycles are
// serialized; readers load the snapshot with a single atomic read and never
// see a partially built value.
type Coordinator[R, T any] struct {
	name     string
	interval time.Duration
	job      Job[R, T]
	clock    clock.Clock

	snapshot atomic.Pointer[T]
	runMu    sync.Mutex

	mu        sync.RWMutex
	status    Status
	listeners []func(T)
}

// New creates a coordinator. interval must be positive.
func New[R, T any](name string, interval time.Duration, job Job[R, T], opts ...Option) *Coordinator[R, T] {
	o := options{clock: clock.Real{}}
	for _, opt := range opts {
		opt(&o)
	}
	return &Coordinator[R, T]{
		name:     name,
		interval: interval,
		job:      job,
		clock:    o.clock,
		status:   Status{Name: name, State: StateIdle, Interval: interval},
	}
}

// Name identifies the coordinator in logs, metrics and health checks.
func (c *Coordinator[R, T]) Name() string { return c.name }

// OnPublish registers fn to run after each successful publish, in the
// publishing goroutine.
func (c *Coordinator[R, T]) OnPublish(fn func(T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns the last published value. ok is false before the first
// successful cycle.
func (c *Coordinator[R, T]) Snapshot() (T, bool) {
	p := c.snapshot.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Status returns a copy of the current status.
func (c *Coordinator[R, T]) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// State returns the phase of the current or last cycle.
func (c *Coordinator[R, T]) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status.State
}

// Start runs a cycle immediately and then every interval until ctx is done.
// Cycle errors are logged and do not stop the loop.
func (c *Coordinator[R, T]) Start(ctx context.Context) error {
	if c.interval <= 0 {
		return fmt.Errorf("coordinator %s: interval must be positive", c.name)
	}
	logger := xlog.WithComponentFromContext(ctx, "coordinator").With().Str(xlog.FieldCoordinator, c.name).Logger()
	logger.Info().
		Str(xlog.FieldEvent, "coordinator.start").
		Dur("interval", c.interval).
		Msg("coordinator started")

	_ = c.Refresh(ctx)

	timer := c.clock.NewTimer(c.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Str(xlog.FieldEvent, "coordinator.stop").Msg("coordinator stopped")
			return nil
		case <-timer.C():
			_ = c.Refresh(ctx)
			timer.Reset(c.interval)
		}
	}
}

// Refresh runs one cycle now. Concurrent calls and scheduled cycles are
// serialized. On error the previously published snapshot stays in place.
func (c *Coordinator[R, T]) Refresh(ctx context.Context) error {
	c.runMu.Lock()
	defer c.runMu.Unlock()

	jobID := uuid.NewString()
	ctx = xlog.ContextWithJobID(ctx, jobID)
	logger := xlog.WithComponentFromContext(ctx, "coordinator").With().Str(xlog.FieldCoordinator, c.name).Logger()

	start := c.clock.Now()
	var cycle int
	c.update(func(s *Status) {
		s.State = StateFetching
		s.LastAttempt = start
		s.LastJobID = jobID
		s.Cycles++
		cycle = s.Cycles
	})

	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "coordinator.refresh",
		trace.WithAttributes(telemetry.CoordinatorAttributes(c.name, jobID, int64(cycle))...))
	defer span.End()

	raw, err := c.job.Fetch(ctx)
	if err != nil {
		return c.fail(ctx, start, "fetch", err)
	}

	c.setState(StateMerging)
	next, err := c.job.Merge(ctx, raw)
	if err != nil {
		return c.fail(ctx, start, "merge", err)
	}

	c.snapshot.Store(&next)
	end := c.clock.Now()
	c.update(func(s *Status) {
		s.State = StatePublished
		s.LastSuccess = end
		s.LastDuration = end.Sub(start)
		s.LastError = ""
	})
	metrics.RecordRefresh(c.name, metrics.OutcomeSuccess, end.Sub(start))
	metrics.RecordPublish(c.name, end)

	logger.Info().
		Str(xlog.FieldEvent, "refresh.published").
		Dur("duration", end.Sub(start)).
		Msg("snapshot published")

	c.mu.RLock()
	listeners := slices.Clone(c.listeners)
	c.mu.RUnlock()
	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

func (c *Coordinator[R, T]) fail(ctx context.Context, start time.Time, phase string, err error) error {
	end := c.clock.Now()
	outcome := metrics.OutcomeFailure
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		outcome = metrics.OutcomeTimeout
	}

	prev := StateIdle
	if c.snapshot.Load() != nil {
		prev = StatePublished
	}
	c.update(func(s *Status) {
		s.State = prev
		s.Failures++
		s.LastDuration = end.Sub(start)
		s.LastError = err.Error()
	})
	metrics.RecordRefresh(c.name, outcome, end.Sub(start))

	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetAttributes(telemetry.ErrorAttributes(err, phase)...)
	span.SetStatus(codes.Error, phase+" failed")

	logger := xlog.WithComponentFromContext(ctx, "coordinator")
	logger.Error().Err(err).
		Str(xlog.FieldEvent, "refresh.failed").
		Str(xlog.FieldCoordinator, c.name).
		Str("phase", phase).
		Bool("kept_previous", prev == StatePublished).
		Msg("cycle failed, previous snapshot retained")
	return fmt.Errorf("%s %s: %w", c.name, phase, err)
}

// isTimeout matches errors that mark themselves as timeouts.
func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func (c *Coordinator[R, T]) setState(st State) {
	c.update(func(s *Status) { s.State = st })
}

func (c *Coordinator[R, T]) update(fn func(*Status)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(&c.status)
}

// Check implements health.Checker. The coordinator is unhealthy until its
// first publish and degraded when the last cycle failed or the snapshot is
// older than two intervals.
func (c *Coordinator[R, T]) Check(_ context.Context) health.CheckResult {
	st := c.Status()
	if _, ok := c.Snapshot(); !ok {
		res := health.CheckResult{Status: health.StatusUnhealthy, Message: "no snapshot published yet"}
		if st.LastError != "" {
			res.Error = st.LastError
		}
		return res
	}
	if st.LastError != "" {
		return health.CheckResult{Status: health.StatusDegraded, Message: "last cycle failed", Error: st.LastError}
	}
	if age := c.clock.Now().Sub(st.LastSuccess); c.interval > 0 && age > 2*c.interval {
		return health.CheckResult{Status: health.StatusDegraded, Message: fmt.Sprintf("snapshot is %s old", age.Round(time.Second))}
	}
	return health.CheckResult{Status: health.StatusHealthy, Message: "snapshot current"}
}
