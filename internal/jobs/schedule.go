// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package jobs implements the per-cycle work of the schedule coordinator:
// the bounded channel fan-out with cache fallback and the snapshot merge.
package jobs

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
	"github.com/ManuGH/hafeeds/internal/provider"
	"github.com/ManuGH/hafeeds/internal/store"
)

// ErrBatchTimeout aborts a cycle whose channel fan-out exceeded its ceiling.
var ErrBatchTimeout error = batchTimeoutError{}

type batchTimeoutError struct{}

func (batchTimeoutError) Error() string { return "jobs: fetch batch exceeded its time ceiling" }
func (batchTimeoutError) Timeout() bool { return true }

const (
	DefaultBatchTimeout   = 120 * time.Second
	DefaultPersistTimeout = 30 * time.Second
)

// ChannelResult is the outcome of one channel within a cycle.
type ChannelResult struct {
	Channel  string
	Programs []epg.Program
	Source   epg.Source
	Err      error
}

// ScheduleConfig configures a ScheduleJob.
type ScheduleConfig struct {
	Channels       []string
	DaysAhead      int
	BatchTimeout   time.Duration
	PersistTimeout time.Duration
	Now            func() time.Time
}

// ScheduleJob fetches every tracked channel concurrently. A channel whose
// fetch fails or comes back empty is answered from the store; fresh data is
// written back to the store in the background.
type ScheduleJob struct {
	provider       provider.Provider
	store          store.Store
	daysAhead      int
	batchTimeout   time.Duration
	persistTimeout time.Duration
	now            func() time.Time

	mu       sync.RWMutex
	channels []string

	// inflight tracks the fan-out and every background save.
	inflight sync.WaitGroup
}

// NewScheduleJob creates the job.
func NewScheduleJob(p provider.Provider, s store.Store, cfg ScheduleConfig) *ScheduleJob {
	if cfg.DaysAhead <= 0 {
		cfg.DaysAhead = provider.DefaultDaysAhead
	}
	if cfg.BatchTimeout <= 0 {
		cfg.BatchTimeout = DefaultBatchTimeout
	}
	if cfg.PersistTimeout <= 0 {
		cfg.PersistTimeout = DefaultPersistTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ScheduleJob{
		provider:       p,
		store:          s,
		daysAhead:      cfg.DaysAhead,
		batchTimeout:   cfg.BatchTimeout,
		persistTimeout: cfg.PersistTimeout,
		now:            cfg.Now,
		channels:       append([]string(nil), cfg.Channels...),
	}
}

// Channels returns the tracked channel ids.
func (j *ScheduleJob) Channels() []string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return append([]string(nil), j.channels...)
}

// SetChannels replaces the tracked channel list. It takes effect with the
// next cycle.
func (j *ScheduleJob) SetChannels(channels []string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.channels = append([]string(nil), channels...)
}

// Provider returns the configured provider.
func (j *ScheduleJob) Provider() provider.Provider { return j.provider }

// Wait blocks until background saves have finished.
func (j *ScheduleJob) Wait() {
	j.inflight.Wait()
}

// Run performs Fetch and Merge.
func (j *ScheduleJob) Run(ctx context.Context) (*epg.Snapshot, error) {
	results, err := j.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return j.Merge(ctx, results)
}

// Fetch runs one fetch per channel under the batch ceiling. If the ceiling
// is hit nothing is returned, so the caller keeps its previous snapshot.
func (j *ScheduleJob) Fetch(ctx context.Context) ([]ChannelResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := xlog.WithComponentFromContext(ctx, "jobs")
	channels := j.Channels()

	logger.Info().
		Str(xlog.FieldEvent, "refresh.start").
		Str(xlog.FieldProvider, j.provider.Name()).
		Strs("channels", channels).
		Msg("fetching schedules")

	batchCtx, cancel := context.WithTimeout(ctx, j.batchTimeout)
	defer cancel()

	results := make([]ChannelResult, len(channels))
	done := make(chan struct{})

	j.inflight.Add(1)
	go func() {
		defer j.inflight.Done()
		defer close(done)

		var g errgroup.Group
		for i, ch := range channels {
			g.Go(func() error {
				results[i] = j.fetchChannel(batchCtx, ch)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		return results, nil
	case <-batchCtx.Done():
	}

	// The batch may have completed at the same instant.
	select {
	case <-done:
		return results, nil
	default:
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Error().
		Str(xlog.FieldEvent, "refresh.batch_timeout").
		Dur("ceiling", j.batchTimeout).
		Msg("fetch batch exceeded its ceiling, keeping previous snapshot")
	return nil, ErrBatchTimeout
}

func (j *ScheduleJob) fetchChannel(ctx context.Context, ch string) ChannelResult {
	logger := xlog.WithComponentFromContext(ctx, "jobs").With().Str(xlog.FieldChannel, ch).Logger()

	progs, err := j.provider.FetchProgram(ctx, ch, j.daysAhead)
	if err == nil && len(progs) > 0 {
		j.persist(ctx, ch, progs)
		return ChannelResult{Channel: ch, Programs: progs, Source: epg.SourceFresh}
	}

	if err != nil {
		logger.Warn().Err(err).
			Str(xlog.FieldEvent, "fetch.channel_failed").
			Msg("fetch failed, falling back to cache")
	} else {
		logger.Info().
			Str(xlog.FieldEvent, "fetch.channel_empty").
			Msg("fetch returned no entries, falling back to cache")
	}

	cached := j.store.Load(ctx, ch)
	if len(cached) == 0 {
		return ChannelResult{Channel: ch, Source: epg.SourceEmpty, Err: err}
	}
	metrics.RecordCacheFallback(ch)
	logger.Info().
		Str(xlog.FieldEvent, "fetch.cache_fallback").
		Int(xlog.FieldCount, len(cached)).
		Msg("using cached entries")
	return ChannelResult{Channel: ch, Programs: cached, Source: epg.SourceCache, Err: err}
}

// persist saves fresh entries without holding up the cycle.
func (j *ScheduleJob) persist(ctx context.Context, ch string, progs []epg.Program) {
	j.inflight.Add(1)
	go func() {
		defer j.inflight.Done()

		pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), j.persistTimeout)
		defer cancel()

		if err := j.store.Save(pctx, ch, progs); err != nil {
			logger := xlog.WithComponentFromContext(pctx, "jobs")
			logger.Warn().Err(err).
				Str(xlog.FieldEvent, "store.save_failed").
				Str(xlog.FieldChannel, ch).
				Msg("failed to persist fresh entries")
		}
	}()
}

// Merge assembles the snapshot from per-channel results.
func (j *ScheduleJob) Merge(ctx context.Context, results []ChannelResult) (*epg.Snapshot, error) {
	snap := &epg.Snapshot{
		Channels:  make(map[string][]epg.Program, len(results)),
		Sources:   make(map[string]epg.Source, len(results)),
		UpdatedAt: j.now(),
	}

	counts := map[epg.Source]int{}
	for _, r := range results {
		if r.Channel == "" {
			continue
		}
		snap.Channels[r.Channel] = r.Programs
		snap.Sources[r.Channel] = r.Source
		counts[r.Source]++
		metrics.SetSnapshotProgrammes(r.Channel, len(r.Programs))
	}

	logger := xlog.WithComponentFromContext(ctx, "jobs")
	logger.Info().
		Str(xlog.FieldEvent, "refresh.merged").
		Int("fresh", counts[epg.SourceFresh]).
		Int("cached", counts[epg.SourceCache]).
		Int("empty", counts[epg.SourceEmpty]).
		Int("programmes", snap.Total()).
		Msg("schedule snapshot assembled")
	return snap, nil
}
