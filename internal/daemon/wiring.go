// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ManuGH/hafeeds/internal/api"
	"github.com/ManuGH/hafeeds/internal/cache"
	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/config"
	"github.com/ManuGH/hafeeds/internal/coordinator"
	"github.com/ManuGH/hafeeds/internal/epg"
	"github.com/ManuGH/hafeeds/internal/health"
	"github.com/ManuGH/hafeeds/internal/jobs"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/metrics"
	"github.com/ManuGH/hafeeds/internal/provider"
	"github.com/ManuGH/hafeeds/internal/reservation"
	"github.com/ManuGH/hafeeds/internal/sensor"
	"github.com/ManuGH/hafeeds/internal/store"
)

const (
	scheduleCoordinator    = "schedule"
	reservationCoordinator = "reservations"

	feedCacheCleanup = 10 * time.Minute
)

type (
	scheduleCoord    = coordinator.Coordinator[[]jobs.ChannelResult, *epg.Snapshot]
	reservationCoord = coordinator.Coordinator[[]reservation.Record, *reservation.Snapshot]
)

// Options are the injectable collaborators of an App. Zero values select
// production defaults.
type Options struct {
	Version string
	// HTTPClient is shared by every upstream client.
	HTTPClient *http.Client
	Clock      clock.Clock
	// Server overrides the HTTP server settings derived from the config.
	Server *ServerConfig
}

// runtime holds every long-lived component built from one configuration.
// Schedule and reservation parts are nil when their domain is disabled.
type runtime struct {
	store     store.Store
	feedCache *cache.MemoryCache

	scheduleJob *jobs.ScheduleJob
	schedule    *scheduleCoord
	channels    *sensor.Channels

	reservations *reservationCoord
	registry     *sensor.Registry

	health *health.Manager
	api    *api.Server
}

func buildRuntime(ctx context.Context, cfg config.AppConfig, opts Options) (_ *runtime, err error) {
	logger := xlog.WithComponent("daemon")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real{}
	}

	rt := &runtime{health: health.NewManager(opts.Version)}
	defer func() {
		if err != nil {
			_ = rt.close()
		}
	}()

	rt.store, err = store.New(ctx, store.Config{
		Backend: cfg.Cache.Backend,
		Dir:     cfg.CacheDir(),
		Redis: store.RedisOptions{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		},
	})
	if err != nil {
		metrics.RecordStoreError("open")
		return nil, fmt.Errorf("open schedule cache: %w", err)
	}
	if cfg.Cache.Backend != store.BackendRedis {
		rt.health.RegisterChecker(health.NewDirChecker("schedule_cache", cfg.CacheDir()))
	}

	if cfg.Schedule.Enabled {
		if err := rt.buildSchedule(cfg, loc, clk, opts.HTTPClient); err != nil {
			return nil, err
		}
	}
	if cfg.Reservations.Enabled {
		if err := rt.buildReservations(cfg, loc, clk, opts.HTTPClient); err != nil {
			return nil, err
		}
	}

	deps := api.Deps{
		Health:   rt.health,
		Channels: rt.channels,
		Registry: rt.registry,
		Store:    rt.store,
	}
	if rt.schedule != nil {
		deps.Schedule = rt.schedule
	}
	if rt.reservations != nil {
		deps.Reservations = rt.reservations
	}
	rt.api = api.New(api.Config{
		RateLimit: cfg.API.RateLimit,
		Version:   opts.Version,
		Tracing:   cfg.Telemetry.Enabled,
	}, deps)

	logger.Info().
		Str(xlog.FieldEvent, "daemon.wired").
		Str(xlog.FieldBackend, rt.store.Backend()).
		Bool("schedule", rt.schedule != nil).
		Bool("reservations", rt.reservations != nil).
		Str("timezone", loc.String()).
		Msg("runtime components wired")
	return rt, nil
}

func (rt *runtime) buildSchedule(cfg config.AppConfig, loc *time.Location, clk clock.Clock, client *http.Client) error {
	s := cfg.Schedule
	rt.feedCache = cache.NewMemoryCache(feedCacheCleanup, cache.WithNow(clk.Now))

	p, err := provider.New(provider.Options{
		Source:            s.Source,
		BaseURL:           s.BaseURL,
		User:              s.User,
		FeedURL:           s.FeedURL,
		Timeout:           s.RequestTimeout,
		FeedTimeout:       s.FeedTimeout,
		FeedTTL:           s.FeedTTL,
		RequestsPerSecond: s.RequestsPerSecond,
		Location:          loc,
		HTTPClient:        client,
		Cache:             rt.feedCache,
		Now:               clk.Now,
	})
	if err != nil {
		return err
	}

	rt.scheduleJob = jobs.NewScheduleJob(p, rt.store, jobs.ScheduleConfig{
		Channels:     s.Channels,
		DaysAhead:    s.DaysAhead,
		BatchTimeout: s.BatchTimeout,
		Now:          clk.Now,
	})
	rt.schedule = coordinator.New(scheduleCoordinator, s.Interval, coordinator.Job[[]jobs.ChannelResult, *epg.Snapshot](rt.scheduleJob), coordinator.WithClock(clk))

	names := p.AvailableChannels()
	if s.ExportXMLTV != "" {
		rt.schedule.OnPublish(jobs.XMLTVExporter(s.ExportXMLTV, names, loc))
	}
	rt.channels = sensor.NewChannels(s.Channels, names, rt.schedule.Snapshot, clk, loc)
	rt.health.RegisterChecker(rt.schedule)
	return nil
}

func (rt *runtime) buildReservations(cfg config.AppConfig, loc *time.Location, clk clock.Clock, client *http.Client) error {
	r := cfg.Reservations
	locale, err := reservation.ParseLocale(r.StatusLocale)
	if err != nil {
		return err
	}

	searcher := reservation.NewClient(reservation.ClientOptions{
		URL:        r.URL,
		Login:      r.Login,
		Password:   r.Password,
		HotelID:    r.HotelID,
		Timeout:    r.Timeout,
		HTTPClient: client,
	})
	job := reservation.NewJob(searcher, reservation.JobConfig{
		HotelID:   r.HotelID,
		Locale:    locale,
		DaysAhead: r.DaysAhead,
		Location:  loc,
		Now:       clk.Now,
	})
	rt.reservations = coordinator.New(reservationCoordinator, r.Interval, coordinator.Job[[]reservation.Record, *reservation.Snapshot](job), coordinator.WithClock(clk))

	rt.registry = sensor.NewRegistry(r.HotelID)
	logger := xlog.WithComponent("daemon").With().Str(xlog.FieldHotelID, r.HotelID).Logger()
	rt.reservations.OnPublish(func(snap *reservation.Snapshot) {
		added := rt.registry.Sync(snap)
		if len(added) > 0 {
			logger.Info().
				Str(xlog.FieldEvent, "sensor.registered").
				Strs("reservations", added).
				Int("total", rt.registry.Len()).
				Msg("reservation sensors registered")
		}
	})
	rt.health.RegisterChecker(rt.reservations)
	return nil
}

// close drains background writes and releases the cache and the store.
func (rt *runtime) close() error {
	if rt.scheduleJob != nil {
		rt.scheduleJob.Wait()
	}
	if rt.feedCache != nil {
		rt.feedCache.Stop()
	}
	if c, ok := rt.store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
