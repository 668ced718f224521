// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ManuGH/hafeeds/internal/config"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/telemetry"
)

// App owns the long-lived runtime lifecycle (coordinators, watchers, reload
// wiring) and delegates server management to Manager.
type App struct {
	logger       zerolog.Logger
	manager      Manager
	cfgHolder    *config.ConfigHolder
	rt           *runtime
	reloadSignal os.Signal
}

// NewApp wires every component from the holder's current configuration.
func NewApp(ctx context.Context, cfgHolder *config.ConfigHolder, opts Options) (*App, error) {
	if cfgHolder == nil {
		return nil, ErrMissingConfig
	}
	cfg := cfgHolder.Get()
	logger := xlog.WithComponent("daemon")

	// Installed before the runtime so the API middleware picks up the provider.
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    "hafeeds",
		ServiceVersion: opts.Version,
		Environment:    cfg.Telemetry.Environment,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	rt, err := buildRuntime(ctx, cfg, opts)
	if err != nil {
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	}

	serverCfg := DefaultServerConfig(cfg.API.ListenAddr)
	if opts.Server != nil {
		serverCfg = *opts.Server
	}
	mgr, err := NewManager(serverCfg, Deps{Logger: logger, APIHandler: rt.api.Handler()})
	if err != nil {
		_ = rt.close()
		_ = tp.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	}
	if tp.Enabled() {
		logger.Info().
			Str(xlog.FieldEvent, "telemetry.enabled").
			Str("exporter", cfg.Telemetry.Exporter).
			Str("endpoint", cfg.Telemetry.Endpoint).
			Float64("sampling_rate", cfg.Telemetry.SamplingRate).
			Msg("tracing enabled")
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)
	mgr.RegisterShutdownHook("config_watcher", func(context.Context) error {
		cfgHolder.Stop()
		return nil
	})

	return &App{
		logger:       logger,
		manager:      mgr,
		cfgHolder:    cfgHolder,
		rt:           rt,
		reloadSignal: syscall.SIGHUP,
	}, nil
}

// Handler returns the API handler served by the App.
func (a *App) Handler() http.Handler { return a.rt.api.Handler() }

// Addr returns the bound listen address once the server is up.
func (a *App) Addr() string { return a.manager.Addr() }

// Run starts all owned background subsystems and blocks until ctx is
// cancelled or a fatal error occurs. Resources are released before it
// returns.
func (a *App) Run(ctx context.Context) error {
	if a.manager == nil {
		return ErrMissingManager
	}
	defer func() {
		if err := a.rt.close(); err != nil {
			a.logger.Warn().Err(err).Str(xlog.FieldEvent, "daemon.close_failed").Msg("releasing resources failed")
		}
	}()

	g, ctx := errgroup.WithContext(ctx)

	// Config watcher is best-effort: startup should not fail if watcher cannot be started.
	if err := a.cfgHolder.StartWatcher(ctx); err != nil {
		a.logger.Warn().Err(err).Str(xlog.FieldEvent, "config.watcher_start_failed").Msg("failed to start config watcher")
	}

	applyCh := make(chan config.AppConfig, 1)
	a.cfgHolder.RegisterListener(applyCh)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case next := <-applyCh:
				a.apply(ctx, next)
			}
		}
	})

	// SIGHUP trigger for manual reload.
	if a.reloadSignal != nil {
		g.Go(func() error {
			hupChan := make(chan os.Signal, 1)
			signal.Notify(hupChan, a.reloadSignal)
			defer signal.Stop(hupChan)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-hupChan:
					a.logger.Info().
						Str(xlog.FieldEvent, "config.reload_signal").
						Str("signal", a.reloadSignal.String()).
						Msg("received reload signal, reloading config")

					if err := a.cfgHolder.Reload(ctx); err != nil {
						a.logger.Warn().
							Err(err).
							Str(xlog.FieldEvent, "config.reload_failed").
							Msg("config reload failed")
					}
				}
			}
		})
	}

	if a.rt.schedule != nil {
		g.Go(func() error { return a.rt.schedule.Start(ctx) })
	}
	if a.rt.reservations != nil {
		g.Go(func() error { return a.rt.reservations.Start(ctx) })
	}

	// Main server lifecycle.
	g.Go(func() error {
		err := a.manager.Start(ctx)
		if err != nil {
			_ = a.manager.Shutdown(context.WithoutCancel(ctx))
		}
		return err
	})

	return g.Wait()
}

// apply hot-applies the parts of a reloaded configuration that do not need
// a restart: the tracked channels and the log level.
func (a *App) apply(ctx context.Context, next config.AppConfig) {
	if lvl, err := zerolog.ParseLevel(next.LogLevel); err == nil && lvl != zerolog.GlobalLevel() {
		zerolog.SetGlobalLevel(lvl)
		a.logger.Info().Str(xlog.FieldEvent, "config.log_level_applied").Str("level", lvl.String()).Msg("log level changed")
	}

	if a.rt.scheduleJob == nil || !next.Schedule.Enabled {
		return
	}
	if slices.Equal(a.rt.scheduleJob.Channels(), next.Schedule.Channels) {
		return
	}

	a.rt.scheduleJob.SetChannels(next.Schedule.Channels)
	a.rt.channels.SetChannels(next.Schedule.Channels, a.rt.scheduleJob.Provider().AvailableChannels())
	a.logger.Info().
		Str(xlog.FieldEvent, "config.channels_applied").
		Strs("channels", next.Schedule.Channels).
		Msg("tracked channels changed, refreshing schedule")

	if err := a.rt.schedule.Refresh(ctx); err != nil {
		a.logger.Warn().Err(err).Str(xlog.FieldEvent, "schedule.refresh_failed").Msg("refresh after channel change failed")
	}
}
