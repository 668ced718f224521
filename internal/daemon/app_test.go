// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/config"
	"github.com/ManuGH/hafeeds/internal/sensor"
	"github.com/ManuGH/hafeeds/internal/store"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<tv>
  <programme start="20250314073000 +0000" stop="20250314090000 +0000" channel="prima.cz"><title>Ráno</title></programme>
  <programme start="20250314200000 +0000" channel="prima.cz"><title>Večer</title></programme>
  <programme start="20250314060000 +0000" channel="nova.cz"><title>Snídaně</title></programme>
</tv>`

const testReservations = `<?xml version="1.0" encoding="UTF-8"?>
<response>
  <reservations>
    <reservation>
      <resId>42</resId>
      <voucher>V-42</voucher>
      <term><from>2025-03-14 14:00:00</from><to>2025-03-16 10:00:00</to></term>
      <price>100.00</price>
    </reservation>
    <reservation>
      <resId>43</resId>
      <voucher>V-43</voucher>
      <term><from>2025-03-15 14:00:00</from><to>2025-03-17 10:00:00</to></term>
    </reservation>
  </reservations>
</response>`

var testNow = time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)

type upstreams struct {
	feedHits        atomic.Int32
	reservationHits atomic.Int32
	srv             *httptest.Server
}

func newUpstreams(t *testing.T) *upstreams {
	t.Helper()
	u := &upstreams{}
	mux := http.NewServeMux()
	mux.HandleFunc("/xmltv.xml", func(w http.ResponseWriter, _ *http.Request) {
		u.feedHits.Add(1)
		_, _ = w.Write([]byte(testFeed))
	})
	mux.HandleFunc("/reservations", func(w http.ResponseWriter, _ *http.Request) {
		u.reservationHits.Add(1)
		_, _ = w.Write([]byte(testReservations))
	})
	u.srv = httptest.NewServer(mux)
	t.Cleanup(u.srv.Close)
	return u
}

func testConfig(t *testing.T, u *upstreams) config.AppConfig {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Timezone = "UTC"
	cfg.API.ListenAddr = "127.0.0.1:0"
	cfg.Schedule.Source = "xmltv"
	cfg.Schedule.FeedURL = u.srv.URL + "/xmltv.xml"
	cfg.Schedule.Channels = []string{"prima", "nova"}
	cfg.Schedule.DaysAhead = 2
	cfg.Reservations.Enabled = true
	cfg.Reservations.URL = u.srv.URL + "/reservations"
	cfg.Reservations.Login = "front"
	cfg.Reservations.HotelID = "731"
	require.NoError(t, config.Validate(cfg))
	return cfg
}

type runningApp struct {
	app    *App
	base   string
	client *http.Client
	cancel context.CancelFunc
	errCh  chan error
}

func startApp(t *testing.T, holder *config.ConfigHolder, fake *clock.Fake) *runningApp {
	t.Helper()
	srvCfg := testServerConfig()
	app, err := NewApp(context.Background(), holder, Options{
		Version: "test",
		Clock:   fake,
		Server:  &srvCfg,
	})
	require.NoError(t, err)
	app.reloadSignal = nil

	ctx, cancel := context.WithCancel(context.Background())
	r := &runningApp{
		app:    app,
		client: &http.Client{Timeout: 5 * time.Second},
		cancel: cancel,
		errCh:  make(chan error, 1),
	}
	go func() { r.errCh <- app.Run(ctx) }()
	r.base = "http://" + waitForAddr(t, app.Addr)

	t.Cleanup(func() {
		r.stop(t)
		r.client.CloseIdleConnections()
	})
	return r
}

func (r *runningApp) stop(t *testing.T) {
	t.Helper()
	if r.cancel == nil {
		return
	}
	r.cancel()
	r.cancel = nil
	select {
	case err := <-r.errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}

func (r *runningApp) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := r.client.Get(r.base + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (r *runningApp) waitReady(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool {
		return r.get(t, "/readyz", nil) == http.StatusOK
	}, 10*time.Second, 20*time.Millisecond)
}

func TestApp_EndToEnd(t *testing.T) {
	u := newUpstreams(t)
	cfg := testConfig(t, u)
	r := startApp(t, config.NewConfigHolder(cfg, nil, ""), clock.NewFake(testNow))
	r.waitReady(t)

	var current sensor.Sensor
	require.Equal(t, http.StatusOK, r.get(t, "/api/v1/channels/prima/current", &current))
	require.NotNil(t, current.State)
	assert.Equal(t, "Ráno", *current.State)

	var sensors struct {
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, r.get(t, "/api/v1/sensors", &sensors))
	// 2 channels x 3 kinds + 2 reservations
	assert.Equal(t, 8, sensors.Count)

	var res struct {
		Count  int  `json:"count"`
		LastOK bool `json:"last_ok"`
	}
	require.Equal(t, http.StatusOK, r.get(t, "/api/v1/reservations", &res))
	assert.Equal(t, 2, res.Count)
	assert.True(t, res.LastOK)

	r.stop(t)

	// Background saves were drained before Run returned.
	fs, err := store.NewFileStore(cfg.CacheDir())
	require.NoError(t, err)
	assert.NotEmpty(t, fs.Load(context.Background(), "prima"))
	assert.Equal(t, int32(1), u.feedHits.Load(), "both channels share one feed download")
	assert.Equal(t, int32(1), u.reservationHits.Load())
}

func TestApp_ReloadAppliesChannels(t *testing.T) {
	u := newUpstreams(t)
	cfg := testConfig(t, u)
	cfg.Reservations.Enabled = false

	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, cfg, "prima")
	loaded, err := config.Load(path)
	require.NoError(t, err)

	holder := config.NewConfigHolder(loaded, nil, path)
	r := startApp(t, holder, clock.NewFake(testNow))
	r.waitReady(t)

	assert.Equal(t, http.StatusNotFound, r.get(t, "/api/v1/channels/nova/current", nil))

	writeConfig(t, path, cfg, "prima", "nova")
	require.NoError(t, holder.Reload(context.Background()))

	require.Eventually(t, func() bool {
		return r.get(t, "/api/v1/channels/nova/current", nil) == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"prima", "nova"}, r.app.rt.scheduleJob.Channels())
}

func TestApp_ScheduleDisabled(t *testing.T) {
	u := newUpstreams(t)
	cfg := testConfig(t, u)
	cfg.Schedule.Enabled = false

	r := startApp(t, config.NewConfigHolder(cfg, nil, ""), clock.NewFake(testNow))
	r.waitReady(t)

	assert.Equal(t, http.StatusServiceUnavailable, r.get(t, "/api/v1/channels", nil))
	assert.Nil(t, r.app.rt.feedCache)
	assert.Equal(t, int32(0), u.feedHits.Load())
}

func TestNewApp_Errors(t *testing.T) {
	_, err := NewApp(context.Background(), nil, Options{})
	assert.ErrorIs(t, err, ErrMissingConfig)

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Timezone = "Mars/Olympus"
	_, err = NewApp(context.Background(), config.NewConfigHolder(cfg, nil, ""), Options{})
	assert.ErrorContains(t, err, "timezone")

	cfg.Timezone = "UTC"
	cfg.Cache.Backend = "tape"
	_, err = NewApp(context.Background(), config.NewConfigHolder(cfg, nil, ""), Options{})
	assert.ErrorContains(t, err, "unknown backend")
}

func writeConfig(t *testing.T, path string, cfg config.AppConfig, channels ...string) {
	t.Helper()
	doc := "dataDir: " + cfg.DataDir + "\n" +
		"timezone: UTC\n" +
		"api:\n  listenAddr: \"127.0.0.1:0\"\n" +
		"schedule:\n" +
		"  source: xmltv\n" +
		"  feedURL: " + cfg.Schedule.FeedURL + "\n" +
		"  daysAhead: 2\n" +
		"  channels: ["
	for i, ch := range channels {
		if i > 0 {
			doc += ", "
		}
		doc += ch
	}
	doc += "]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
}
