// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package provider

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/upstream"
)

// requestDateLayout is the date format the native API expects.
const requestDateLayout = "02.01.2006"

// NativeOptions configures the native schedule provider.
type NativeOptions struct {
	BaseURL           string
	User              string
	Timeout           time.Duration
	RequestsPerSecond float64
	Location          *time.Location
	HTTPClient        *http.Client
	Now               func() time.Time
}

// Native fetches one document per (channel, day) from the native schedule
// API. Days are requested in parallel; a failed day degrades to no entries.
type Native struct {
	baseURL string
	user    string
	timeout time.Duration
	loc     *time.Location
	now     func() time.Time
	limiter *rate.Limiter
	client  *upstream.Client
}

// NewNative creates the native provider.
func NewNative(opts NativeOptions) *Native {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultCTBaseURL
	}
	if opts.User == "" {
		opts.User = DefaultUser
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}

	return &Native{
		baseURL: strings.TrimRight(opts.BaseURL, "?"),
		user:    opts.User,
		timeout: opts.Timeout,
		loc:     opts.Location,
		now:     opts.Now,
		limiter: rate.NewLimiter(limit, burst),
		client:  upstream.NewClient(SourceCT, opts.HTTPClient, opts.Timeout),
	}
}

func (n *Native) Name() string { return SourceCT }

func (n *Native) AvailableChannels() map[string]string { return copyChannels(CTChannels) }

// FetchProgram requests every day of the window concurrently and concatenates
// the results in day order. It fails with ErrNoData only when every day
// failed, so the caller can fall back to cached data.
func (n *Native) FetchProgram(ctx context.Context, channelID string, daysAhead int) ([]epg.Program, error) {
	if daysAhead <= 0 {
		return nil, nil
	}
	logger := xlog.WithComponentFromContext(ctx, "provider").With().
		Str(xlog.FieldProvider, SourceCT).
		Str(xlog.FieldChannel, channelID).
		Logger()

	today := startOfDay(n.now(), n.loc)
	days := make([][]epg.Program, daysAhead)
	var failed atomic.Int32

	var g errgroup.Group
	for i := 0; i < daysAhead; i++ {
		day := today.AddDate(0, 0, i)
		g.Go(func() error {
			progs, err := n.fetchDay(ctx, channelID, day)
			if err != nil {
				failed.Add(1)
				logger.Warn().Err(err).
					Str(xlog.FieldEvent, "fetch.day_failed").
					Str(xlog.FieldDate, day.Format(epg.DateLayout)).
					Msg("day fetch failed, continuing without it")
				return nil
			}
			days[i] = progs
			return nil
		})
	}
	_ = g.Wait()

	if int(failed.Load()) == daysAhead {
		return nil, &upstream.FetchError{
			Sentinel:  upstream.ErrNoData,
			Operation: "fetch " + channelID,
			Err:       ctx.Err(),
		}
	}

	var out []epg.Program
	for _, progs := range days {
		out = append(out, progs...)
	}
	logger.Debug().
		Str(xlog.FieldEvent, "fetch.done").
		Int(xlog.FieldCount, len(out)).
		Int("failed_days", int(failed.Load())).
		Msg("channel fetched")
	return out, nil
}

func (n *Native) fetchDay(ctx context.Context, channelID string, day time.Time) ([]epg.Program, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, upstream.Classify("rate wait", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	body, err := n.client.Get(reqCtx, "schedule "+channelID, n.dayURL(channelID, day))
	if err != nil {
		return nil, err
	}

	progs, err := epg.ParseSchedule(body, day)
	if err != nil {
		return nil, &upstream.FetchError{Sentinel: upstream.ErrBadResponse, Operation: "parse " + channelID, Err: err}
	}
	return progs, nil
}

func (n *Native) dayURL(channelID string, day time.Time) string {
	q := url.Values{}
	q.Set("user", n.user)
	q.Set("date", day.Format(requestDateLayout))
	q.Set("channel", channelID)
	return n.baseURL + "?" + q.Encode()
}
