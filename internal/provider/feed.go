// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package provider

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ManuGH/hafeeds/internal/cache"
	"github.com/ManuGH/hafeeds/internal/epg"
	xlog "github.com/ManuGH/hafeeds/internal/log"
	"github.com/ManuGH/hafeeds/internal/resilience"
	"github.com/ManuGH/hafeeds/internal/upstream"
)

const feedCacheKey = "xmltv:document"

// FeedOptions configures the XMLTV feed provider.
type FeedOptions struct {
	URL        string
	Timeout    time.Duration
	TTL        time.Duration
	Location   *time.Location
	HTTPClient *http.Client
	Cache      cache.Cache
	Breaker    *resilience.CircuitBreaker
	Now        func() time.Time
}

// Feed serves every channel from one shared XMLTV document. The document is
// kept for TTL; concurrent misses share a single download.
type Feed struct {
	url     string
	timeout time.Duration
	ttl     time.Duration
	loc     *time.Location
	now     func() time.Time
	cache   cache.Cache
	breaker *resilience.CircuitBreaker
	client  *upstream.Client
	group   singleflight.Group
}

// NewFeed creates the feed provider.
func NewFeed(opts FeedOptions) *Feed {
	if opts.URL == "" {
		opts.URL = DefaultFeedURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFeedTimeout
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultFeedTTL
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Cache == nil {
		opts.Cache = cache.NewMemoryCache(0, cache.WithNow(opts.Now))
	}
	if opts.Breaker == nil {
		opts.Breaker = resilience.NewCircuitBreaker("xmltv_feed", 3, 5*time.Minute)
	}

	return &Feed{
		url:     opts.URL,
		timeout: opts.Timeout,
		ttl:     opts.TTL,
		loc:     opts.Location,
		now:     opts.Now,
		cache:   opts.Cache,
		breaker: opts.Breaker,
		client:  upstream.NewClient(SourceXMLTV, opts.HTTPClient, opts.Timeout),
	}
}

func (f *Feed) Name() string { return SourceXMLTV }

func (f *Feed) AvailableChannels() map[string]string { return copyChannels(XMLTVChannels) }

// FetchProgram filters the shared document for one channel and the window
// [today 00:00, today+daysAhead).
func (f *Feed) FetchProgram(ctx context.Context, channelID string, daysAhead int) ([]epg.Program, error) {
	tv, err := f.document(ctx)
	if err != nil {
		return nil, err
	}

	from := startOfDay(f.now(), f.loc)
	to := from.AddDate(0, 0, daysAhead)
	progs := epg.FilterProgrammes(tv, TranslateChannelID(channelID), from, to, f.loc)

	logger := xlog.WithComponentFromContext(ctx, "provider")
	logger.Debug().
		Str(xlog.FieldEvent, "fetch.done").
		Str(xlog.FieldProvider, SourceXMLTV).
		Str(xlog.FieldChannel, channelID).
		Int(xlog.FieldCount, len(progs)).
		Msg("channel filtered from feed")
	return progs, nil
}

// Invalidate drops the cached document so the next fetch downloads it again.
func (f *Feed) Invalidate() {
	f.cache.Delete(feedCacheKey)
}

func (f *Feed) document(ctx context.Context) (*epg.TV, error) {
	if v, ok := f.cache.Get(feedCacheKey); ok {
		return v.(*epg.TV), nil
	}

	v, err, _ := f.group.Do(feedCacheKey, func() (any, error) {
		if v, ok := f.cache.Get(feedCacheKey); ok {
			return v, nil
		}
		// The download is shared; one caller going away must not fail the rest.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()

		tv, err := f.download(dctx)
		if err != nil {
			return nil, err
		}
		f.cache.Set(feedCacheKey, tv, f.ttl)
		return tv, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*epg.TV), nil
}

func (f *Feed) download(ctx context.Context) (*epg.TV, error) {
	logger := xlog.WithComponentFromContext(ctx, "provider")

	var tv *epg.TV
	err := f.breaker.Execute(func() error {
		body, err := f.client.Get(ctx, "download feed", f.url)
		if err != nil {
			return err
		}
		parsed, err := epg.ParseXMLTV(bytes.NewReader(body))
		if err != nil {
			return &upstream.FetchError{Sentinel: upstream.ErrBadResponse, Operation: "parse feed", Err: err}
		}
		tv = parsed
		return nil
	})
	if err != nil {
		logger.Warn().Err(err).
			Str(xlog.FieldEvent, "feed.download_failed").
			Str(xlog.FieldURL, f.url).
			Str("breaker", string(f.breaker.State())).
			Msg("xmltv feed download failed")
		return nil, err
	}

	logger.Info().
		Str(xlog.FieldEvent, "feed.downloaded").
		Int("programmes", len(tv.Programmes)).
		Dur("ttl", f.ttl).
		Msg("xmltv feed refreshed")
	return tv, nil
}
