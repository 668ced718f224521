// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package provider fetches TV schedules from the supported sources.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ManuGH/hafeeds/internal/cache"
	"github.com/ManuGH/hafeeds/internal/epg"
)

// Source selectors.
const (
	SourceCT    = "ct"
	SourceXMLTV = "xmltv"
)

const (
	DefaultCTBaseURL   = "https://www.ceskatelevize.cz/services-old/programme/xml/schedule.php"
	DefaultFeedURL     = "http://xmltv.tvpc.cz/xmltv.xml"
	DefaultUser        = "test"
	DefaultDaysAhead   = 7
	DefaultTimeout     = 30 * time.Second
	DefaultFeedTTL     = time.Hour
	DefaultFeedTimeout = 60 * time.Second
)

// Provider fetches the schedule of one channel.
type Provider interface {
	Name() string
	// FetchProgram returns the channel's entries for today and the following
	// daysAhead-1 days in chronological order.
	FetchProgram(ctx context.Context, channelID string, daysAhead int) ([]epg.Program, error)
	AvailableChannels() map[string]string
}

// Options configures New.
type Options struct {
	Source            string
	BaseURL           string
	User              string
	FeedURL           string
	Timeout           time.Duration
	FeedTimeout       time.Duration
	FeedTTL           time.Duration
	RequestsPerSecond float64
	Location          *time.Location
	HTTPClient        *http.Client
	Cache             cache.Cache
	Now               func() time.Time
}

// New selects a provider strategy by source.
func New(opts Options) (Provider, error) {
	switch opts.Source {
	case SourceCT, "":
		return NewNative(NativeOptions{
			BaseURL:           opts.BaseURL,
			User:              opts.User,
			Timeout:           opts.Timeout,
			RequestsPerSecond: opts.RequestsPerSecond,
			Location:          opts.Location,
			HTTPClient:        opts.HTTPClient,
			Now:               opts.Now,
		}), nil
	case SourceXMLTV:
		return NewFeed(FeedOptions{
			URL:        opts.FeedURL,
			Timeout:    opts.FeedTimeout,
			TTL:        opts.FeedTTL,
			Location:   opts.Location,
			HTTPClient: opts.HTTPClient,
			Cache:      opts.Cache,
			Now:        opts.Now,
		}), nil
	default:
		return nil, fmt.Errorf("provider: unknown source %q", opts.Source)
	}
}

// startOfDay returns midnight of t's day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
