// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package upstream performs the single request/response exchanges every
// provider is built on and classifies their failures.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/hafeeds/internal/metrics"
	"github.com/ManuGH/hafeeds/internal/telemetry"
)

// MaxBodySize caps every upstream response.
const MaxBodySize = 50 * 1024 * 1024

const (
	userAgent  = "hafeeds/1.0"
	tracerName = "hafeeds/upstream"
)

// Client is a thin wrapper around http.Client bound to one provider label.
type Client struct {
	name string
	http *http.Client
}

// NewClient returns a client labelled name. A nil hc gets a default client
// with the given timeout.
func NewClient(name string, hc *http.Client, timeout time.Duration) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{name: name, http: hc}
}

// Name returns the provider label used in metrics.
func (c *Client) Name() string { return c.name }

// Get fetches url and returns the body of a 200 response.
func (c *Client) Get(ctx context.Context, op, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Sentinel: ErrUpstreamUnavailable, Operation: op, Err: err}
	}
	return c.Do(req, op)
}

// Do sends req and returns the body of a 200 response. Any other status
// yields ErrUpstreamStatus.
func (c *Client) Do(req *http.Request, op string) ([]byte, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	ctx, span := telemetry.Tracer(tracerName).Start(req.Context(), "upstream."+c.name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(telemetry.UpstreamAttributes(c.name, op, req.URL.Redacted())...),
	)
	defer span.End()
	req = req.WithContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	body, err := c.do(req, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
	}
	return body, err
}

func (c *Client) do(req *http.Request, op string) ([]byte, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		fe := Classify(op, err)
		c.record(fe, time.Since(start))
		return nil, fe
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		fe := &FetchError{Sentinel: ErrUpstreamStatus, Operation: op, Status: resp.StatusCode}
		c.record(fe, time.Since(start))
		return nil, fe
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		fe := Classify(op, fmt.Errorf("read body: %w", err))
		c.record(fe, time.Since(start))
		return nil, fe
	}
	if len(body) > MaxBodySize {
		fe := &FetchError{Sentinel: ErrBadResponse, Operation: op, Err: fmt.Errorf("body exceeds %d bytes", MaxBodySize)}
		c.record(fe, time.Since(start))
		return nil, fe
	}

	c.record(nil, time.Since(start))
	return body, nil
}

func (c *Client) record(err error, d time.Duration) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case errors.Is(err, ErrTimeout):
		outcome = metrics.OutcomeTimeout
	default:
		outcome = metrics.OutcomeFailure
	}
	metrics.RecordFetch(c.name, outcome, d)
}
