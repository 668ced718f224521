// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestClient_Get(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "hafeeds/1.0", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<ok/>"))
	}))
	defer srv.Close()

	c := NewClient("test", nil, time.Second)
	body, err := c.Get(context.Background(), "get", srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", string(body))
	assert.Equal(t, "test", c.Name())
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient("test", nil, time.Second)
	_, err := c.Get(context.Background(), "get", srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusServiceUnavailable, fe.Status)
	assert.Contains(t, fe.Error(), "HTTP 503")
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient("test", nil, 50*time.Millisecond)
	_, err := c.Get(context.Background(), "get", srv.URL)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient("test", nil, time.Minute).Get(ctx, "get", srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Unavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient("test", nil, time.Second).Get(context.Background(), "get", url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify("op", nil))

	fe := &FetchError{Sentinel: ErrBadResponse, Operation: "parse"}
	assert.Same(t, fe, Classify("other", fe))

	got := Classify("op", errors.New("boom"))
	assert.ErrorIs(t, got, ErrUpstreamUnavailable)
	assert.Equal(t, "op: upstream: host unreachable or transport failure: boom", got.Error())
}

func TestClient_TracesAndPropagates(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator())
		_ = tp.Shutdown(context.Background())
	})

	var traceparent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparent = r.Header.Get("traceparent")
		if r.URL.Path == "/fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient("ct", nil, time.Second)
	_, err := c.Get(context.Background(), "fetch schedule", srv.URL+"/ok")
	require.NoError(t, err)
	assert.NotEmpty(t, traceparent)

	_, err = c.Get(context.Background(), "fetch schedule", srv.URL+"/fail")
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "upstream.ct", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Contains(t, traceparent, spans[1].SpanContext().TraceID().String())
}
