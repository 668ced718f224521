// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hafeeds/internal/upstream"
)

var fixedNow = time.Date(2025, 3, 14, 15, 30, 0, 0, time.UTC)

func newTestNative(t *testing.T, handler http.HandlerFunc) *Native {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewNative(NativeOptions{
		BaseURL:  srv.URL,
		User:     "tester",
		Timeout:  time.Second,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

func dayDoc(title string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><program><porad><cas>20:00</cas><nazvy><nazev>%s</nazev></nazvy></porad></program>`, title)
}

func TestNative_FetchProgram_DayOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []string

	n := newTestNative(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "tester", q.Get("user"))
		assert.Equal(t, "ct1", q.Get("channel"))

		mu.Lock()
		seen = append(seen, q.Get("date"))
		mu.Unlock()

		// Later days answer first to prove ordering does not follow completion.
		if q.Get("date") == "14.03.2025" {
			time.Sleep(30 * time.Millisecond)
		}
		_, _ = w.Write([]byte(dayDoc("Day " + q.Get("date"))))
	})

	progs, err := n.FetchProgram(context.Background(), "ct1", 3)
	require.NoError(t, err)
	require.Len(t, progs, 3)

	assert.Equal(t, "2025-03-14", progs[0].Date)
	assert.Equal(t, "Day 14.03.2025", progs[0].Title)
	assert.Equal(t, "2025-03-15", progs[1].Date)
	assert.Equal(t, "2025-03-16", progs[2].Date)
	assert.ElementsMatch(t, []string{"14.03.2025", "15.03.2025", "16.03.2025"}, seen)
}

func TestNative_FetchProgram_FailedDayDegrades(t *testing.T) {
	n := newTestNative(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("date") {
		case "15.03.2025":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "16.03.2025":
			_, _ = w.Write([]byte("<program><porad>"))
		default:
			_, _ = w.Write([]byte(dayDoc("ok")))
		}
	})

	progs, err := n.FetchProgram(context.Background(), "ct2", 3)
	require.NoError(t, err)
	require.Len(t, progs, 1)
	assert.Equal(t, "2025-03-14", progs[0].Date)
}

func TestNative_FetchProgram_AllDaysFailed(t *testing.T) {
	n := newTestNative(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	progs, err := n.FetchProgram(context.Background(), "ct1", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, upstream.ErrNoData)
	assert.Empty(t, progs)
}

func TestNative_FetchProgram_EmptyDaysAreNotFailures(t *testing.T) {
	n := newTestNative(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<program></program>`))
	})

	progs, err := n.FetchProgram(context.Background(), "ct1", 2)
	require.NoError(t, err)
	assert.Empty(t, progs)
}

func TestNative_FetchProgram_PerRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("date") == "15.03.2025" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		_, _ = w.Write([]byte(dayDoc("fast")))
	}))
	defer srv.Close()
	defer close(release)

	n := NewNative(NativeOptions{
		BaseURL:  srv.URL,
		Timeout:  100 * time.Millisecond,
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})

	progs, err := n.FetchProgram(context.Background(), "ct1", 2)
	require.NoError(t, err)
	require.Len(t, progs, 1, "slow day times out without failing its sibling")
	assert.Equal(t, "fast", progs[0].Title)
}

func TestNative_AvailableChannels(t *testing.T) {
	n := NewNative(NativeOptions{})
	ch := n.AvailableChannels()
	assert.Equal(t, "ČT1", ch["ct1"])
	assert.Len(t, ch, 7)

	ch["ct1"] = "changed"
	assert.Equal(t, "ČT1", CTChannels["ct1"], "callers get a copy")
	assert.Equal(t, SourceCT, n.Name())
}

func TestNative_DayURL(t *testing.T) {
	n := NewNative(NativeOptions{BaseURL: "https://example.test/schedule.php", User: "u"})
	got := n.dayURL("ct24", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, "https://example.test/schedule.php?channel=ct24&date=02.01.2025&user=u", got)
}
