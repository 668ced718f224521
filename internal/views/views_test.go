// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/epg"
)

var prague = time.FixedZone("CET", 3600)

func prog(date, hhmm, title string) epg.Program {
	return epg.Program{Date: date, Time: hhmm, Title: title}
}

func sampleDay() []epg.Program {
	return []epg.Program{
		prog("2025-03-10", "06:00", "Studio 6"),
		prog("2025-03-10", "09:00", "Kočka není pes"),
		prog("2025-03-10", "bad", "Broken"),
		prog("2025-03-10", "12:00", "Zprávy"),
		prog("2025-03-10", "20:00", "Večerníček"),
		prog("2025-03-11", "06:00", "Studio 6"),
	}
}

func TestCurrent(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 30, 0, 0, prague)

	got, ok := Current(sampleDay(), now, prague)
	require.True(t, ok)
	assert.Equal(t, "Kočka není pes", got.Title)

	exact := time.Date(2025, 3, 10, 12, 0, 0, 0, prague)
	got, ok = Current(sampleDay(), exact, prague)
	require.True(t, ok)
	assert.Equal(t, "Zprávy", got.Title)

	_, ok = Current(sampleDay(), time.Date(2025, 3, 10, 5, 0, 0, 0, prague), prague)
	assert.False(t, ok)

	_, ok = Current(nil, now, prague)
	assert.False(t, ok)
}

func TestCurrent_LatestStartWins(t *testing.T) {
	now := time.Date(2025, 3, 10, 11, 30, 0, 0, prague)
	progs := []epg.Program{
		prog("2025-03-10", "11:00", "Later"),
		prog("2025-03-10", "10:00", "Earlier"),
		prog("2025-03-10", "12:00", "Future"),
	}

	got, ok := Current(progs, now, prague)
	require.True(t, ok)
	assert.Equal(t, "Later", got.Title)

	progs = append(progs, prog("2025-03-10", "11:00", "Replacement"))
	got, _ = Current(progs, now, prague)
	assert.Equal(t, "Replacement", got.Title, "equal starts resolve to the later entry")
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2025, 3, 10, 10, 30, 0, 0, prague)

	up := Upcoming(sampleDay(), now, prague, 10)
	require.Len(t, up, 3)
	assert.Equal(t, "Zprávy", up[0].Title)
	assert.Equal(t, "Večerníček", up[1].Title)
	assert.Equal(t, "2025-03-11", up[2].Date)

	assert.Len(t, Upcoming(sampleDay(), now, prague, 2), 2)
	assert.Empty(t, Upcoming(sampleDay(), now, prague, 0))
}

func TestOnDate(t *testing.T) {
	day := time.Date(2025, 3, 10, 23, 59, 0, 0, prague)
	assert.Len(t, OnDate(sampleDay(), day, prague), 4)
	assert.Len(t, OnDate(sampleDay(), day.AddDate(0, 0, 1), prague), 1)
	assert.Empty(t, OnDate(sampleDay(), day.AddDate(0, 0, 2), prague))
}

func TestProject_KeepsLimit(t *testing.T) {
	var progs []epg.Program
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, prague)
	for i := 0; i < 30; i++ {
		at := start.Add(time.Duration(i) * 30 * time.Minute)
		progs = append(progs, prog(at.Format(epg.DateLayout), at.Format(epg.TimeLayout), "p"))
	}

	p := Project(progs, start.Add(time.Minute), prague, UpcomingKeep)
	require.NotNil(t, p.Current)
	assert.Equal(t, "00:00", p.Current.Time)
	assert.Len(t, p.Upcoming, UpcomingKeep)
	assert.Equal(t, "00:30", p.Upcoming[0].Time)
}

func TestThrottle_SkipsWithinInterval(t *testing.T) {
	fc := clock.NewFake(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC))
	th := NewThrottle[int](fc, time.Minute)

	calls := 0
	compute := func(time.Time) int {
		calls++
		return calls
	}

	assert.Equal(t, 1, th.Get(compute))
	fc.Advance(59 * time.Second)
	assert.Equal(t, 1, th.Get(compute))
	assert.Equal(t, 1, calls)

	fc.Advance(time.Second)
	assert.Equal(t, 2, th.Get(compute))

	th.Invalidate()
	assert.Equal(t, 3, th.Get(compute))

	at, ok := th.ComputedAt()
	assert.True(t, ok)
	assert.Equal(t, fc.Now(), at)
}

func TestChannelView(t *testing.T) {
	fc := clock.NewFake(time.Date(2025, 3, 10, 11, 59, 30, 0, prague))

	snap := &epg.Snapshot{Channels: map[string][]epg.Program{"ct1": sampleDay()}}
	source := func() (*epg.Snapshot, bool) { return snap, true }
	v := NewChannelView("ct1", source, fc, prague)

	cur, ok := v.Current()
	require.True(t, ok)
	assert.Equal(t, "Kočka není pes", cur.Title)

	// 12:00 has started but the cached projection is kept within the interval.
	fc.Advance(30 * time.Second)
	cur, _ = v.Current()
	assert.Equal(t, "Kočka není pes", cur.Title)

	fc.Advance(31 * time.Second)
	cur, _ = v.Current()
	assert.Equal(t, "Zprávy", cur.Title)

	today, tomorrow := v.Daily()
	assert.Len(t, today, 4)
	assert.Len(t, tomorrow, 1)
}

func TestChannelView_NewSnapshotInvalidates(t *testing.T) {
	fc := clock.NewFake(time.Date(2025, 3, 10, 10, 30, 0, 0, prague))

	snap := &epg.Snapshot{Channels: map[string][]epg.Program{}}
	source := func() (*epg.Snapshot, bool) { return snap, true }
	v := NewChannelView("ct1", source, fc, prague)

	_, ok := v.Current()
	assert.False(t, ok)

	snap = &epg.Snapshot{Channels: map[string][]epg.Program{"ct1": sampleDay()}}
	_, ok = v.Current()
	assert.True(t, ok)
}

func TestChannelView_UpcomingExposesTen(t *testing.T) {
	start := time.Date(2025, 3, 10, 0, 0, 0, 0, prague)
	var progs []epg.Program
	for i := 0; i < 30; i++ {
		at := start.Add(time.Duration(i) * 30 * time.Minute)
		progs = append(progs, prog(at.Format(epg.DateLayout), at.Format(epg.TimeLayout), "p"))
	}
	snap := &epg.Snapshot{Channels: map[string][]epg.Program{"ct1": progs}}

	fc := clock.NewFake(start.Add(-time.Hour))
	v := NewChannelView("ct1", func() (*epg.Snapshot, bool) { return snap, true }, fc, prague)

	assert.Len(t, v.Upcoming(), UpcomingExpose)
	assert.Len(t, v.Projection().Upcoming, UpcomingKeep)
}

func TestChannelView_NoSnapshot(t *testing.T) {
	v := NewChannelView("ct1", func() (*epg.Snapshot, bool) { return nil, false }, nil, nil)
	_, ok := v.Current()
	assert.False(t, ok)
	assert.Empty(t, v.Upcoming())
	today, tomorrow := v.Daily()
	assert.Empty(t, today)
	assert.Empty(t, tomorrow)
}
