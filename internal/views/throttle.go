// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package views

import (
	"sync"
	"time"

	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/epg"
)

// DefaultMinInterval bounds how often a view is recomputed.
const DefaultMinInterval = 60 * time.Second

// Throttle caches a computed value together with the time it was computed.
// Get recomputes only when the value is missing, invalidated or at least
// interval old.
type Throttle[T any] struct {
	clock    clock.Clock
	interval time.Duration

	mu    sync.Mutex
	value T
	at    time.Time
	valid bool
}

// NewThrottle returns an empty Throttle.
func NewThrottle[T any](c clock.Clock, interval time.Duration) *Throttle[T] {
	if c == nil {
		c = clock.Real{}
	}
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &Throttle[T]{clock: c, interval: interval}
}

// Get returns the cached value or recomputes it.
func (t *Throttle[T]) Get(compute func(now time.Time) T) T {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if t.valid && now.Sub(t.at) < t.interval {
		return t.value
	}
	t.value = compute(now)
	t.at = now
	t.valid = true
	return t.value
}

// Invalidate forces the next Get to recompute.
func (t *Throttle[T]) Invalidate() {
	t.mu.Lock()
	t.valid = false
	t.mu.Unlock()
}

// ComputedAt reports when the cached value was computed.
func (t *Throttle[T]) ComputedAt() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.at, t.valid
}

// SnapshotSource returns the currently published schedule snapshot.
type SnapshotSource func() (*epg.Snapshot, bool)

// ChannelView is the throttled projection of one channel. A newly published
// snapshot invalidates the cached projection.
type ChannelView struct {
	channelID string
	source    SnapshotSource
	clock     clock.Clock
	loc       *time.Location
	throttle  *Throttle[Projection]

	mu   sync.Mutex
	seen *epg.Snapshot
}

// NewChannelView creates a view over channelID.
func NewChannelView(channelID string, source SnapshotSource, c clock.Clock, loc *time.Location) *ChannelView {
	if c == nil {
		c = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &ChannelView{
		channelID: channelID,
		source:    source,
		clock:     c,
		loc:       loc,
		throttle:  NewThrottle[Projection](c, DefaultMinInterval),
	}
}

// ChannelID returns the tracked channel.
func (v *ChannelView) ChannelID() string { return v.channelID }

// Programs returns the channel's entries from the current snapshot.
func (v *ChannelView) Programs() []epg.Program {
	snap := v.snapshot()
	return snap.Programs(v.channelID)
}

// Projection returns the throttled projection.
func (v *ChannelView) Projection() Projection {
	snap := v.snapshot()
	return v.throttle.Get(func(now time.Time) Projection {
		return Project(snap.Programs(v.channelID), now, v.loc, UpcomingKeep)
	})
}

// Current returns the programme on air.
func (v *ChannelView) Current() (epg.Program, bool) {
	p := v.Projection()
	if p.Current == nil {
		return epg.Program{}, false
	}
	return *p.Current, true
}

// Upcoming returns the exposed slice of the next entries.
func (v *ChannelView) Upcoming() []epg.Program {
	up := v.Projection().Upcoming
	if len(up) > UpcomingExpose {
		up = up[:UpcomingExpose]
	}
	return up
}

// Daily returns today's and tomorrow's entries. It is not throttled.
func (v *ChannelView) Daily() (today, tomorrow []epg.Program) {
	progs := v.Programs()
	now := v.clock.Now().In(v.loc)
	return OnDate(progs, now, v.loc), OnDate(progs, now.AddDate(0, 0, 1), v.loc)
}

// Location returns the zone used to interpret entry times.
func (v *ChannelView) Location() *time.Location { return v.loc }

// Now returns the view's clock reading.
func (v *ChannelView) Now() time.Time { return v.clock.Now() }

func (v *ChannelView) snapshot() *epg.Snapshot {
	var snap *epg.Snapshot
	if v.source != nil {
		if s, ok := v.source(); ok {
			snap = s
		}
	}

	v.mu.Lock()
	changed := snap != v.seen
	v.seen = snap
	v.mu.Unlock()
	if changed {
		v.throttle.Invalidate()
	}
	return snap
}
