// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package views projects schedule snapshots into the read models served to
// consumers: the current programme, the next few programmes and the daily
// schedule of a channel.
package views

import (
	"time"

	"github.com/ManuGH/hafeeds/internal/epg"
)

const (
	// UpcomingKeep is how many future entries a projection retains.
	UpcomingKeep = 20
	// UpcomingExpose is how many of them are handed out.
	UpcomingExpose = 10
)

// Projection is the derived state of one channel at a point in time.
type Projection struct {
	Current    *epg.Program
	Upcoming   []epg.Program
	ComputedAt time.Time
}

// Project computes the current programme and up to limit upcoming entries in
// a single pass. Entries whose start cannot be parsed are ignored.
func Project(programs []epg.Program, now time.Time, loc *time.Location, limit int) Projection {
	p := Projection{ComputedAt: now}
	var currentStart time.Time
	for i := range programs {
		start, ok := programs[i].StartIn(loc)
		if !ok {
			continue
		}
		if !start.After(now) {
			// Latest start wins; on equal starts the later entry does.
			if p.Current == nil || !start.Before(currentStart) {
				p.Current = &programs[i]
				currentStart = start
			}
			continue
		}
		if len(p.Upcoming) < limit {
			p.Upcoming = append(p.Upcoming, programs[i])
		}
	}
	return p
}

// Current returns the entry with the latest start at or before now. Among
// equal starts the one later in snapshot order is chosen.
func Current(programs []epg.Program, now time.Time, loc *time.Location) (epg.Program, bool) {
	p := Project(programs, now, loc, 0)
	if p.Current == nil {
		return epg.Program{}, false
	}
	return *p.Current, true
}

// Upcoming returns up to limit entries starting after now, in snapshot order.
func Upcoming(programs []epg.Program, now time.Time, loc *time.Location, limit int) []epg.Program {
	return Project(programs, now, loc, limit).Upcoming
}

// OnDate returns the entries starting on the calendar day of day in loc.
func OnDate(programs []epg.Program, day time.Time, loc *time.Location) []epg.Program {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := day.In(loc).Date()
	var out []epg.Program
	for _, p := range programs {
		start, ok := p.StartIn(loc)
		if !ok {
			continue
		}
		sy, sm, sd := start.Date()
		if sy == y && sm == m && sd == d {
			out = append(out, p)
		}
	}
	return out
}
