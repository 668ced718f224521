// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/hafeeds/internal/clock"
	"github.com/ManuGH/hafeeds/internal/views"
)

// ChannelInfo describes a tracked channel.
type ChannelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Channels holds one throttled view per tracked channel and renders the
// current, upcoming and daily sensors from it.
type Channels struct {
	source views.SnapshotSource
	clock  clock.Clock
	loc    *time.Location

	mu    sync.RWMutex
	names map[string]string
	order []string
	views map[string]*views.ChannelView
}

// NewChannels creates the channel sensors for ids. names maps ids to display
// names; unknown ids are shown as-is.
func NewChannels(ids []string, names map[string]string, source views.SnapshotSource, c clock.Clock, loc *time.Location) *Channels {
	if c == nil {
		c = clock.Real{}
	}
	if loc == nil {
		loc = time.Local
	}
	ch := &Channels{source: source, clock: c, loc: loc}
	ch.SetChannels(ids, names)
	return ch
}

// SetChannels replaces the tracked set. Views of channels that stay tracked
// are kept.
func (c *Channels) SetChannels(ids []string, names map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := make(map[string]*views.ChannelView, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, dup := next[id]; dup {
			continue
		}
		if v, ok := c.views[id]; ok {
			next[id] = v
		} else {
			next[id] = views.NewChannelView(id, c.source, c.clock, c.loc)
		}
		order = append(order, id)
	}
	c.views = next
	c.order = order
	c.names = make(map[string]string, len(names))
	for k, v := range names {
		c.names[k] = v
	}
}

// List returns the tracked channels in configured order.
func (c *Channels) List() []ChannelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ChannelInfo, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, ChannelInfo{ID: id, Name: c.nameLocked(id)})
	}
	return out
}

// Sensor renders one sensor. ok is false for an untracked channel.
func (c *Channels) Sensor(channelID string, kind Kind) (Sensor, bool) {
	c.mu.RLock()
	v, ok := c.views[channelID]
	name := c.nameLocked(channelID)
	c.mu.RUnlock()
	if !ok {
		return Sensor{}, false
	}

	var available bool
	if c.source != nil {
		_, available = c.source()
	}

	s := Sensor{
		EntityID:  "sensor." + Slugify(fmt.Sprintf("%s - %s", name, kindSuffix[kind])),
		UniqueID:  fmt.Sprintf("%s_%s_%s", ScheduleDomain, channelID, kind),
		Name:      fmt.Sprintf("%s - %s", name, kindSuffix[kind]),
		Icon:      scheduleIcon,
		Available: available,
		Attributes: map[string]any{
			"channel":    name,
			"channel_id": channelID,
		},
	}

	switch kind {
	case KindCurrent:
		renderCurrent(&s, v)
	case KindUpcoming:
		renderUpcoming(&s, v)
	case KindDaily:
		renderDaily(&s, v)
	default:
		return Sensor{}, false
	}
	return s, true
}

// All renders every sensor of every tracked channel.
func (c *Channels) All() []Sensor {
	var out []Sensor
	for _, info := range c.List() {
		for _, kind := range Kinds {
			if s, ok := c.Sensor(info.ID, kind); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func (c *Channels) nameLocked(id string) string {
	if n, ok := c.names[id]; ok && n != "" {
		return n
	}
	return id
}

func renderCurrent(s *Sensor, v *views.ChannelView) {
	p, ok := v.Current()
	if !ok {
		s.State = strPtr(Unavailable)
		return
	}
	title := p.Title
	if title == "" {
		title = UnknownTitle
	}
	s.State = strPtr(title)
	for k, val := range currentAttrs(p) {
		s.Attributes[k] = val
	}
}

func renderUpcoming(s *Sensor, v *views.ChannelView) {
	kept := v.Projection().Upcoming
	if len(kept) == 0 {
		s.State = strPtr(Unavailable)
	} else {
		s.State = strPtr(fmt.Sprintf("%d programů", len(kept)))
	}
	s.Attributes["programs"] = mapAll(v.Upcoming(), upcomingAttrs)
}

func renderDaily(s *Sensor, v *views.ChannelView) {
	today, tomorrow := v.Daily()
	s.State = strPtr(fmt.Sprintf("%d programů dnes", len(today)))
	s.Attributes["today"] = mapAll(today, dailyAttrs)
	s.Attributes["tomorrow"] = mapAll(tomorrow, dailyAttrs)
}
