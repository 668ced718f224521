// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package sensor renders snapshots as Home Assistant style entities: a state
// string plus an attribute map per entity.
package sensor

import (
	"fmt"

	"github.com/ManuGH/hafeeds/internal/epg"
)

// Kind selects one of the three per-channel sensors.
type Kind string

const (
	KindCurrent  Kind = "current"
	KindUpcoming Kind = "upcoming"
	KindDaily    Kind = "daily"
)

// Kinds lists the channel sensor kinds in display order.
var Kinds = []Kind{KindCurrent, KindUpcoming, KindDaily}

// ParseKind validates a kind taken from a request path.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCurrent, KindUpcoming, KindDaily:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sensor kind %q", s)
	}
}

const (
	// Unavailable is the state shown when neither fresh nor cached data exist.
	Unavailable = "Nedostupné"
	// UnknownTitle is shown when the current entry carries no title.
	UnknownTitle = "Neznámý pořad"

	ScheduleDomain    = "cz_tv_program"
	ReservationDomain = "previo_v4"

	scheduleIcon = "mdi:television-classic"
)

var kindSuffix = map[Kind]string{
	KindCurrent:  "Aktuální program",
	KindUpcoming: "Nadcházející",
	KindDaily:    "Denní program",
}

// Sensor is one rendered entity. State is nil when the entity is
// unavailable.
type Sensor struct {
	EntityID   string         `json:"entity_id"`
	UniqueID   string         `json:"unique_id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon,omitempty"`
	State      *string        `json:"state"`
	Available  bool           `json:"available"`
	Attributes map[string]any `json:"attributes"`
}

func strPtr(s string) *string { return &s }

// currentAttrs mirrors the attribute set of the current-programme entity.
func currentAttrs(p epg.Program) map[string]any {
	return map[string]any{
		"title":         p.Title,
		"supertitle":    p.Supertitle,
		"episode_title": p.EpisodeTitle,
		"time":          p.Time,
		"date":          p.Date,
		"genre":         p.Genre,
		"duration":      p.Duration,
		"description":   p.Description,
		"episode":       p.Episode,
		"link":          p.Link,
		"live":          p.Live,
		"premiere":      p.Premiere,
	}
}

func upcomingAttrs(p epg.Program) map[string]any {
	return map[string]any{
		"title":         p.Title,
		"supertitle":    p.Supertitle,
		"episode_title": p.EpisodeTitle,
		"time":          p.Time,
		"date":          p.Date,
		"genre":         p.Genre,
		"duration":      p.Duration,
		"description":   p.Description,
		"live":          p.Live,
		"premiere":      p.Premiere,
	}
}

func dailyAttrs(p epg.Program) map[string]any {
	return map[string]any{
		"title":         p.Title,
		"supertitle":    p.Supertitle,
		"episode_title": p.EpisodeTitle,
		"time":          p.Time,
		"genre":         p.Genre,
		"duration":      p.Duration,
		"description":   p.Description,
		"episode":       p.Episode,
		"live":          p.Live,
		"premiere":      p.Premiere,
		"link":          p.Link,
	}
}

func mapAll(progs []epg.Program, fn func(epg.Program) map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(progs))
	for _, p := range progs {
		out = append(out, fn(p))
	}
	return out
}
