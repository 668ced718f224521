// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import "time"

// Source tells where a channel's entries in a snapshot came from.
type Source string

const (
	SourceFresh Source = "fresh"
	SourceCache Source = "cache"
	SourceEmpty Source = "empty"
)

// Snapshot is the result of one polling cycle. It is built once and
// replaced as a whole; readers must treat it as immutable.
type Snapshot struct {
	Channels  map[string][]Program `json:"channels"`
	Sources   map[string]Source    `json:"sources"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// Programs returns the entries of one channel.
func (s *Snapshot) Programs(channelID string) []Program {
	if s == nil {
		return nil
	}
	return s.Channels[channelID]
}

// Total returns the number of entries across all channels.
func (s *Snapshot) Total() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, progs := range s.Channels {
		n += len(progs)
	}
	return n
}
