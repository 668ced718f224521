// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"time"
)

// DefaultTitle is used when a source omits the programme title.
const DefaultTitle = "Bez názvu"

const (
	// DateLayout is the calendar date format used in Program.Date.
	DateLayout = "2006-01-02"
	// TimeLayout is the minute-precision local time used in Program.Time.
	TimeLayout = "15:04"
)

// Program is one normalized schedule entry. Values are built by the parsers
// and never mutated afterwards; the JSON form is the on-disk cache format.
type Program struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Title        string `json:"title"`
	Supertitle   string `json:"supertitle"`
	EpisodeTitle string `json:"episode_title"`
	Episode      string `json:"episode"`
	Genre        string `json:"genre"`
	Duration     string `json:"duration"`
	Description  string `json:"description"`
	Link         string `json:"link"`
	Audio        string `json:"audio"`
	Subtitles    bool   `json:"subtitles"`
	Live         bool   `json:"live"`
	Premiere     bool   `json:"premiere"`
	AspectRatio  string `json:"aspect_ratio"`
}

// StartIn returns the programme start in loc. ok is false when Date or Time
// does not parse.
func (p Program) StartIn(loc *time.Location) (time.Time, bool) {
	if p.Date == "" || p.Time == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, p.Date+" "+p.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
