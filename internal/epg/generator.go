// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/renameio/v2"
)

const defaultProgrammeLength = 30 * time.Minute

// BuildXMLTV renders a published snapshot as an XMLTV document. names maps
// channel ids to display names; unknown ids fall back to the id itself.
func BuildXMLTV(snap *Snapshot, names map[string]string, loc *time.Location) *TV {
	tv := &TV{Generator: "hafeeds"}
	if snap == nil {
		return tv
	}

	ids := make([]string, 0, len(snap.Channels))
	for id := range snap.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		name := names[id]
		if name == "" {
			name = id
		}
		tv.Channels = append(tv.Channels, Channel{ID: id, DisplayName: []string{name}})

		progs := snap.Channels[id]
		for i, p := range progs {
			start, ok := p.StartIn(loc)
			if !ok {
				continue
			}
			stop := start.Add(programmeLength(p, progs, i, start, loc))
			prog := Programme{
				Start:   FormatXMLTVTime(start),
				Stop:    FormatXMLTVTime(stop),
				Channel: id,
				Title:   []Text{{Value: p.Title}},
			}
			if p.EpisodeTitle != "" {
				prog.SubTitle = []Text{{Value: p.EpisodeTitle}}
			}
			if p.Description != "" {
				prog.Desc = []Text{{Value: p.Description}}
			}
			if p.Genre != "" {
				prog.Category = []Text{{Value: p.Genre}}
			}
			tv.Programmes = append(tv.Programmes, prog)
		}
	}
	return tv
}

// programmeLength prefers an explicit "N min" duration, then the gap to the
// next entry, then a 30 minute default.
func programmeLength(p Program, progs []Program, i int, start time.Time, loc *time.Location) time.Duration {
	if mins, ok := parseMinutes(p.Duration); ok {
		return time.Duration(mins) * time.Minute
	}
	if i+1 < len(progs) {
		if next, ok := progs[i+1].StartIn(loc); ok && next.After(start) {
			return next.Sub(start)
		}
	}
	return defaultProgrammeLength
}

func parseMinutes(s string) (int, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "min"))
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// WriteXMLTV writes tv to path atomically.
func WriteXMLTV(tv *TV, path string) error {
	out, err := xml.MarshalIndent(tv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal xmltv: %w", err)
	}
	data := append([]byte(xml.Header), out...)
	data = append(data, '\n')

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write xmltv %s: %w", path, err)
	}
	return nil
}
