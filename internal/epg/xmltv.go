// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package epg holds the schedule model and the parsers that map provider
// XML documents into it.
package epg

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	xmltvTimeLayout      = "20060102150405 -0700"
	xmltvLocalTimeLayout = "20060102150405"
)

type TV struct {
	XMLName    xml.Name    `xml:"tv"`
	Generator  string      `xml:"generator-info-name,attr,omitempty"`
	Channels   []Channel   `xml:"channel"`
	Programmes []Programme `xml:"programme"`
}

type Channel struct {
	ID          string   `xml:"id,attr"`
	DisplayName []string `xml:"display-name"`
}

type Programme struct {
	Start    string `xml:"start,attr"`
	Stop     string `xml:"stop,attr,omitempty"`
	Channel  string `xml:"channel,attr"`
	Title    []Text `xml:"title"`
	SubTitle []Text `xml:"sub-title,omitempty"`
	Desc     []Text `xml:"desc,omitempty"`
	Category []Text `xml:"category,omitempty"`
}

// Text is a possibly language-tagged character data element.
type Text struct {
	Lang  string `xml:"lang,attr,omitempty"`
	Value string `xml:",chardata"`
}

// ParseXMLTV decodes a complete XMLTV document.
func ParseXMLTV(r io.Reader) (*TV, error) {
	var doc TV
	if err := decodeDocument(r, &doc); err != nil {
		return nil, &ParseError{Format: "xmltv", Err: fmt.Errorf("decode xmltv: %w", err)}
	}
	return &doc, nil
}

// FilterProgrammes returns the programmes of one source channel whose start
// lies in [from, to). Entries with an unparseable start are skipped.
func FilterProgrammes(tv *TV, channelID string, from, to time.Time, loc *time.Location) []Program {
	if tv == nil {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	var out []Program
	for _, p := range tv.Programmes {
		if p.Channel != channelID {
			continue
		}
		start, ok := parseXMLTVTime(p.Start, loc)
		if !ok {
			continue
		}
		if start.Before(from) || !start.Before(to) {
			continue
		}

		prog := Program{
			Date:         start.Format(DateLayout),
			Time:         start.Format(TimeLayout),
			Title:        first(p.Title),
			EpisodeTitle: first(p.SubTitle),
			Description:  first(p.Desc),
			Genre:        first(p.Category),
		}
		if prog.Title == "" {
			prog.Title = DefaultTitle
		}
		if stop, ok := parseXMLTVTime(p.Stop, loc); ok && stop.After(start) {
			prog.Duration = fmt.Sprintf("%d min", int(stop.Sub(start).Minutes()))
		}
		out = append(out, prog)
	}
	return out
}

// parseXMLTVTime accepts "YYYYMMDDHHMMSS +ZZZZ". A missing offset is read as
// local time in loc. The result is always expressed in loc.
func parseXMLTVTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(xmltvLocalTimeLayout) {
		return time.Time{}, false
	}
	if len(s) == len(xmltvLocalTimeLayout) {
		t, err := time.ParseInLocation(xmltvLocalTimeLayout, s, loc)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	t, err := time.Parse(xmltvTimeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}

// FormatXMLTVTime formats t as "YYYYMMDDHHMMSS +ZZZZ".
func FormatXMLTVTime(t time.Time) string {
	return t.Format(xmltvTimeLayout)
}

func first(ts []Text) string {
	if len(ts) == 0 {
		return ""
	}
	return strings.TrimSpace(ts[0].Value)
}
