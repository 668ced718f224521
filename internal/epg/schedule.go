// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"bytes"
	"strings"
	"time"
)

// scheduleDoc mirrors the native schedule API response: a root element of any
// name with repeated <porad> children.
type scheduleDoc struct {
	Items []scheduleItem `xml:"porad"`
}

type scheduleItem struct {
	Time        *string         `xml:"cas"`
	Date        *string         `xml:"datum"`
	Titles      *scheduleTitles `xml:"nazvy"`
	Episode     string          `xml:"dil"`
	Genre       string          `xml:"zanr"`
	Duration    string          `xml:"stopaz"`
	Description string          `xml:"noticka"`
	Links       *scheduleLinks  `xml:"linky"`
	Icons       *scheduleIcons  `xml:"ikony"`
}

type scheduleTitles struct {
	Supertitle   string  `xml:"nadtitul"`
	Title        *string `xml:"nazev"`
	EpisodeTitle string  `xml:"nazev_casti"`
}

type scheduleLinks struct {
	Program string `xml:"program"`
}

type scheduleIcons struct {
	Audio       string `xml:"zvuk"`
	Subtitles   string `xml:"skryte_titulky"`
	Live        string `xml:"live"`
	Premiere    string `xml:"premiera"`
	AspectRatio string `xml:"pomer"`
}

// ParseSchedule maps a native schedule document into programmes. day is the
// requested day and fills in entries that carry no <datum>.
//
// A document that is not well-formed yields a *ParseError and no entries.
// Entries whose date or time does not parse are dropped.
func ParseSchedule(data []byte, day time.Time) ([]Program, error) {
	var doc scheduleDoc
	if err := decodeDocument(bytes.NewReader(data), &doc); err != nil {
		return nil, &ParseError{Format: "schedule", Err: err}
	}

	out := make([]Program, 0, len(doc.Items))
	for _, it := range doc.Items {
		p, ok := it.program(day)
		if !ok {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (it scheduleItem) program(day time.Time) (Program, bool) {
	p := Program{
		Title:       DefaultTitle,
		Episode:     text(it.Episode),
		Genre:       text(it.Genre),
		Duration:    text(it.Duration),
		Description: text(it.Description),
	}

	if it.Time == nil {
		return Program{}, false
	}
	clock := text(*it.Time)
	if _, err := time.Parse(TimeLayout, clock); err != nil {
		return Program{}, false
	}
	p.Time = clock

	if it.Date != nil && text(*it.Date) != "" {
		d := text(*it.Date)
		if _, err := time.Parse(DateLayout, d); err != nil {
			return Program{}, false
		}
		p.Date = d
	} else {
		p.Date = day.Format(DateLayout)
	}

	if it.Titles != nil {
		p.Supertitle = text(it.Titles.Supertitle)
		p.EpisodeTitle = text(it.Titles.EpisodeTitle)
		if it.Titles.Title != nil && text(*it.Titles.Title) != "" {
			p.Title = text(*it.Titles.Title)
		}
	}

	if it.Links != nil {
		p.Link = text(it.Links.Program)
	}

	if it.Icons != nil {
		p.Audio = text(it.Icons.Audio)
		p.Subtitles = flag(it.Icons.Subtitles)
		p.Live = flag(it.Icons.Live)
		p.Premiere = flag(it.Icons.Premiere)
		p.AspectRatio = text(it.Icons.AspectRatio)
	}

	return p, true
}

func text(s string) string { return strings.TrimSpace(s) }

func flag(s string) bool { return text(s) == "1" }
