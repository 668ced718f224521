// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package reservation

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultVoucher     = "není"
	DefaultGuest       = "Host"
	DefaultRoom        = "neznámý pokoj"
	DefaultStatusID    = "0"
	DefaultMarketCodes = "žádné"

	// TermLayout is the check-in/check-out format the API returns.
	TermLayout = "2006-01-02 15:04:05"
	// DisplayLayout is how check-in/check-out times are presented.
	DisplayLayout = "January 02, 2006 at 03:04:05 PM"
)

// Entry is one reservation group with its rooms folded together. Single-value
// fields such as AlfredPin are set only when exactly one value exists.
type Entry struct {
	ResID   string `json:"res_id"`
	Voucher string `json:"voucher"`
	Guest   string `json:"guest"`

	Room      string   `json:"room"`
	Rooms     []string `json:"rooms"`
	RoomCount int      `json:"room_count"`
	IsGroup   bool     `json:"is_group"`

	AlfredPin  *string  `json:"alfred_pin"`
	AlfredPins []string `json:"alfred_pins"`
	CardKey    *string  `json:"card_key"`
	CardKeys   []string `json:"card_keys"`
	ComID      *string  `json:"com_id"`
	ComIDs     []string `json:"com_ids"`

	Checkin          *string  `json:"checkin"`
	Checkout         *string  `json:"checkout"`
	Checkins         []string `json:"checkins"`
	Checkouts        []string `json:"checkouts"`
	DaysUntilCheckin *int     `json:"days_until_checkin"`

	Prices         []float64 `json:"prices"`
	Price          string    `json:"price"`
	PriceNumeric   float64   `json:"price_numeric"`
	PriceFormatted string    `json:"price_formatted"`

	StatusID     string `json:"status_id"`
	StatusName   string `json:"status_name"`
	StatusNameEN string `json:"status_name_en"`
	StatusNameCZ string `json:"status_name_cz"`

	MarketCodes     []string `json:"market_codes"`
	MarketCodesText string   `json:"market_codes_text"`

	HotelID     string    `json:"hotel_id"`
	LastUpdated time.Time `json:"last_updated"`
}

// Snapshot is the published result of one reservation cycle.
type Snapshot struct {
	// Order lists reservation ids in first-seen order.
	Order     []string         `json:"order"`
	Entries   map[string]Entry `json:"entries"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// Get returns the entry for resID.
func (s *Snapshot) Get(resID string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.Entries[resID]
	return e, ok
}

// Len returns the number of reservation groups.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Group splits records by trimmed ResID, dropping records without one. Both the
// group order and the record order within a group follow the input.
func Group(records []Record) ([]string, map[string][]Record) {
	var order []string
	groups := make(map[string][]Record)
	for _, r := range records {
		id := strings.TrimSpace(r.ResID)
		if id == "" {
			continue
		}
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}
	return order, groups
}

// Aggregate folds records into a snapshot. Times without an offset are read
// in loc.
func Aggregate(records []Record, hotelID string, locale Locale, now time.Time, loc *time.Location) *Snapshot {
	if loc == nil {
		loc = time.Local
	}
	order, groups := Group(records)
	snap := &Snapshot{
		Order:     order,
		Entries:   make(map[string]Entry, len(order)),
		FetchedAt: now,
	}
	for _, id := range order {
		snap.Entries[id] = buildEntry(id, groups[id], hotelID, locale, now, loc)
	}
	return snap
}

func buildEntry(resID string, recs []Record, hotelID string, locale Locale, now time.Time, loc *time.Location) Entry {
	first := recs[0]
	e := Entry{
		ResID:       resID,
		Voucher:     first.Voucher,
		Guest:       DefaultGuest,
		RoomCount:   len(recs),
		IsGroup:     len(recs) > 1,
		Rooms:       []string{},
		AlfredPins:  []string{},
		CardKeys:    []string{},
		ComIDs:      []string{},
		Checkins:    []string{},
		Checkouts:   []string{},
		Prices:      []float64{},
		MarketCodes: []string{},
		StatusID:    DefaultStatusID,
		HotelID:     hotelID,
		LastUpdated: now,
	}
	if e.Voucher == "" {
		e.Voucher = DefaultVoucher
	}
	if first.StatusID != nil {
		e.StatusID = *first.StatusID
	}

	var (
		guests       []string
		firstCheckin *time.Time
	)
	for _, r := range recs {
		if r.ComID != "" {
			e.ComIDs = append(e.ComIDs, r.ComID)
		}
		if r.Room != "" {
			e.Rooms = append(e.Rooms, r.Room)
		}
		if r.Guest != "" {
			guests = append(guests, r.Guest)
		}
		e.AlfredPins = appendNonEmpty(e.AlfredPins, r.AlfredPins...)
		e.CardKeys = appendNonEmpty(e.CardKeys, r.CardKeys...)

		if r.From != "" {
			display, t, ok := formatTerm(r.From, loc)
			e.Checkins = append(e.Checkins, display)
			if ok && firstCheckin == nil && len(e.Checkins) == 1 {
				firstCheckin = &t
			}
		}
		if r.To != "" {
			display, _, _ := formatTerm(r.To, loc)
			e.Checkouts = append(e.Checkouts, display)
		}

		e.Prices = append(e.Prices, parsePrice(r.Price))

		for _, code := range r.MarketCodes {
			if code != "" && !slices.Contains(e.MarketCodes, code) {
				e.MarketCodes = append(e.MarketCodes, code)
			}
		}
	}

	if len(guests) > 0 {
		e.Guest = guests[0]
	}
	e.Room = DefaultRoom
	if len(e.Rooms) > 0 {
		e.Room = strings.Join(e.Rooms, ", ")
	}
	e.AlfredPin = single(e.AlfredPins)
	e.CardKey = single(e.CardKeys)
	e.ComID = single(e.ComIDs)
	if len(e.Checkins) > 0 {
		e.Checkin = &e.Checkins[0]
	}
	if len(e.Checkouts) > 0 {
		e.Checkout = &e.Checkouts[0]
	}
	if firstCheckin != nil {
		days := daysBetween(now.In(loc), *firstCheckin)
		e.DaysUntilCheckin = &days
	}

	for _, p := range e.Prices {
		e.PriceNumeric += p
	}
	e.Price = fmt.Sprintf("%.2f", e.PriceNumeric)
	e.PriceFormatted = "0 CZK"
	if e.PriceNumeric > 0 {
		e.PriceFormatted = e.Price + " CZK"
	}

	e.StatusNameEN = StatusNameEN(e.StatusID)
	e.StatusNameCZ = StatusNameCZ(e.StatusID)
	e.StatusName = StatusName(e.StatusID, locale)

	e.MarketCodesText = DefaultMarketCodes
	if len(e.MarketCodes) > 0 {
		e.MarketCodesText = strings.Join(e.MarketCodes, ", ")
	}
	return e
}

// formatTerm renders an API timestamp for display. Values that do not parse
// are returned unchanged with ok false.
func formatTerm(raw string, loc *time.Location) (string, time.Time, bool) {
	t, err := time.ParseInLocation(TermLayout, raw, loc)
	if err != nil {
		return raw, time.Time{}, false
	}
	return t.Format(DisplayLayout), t, true
}

// parsePrice treats a missing or malformed price as zero.
func parsePrice(raw *string) float64 {
	if raw == nil {
		return 0
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// daysBetween counts calendar days from now to t.
func daysBetween(now, t time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := t.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

func single(values []string) *string {
	if len(values) != 1 {
		return nil
	}
	v := values[0]
	return &v
}

func appendNonEmpty(dst []string, values ...string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}
