// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sensor

import (
	"fmt"
	"sync"

	"github.com/ManuGH/hafeeds/internal/reservation"
)

// Registry tracks the reservation ids that have an entity. Ids are only
// ever added; a reservation that drops out of the feed keeps its entity and
// renders as unavailable.
type Registry struct {
	hotelID string

	mu       sync.RWMutex
	order    []string
	entityID map[string]string
}

// NewRegistry creates an empty registry for one hotel.
func NewRegistry(hotelID string) *Registry {
	return &Registry{hotelID: hotelID, entityID: make(map[string]string)}
}

// Sync registers the ids of snap not seen before and returns them in
// first-seen order.
func (r *Registry) Sync(snap *reservation.Snapshot) []string {
	if snap == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var added []string
	for _, id := range snap.Order {
		if _, ok := r.entityID[id]; ok {
			continue
		}
		// The entity id is fixed from the name at first sight.
		e, _ := snap.Get(id)
		r.entityID[id] = "sensor." + Slugify(reservationName(id, e.Voucher))
		r.order = append(r.order, id)
		added = append(added, id)
	}
	return added
}

// IDs returns every registered id.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entityID[id]
	return ok
}

// Len returns the number of registered ids.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Sensor renders the entity of a registered id. It is available only when
// the last cycle succeeded and the id is part of snap.
func (r *Registry) Sensor(id string, snap *reservation.Snapshot, lastOK bool) (Sensor, bool) {
	r.mu.RLock()
	entityID, ok := r.entityID[id]
	r.mu.RUnlock()
	if !ok {
		return Sensor{}, false
	}

	s := Sensor{
		EntityID:   entityID,
		UniqueID:   fmt.Sprintf("%s_%s_%s", ReservationDomain, r.hotelID, id),
		Name:       reservationName(id, ""),
		Attributes: map[string]any{},
	}

	e, present := snap.Get(id)
	if !lastOK || !present {
		return s, true
	}

	s.Available = true
	s.Name = reservationName(id, e.Voucher)
	s.State = strPtr(e.Voucher)
	s.Attributes = reservationAttrs(e)
	return s, true
}

// All renders every registered entity.
func (r *Registry) All(snap *reservation.Snapshot, lastOK bool) []Sensor {
	ids := r.IDs()
	out := make([]Sensor, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.Sensor(id, snap, lastOK); ok {
			out = append(out, s)
		}
	}
	return out
}

func reservationName(id, voucher string) string {
	if voucher == "" {
		return "Previo v4 " + id
	}
	return "Previo v4 " + voucher
}

func reservationAttrs(e reservation.Entry) map[string]any {
	return map[string]any{
		"res_id":             e.ResID,
		"guest":              e.Guest,
		"room":               e.Room,
		"rooms":              e.Rooms,
		"room_count":         e.RoomCount,
		"is_group":           e.IsGroup,
		"alfred_pin":         e.AlfredPin,
		"alfred_pins":        e.AlfredPins,
		"card_key":           e.CardKey,
		"card_keys":          e.CardKeys,
		"com_id":             e.ComID,
		"com_ids":            e.ComIDs,
		"checkin":            e.Checkin,
		"checkout":           e.Checkout,
		"checkins":           e.Checkins,
		"checkouts":          e.Checkouts,
		"days_until_checkin": e.DaysUntilCheckin,
		"price":              e.PriceFormatted,
		"price_numeric":      e.PriceNumeric,
		"status_id":          e.StatusID,
		"status":             e.StatusName,
		"status_en":          e.StatusNameEN,
		"status_cz":          e.StatusNameCZ,
		"market_codes":       e.MarketCodes,
		"market_codes_text":  e.MarketCodesText,
		"hotel_id":           e.HotelID,
		"last_updated":       e.LastUpdated,
	}
}
