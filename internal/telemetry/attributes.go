// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by all spans.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	CoordinatorNameKey  = "coordinator.name"
	CoordinatorJobIDKey = "coordinator.job_id"
	CoordinatorCycleKey = "coordinator.cycle"

	UpstreamProviderKey  = "upstream.provider"
	UpstreamOperationKey = "upstream.operation"

	ScheduleChannelsKey = "schedule.channels"
	ScheduleEntriesKey  = "schedule.entries"

	ReservationHotelKey  = "reservation.hotel_id"
	ReservationGroupsKey = "reservation.groups"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CoordinatorAttributes describes one refresh cycle.
func CoordinatorAttributes(name, jobID string, cycle int64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(CoordinatorNameKey, name),
		attribute.Int64(CoordinatorCycleKey, cycle),
	}
	if jobID != "" {
		attrs = append(attrs, attribute.String(CoordinatorJobIDKey, jobID))
	}
	return attrs
}

// UpstreamAttributes describes one upstream exchange.
func UpstreamAttributes(provider, operation, url string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(UpstreamProviderKey, provider),
		attribute.String(UpstreamOperationKey, operation),
		attribute.String(HTTPURLKey, url),
	}
}

// ScheduleAttributes summarizes a published schedule snapshot.
func ScheduleAttributes(channels, entries int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(ScheduleChannelsKey, channels),
		attribute.Int(ScheduleEntriesKey, entries),
	}
}

// ReservationAttributes summarizes a published reservation snapshot.
func ReservationAttributes(hotelID string, groups int) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if hotelID != "" {
		attrs = append(attrs, attribute.String(ReservationHotelKey, hotelID))
	}
	return append(attrs, attribute.Int(ReservationGroupsKey, groups))
}

// ErrorAttributes creates error-related span attributes.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
