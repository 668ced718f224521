// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldJobID     = "job_id"
	FieldRequestID = "request_id"
	FieldResID     = "res_id"
	FieldHotelID   = "hotel_id"

	// Process fields
	FieldEvent       = "event"
	FieldComponent   = "component"
	FieldCoordinator = "coordinator"
	FieldProvider    = "provider"

	// Schedule fields
	FieldChannel = "channel"
	FieldDate    = "date"
	FieldCount   = "count"

	// Storage fields
	FieldKey     = "key"
	FieldPath    = "path"
	FieldBackend = "backend"

	// Network fields
	FieldURL    = "url"
	FieldStatus = "status"
)
