// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import "fmt"

// ParseError reports a document that could not be decoded at all.
// Individual entries with bad values are skipped instead.
type ParseError struct {
	Format string // "schedule" or "xmltv"
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("epg: parse %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
