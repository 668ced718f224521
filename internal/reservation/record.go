// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package reservation polls the hotel reservation API and folds room-level
// records into one entry per reservation group.
package reservation

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/ManuGH/hafeeds/internal/epg"
)

// Record is one room-level <reservation> element. Several records may share
// a ResID when the booking covers more than one room.
type Record struct {
	ResID       string   `xml:"resId"`
	ComID       string   `xml:"comId"`
	Voucher     string   `xml:"voucher"`
	StatusID    *string  `xml:"status>statusId"`
	Room        string   `xml:"object>name"`
	Guest       string   `xml:"guest>name"`
	AlfredPins  []string `xml:"alfredCodeList>alfredCode>pin"`
	CardKeys    []string `xml:"cardDataList>cardData>key"`
	From        string   `xml:"term>from"`
	To          string   `xml:"term>to"`
	Price       *string  `xml:"price"`
	MarketCodes []string `xml:"marketCodeList>marketCode"`
}

// ParseError reports a response body that is not well-formed XML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("reservation: parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseResponse returns every <reservation> element of the document, at any
// depth, in document order.
func ParseResponse(data []byte) ([]Record, error) {
	dec := epg.NewDecoder(bytes.NewReader(data))

	var (
		out  []Record
		seen bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		seen = true
		if se.Name.Local != "reservation" {
			continue
		}
		var rec Record
		if err := dec.DecodeElement(&rec, &se); err != nil {
			return nil, &ParseError{Err: err}
		}
		out = append(out, rec)
	}
	if !seen {
		return nil, &ParseError{Err: errors.New("empty document")}
	}
	return out, nil
}
