// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package epg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// maxXMLSize bounds every document we decode. 50MB is well above the
// largest public XMLTV feeds.
const maxXMLSize = 50 * 1024 * 1024

// ErrEmptyDocument is returned when the input ends before a root element.
var ErrEmptyDocument = errors.New("empty document")

// newDecoder returns a hardened decoder: strict mode, no entity expansion,
// and charset conversion for legacy encodings (windows-1250, iso-8859-2).
func newDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(io.LimitReader(r, maxXMLSize))
	dec.Strict = true
	dec.Entity = make(map[string]string)
	dec.CharsetReader = charset.NewReaderLabel
	return dec
}

// NewDecoder exposes the hardened decoder to other XML consumers.
func NewDecoder(r io.Reader) *xml.Decoder {
	return newDecoder(r)
}

// decodeDocument decodes the root element into v and rejects anything but
// whitespace, comments, directives or processing instructions after it.
func decodeDocument(r io.Reader, v any) error {
	dec := newDecoder(r)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyDocument
		}
		return err
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.Comment, xml.ProcInst, xml.Directive:
		case xml.CharData:
			if len(bytes.TrimSpace(t)) > 0 {
				return errors.New("unexpected text after root element")
			}
		default:
			return fmt.Errorf("unexpected %T after root element", tok)
		}
	}
}
