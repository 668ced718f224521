// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package sensor

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a display name into an entity id fragment.
// Example: "ČT sport - Aktuální program" → "ct_sport_aktualni_program"
func Slugify(name string) string {
	// Decompose so diacritics become separate marks we can drop.
	decomposed := norm.NFD.String(strings.ToLower(name))

	var b strings.Builder
	lastWasSep := true
	for _, r := range decomposed {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			lastWasSep = false
		case !lastWasSep:
			b.WriteByte('_')
			lastWasSep = true
		}
	}

	slug := strings.TrimRight(b.String(), "_")
	if slug == "" {
		return "unknown"
	}
	return slug
}
