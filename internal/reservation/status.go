// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package reservation

import "fmt"

// Locale selects the language of Entry.StatusName.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleCZ Locale = "cz"
)

// StatusIDs are the commission status ids requested on every search.
var StatusIDs = []int{1, 2, 3, 6, 7, 8, 9, 10}

var statusEN = map[string]string{
	"1":  "Option",
	"2":  "Confirmed",
	"3":  "Checked in",
	"6":  "Waiting list",
	"7":  "Cancelled",
	"8":  "No-show",
	"9":  "Checked out",
	"10": "Other",
}

var statusCZ = map[string]string{
	"1":  "Opce",
	"2":  "Potvrzeno",
	"3":  "Ubytován",
	"6":  "Čekací listina",
	"7":  "Zrušeno",
	"8":  "Nedostavil se",
	"9":  "Odhlášen",
	"10": "Jiné",
}

// StatusNameEN returns the English name of a status id.
func StatusNameEN(id string) string {
	if name, ok := statusEN[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Status %s", id)
}

// StatusNameCZ returns the Czech name of a status id.
func StatusNameCZ(id string) string {
	if name, ok := statusCZ[id]; ok {
		return name
	}
	return fmt.Sprintf("Neznámý status %s", id)
}

// StatusName returns the name in the given locale; unknown locales use English.
func StatusName(id string, locale Locale) string {
	if locale == LocaleCZ {
		return StatusNameCZ(id)
	}
	return StatusNameEN(id)
}

// ParseLocale validates a locale string.
func ParseLocale(s string) (Locale, error) {
	switch Locale(s) {
	case "", LocaleEN:
		return LocaleEN, nil
	case LocaleCZ:
		return LocaleCZ, nil
	default:
		return "", fmt.Errorf("unknown status locale %q (want en or cz)", s)
	}
}
