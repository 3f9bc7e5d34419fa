package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// WineType is the style of a wine.
type WineType string

const (
	Red       WineType = "Red"
	White     WineType = "White"
	Rose      WineType = "Rosé"
	Sparkling WineType = "Sparkling"
	Dessert   WineType = "Dessert"
)

// WineTypes lists every accepted type in display order.
var WineTypes = []WineType{Red, White, Rose, Sparkling, Dessert}

// Valid reports whether t is one of WineTypes (exact, NFC spelling).
func (t WineType) Valid() bool {
	for _, v := range WineTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseWineType maps free text onto a WineType. Matching is case-insensitive
// and insensitive to Unicode composition, so "ROSÉ", "Rosé" and the
// unaccented "rose" all yield Rose.
func ParseWineType(s string) (WineType, bool) {
	key := foldKey(s)
	if key == "" {
		return "", false
	}
	for _, t := range WineTypes {
		if foldKey(string(t)) == key {
			return t, true
		}
	}
	if key == "rose" {
		return Rose, true
	}
	return "", false
}

// WineTypeStrings returns WineTypes as plain strings (for schemas and enums).
func WineTypeStrings() []string {
	out := make([]string, len(WineTypes))
	for i, t := range WineTypes {
		out[i] = string(t)
	}
	return out
}

// foldKey builds a comparison key. A Caser is stateful, so one is created
// per call.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

func typeList() string { return strings.Join(WineTypeStrings(), ", ") }
