// Package theme provides the persisted colour-scheme preference.
package theme

import "strings"

// Preference is the user's chosen colour scheme.
type Preference string

const (
	System Preference = "system"
	Light  Preference = "light"
	Dark   Preference = "dark"
)

// Parse returns the preference for s, or fallback when s is not recognised.
func Parse(s string, fallback Preference) Preference {
	switch Preference(strings.ToLower(strings.TrimSpace(s))) {
	case System:
		return System
	case Light:
		return Light
	case Dark:
		return Dark
	default:
		return fallback
	}
}

// Valid reports whether p is a known preference.
func (p Preference) Valid() bool {
	return p == System || p == Light || p == Dark
}

// Next cycles system → light → dark → system, the order of the header toggle.
func (p Preference) Next() Preference {
	switch p {
	case System:
		return Light
	case Light:
		return Dark
	default:
		return System
	}
}

// ServerClass returns the class the server may render for p.
// System preference depends on the browser, so the server renders nothing
// and leaves the class to the pre-paint script.
func (p Preference) ServerClass() string {
	switch p {
	case Light, Dark:
		return string(p)
	default:
		return ""
	}
}

// String returns the preference value.
func (p Preference) String() string {
	return string(p)
}
