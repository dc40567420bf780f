// Package theme resolves and persists the light/dark display mode.
//
// The active mode comes from three sources in priority order: an explicit
// toggle, a previously stored choice, and the visitor's color-scheme
// preference. Once a choice is stored, color-scheme changes are ignored.
package theme

import (
	"fmt"
	"strings"
)

// Mode is a display mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// StorageKey is the key the stored choice lives under.
const StorageKey = "theme"

// ParseMode accepts "light" or "dark" in any case, ignoring surrounding space.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("unknown theme mode %q", s)
	}
}

// FromPrefersDark maps a prefers-dark flag onto a Mode.
func FromPrefersDark(dark bool) Mode {
	if dark {
		return Dark
	}
	return Light
}

// Toggle returns the opposite mode.
func (m Mode) Toggle() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) IsDark() bool { return m == Dark }

func (m Mode) String() string { return string(m) }
