package theme

import (
	"errors"
	"sync"
)

// ErrNoSignal is returned when no color-scheme preference is available.
var ErrNoSignal = errors.New("theme: no color-scheme signal")

// Signal is the visitor's color-scheme preference as reported by the host
// environment, with change notifications.
type Signal interface {
	// PrefersDark reports the current preference, or an error when the
	// environment exposes none.
	PrefersDark() (bool, error)

	// Subscribe registers fn for preference changes and returns a function
	// that removes it.
	Subscribe(fn func(Mode)) (unsubscribe func())
}

// SchemeSignal is an in-process Signal. Set publishes a new preference to
// every subscriber synchronously, in subscription order.
type SchemeSignal struct {
	mu    sync.Mutex
	known bool
	dark  bool
	subs  observers
}

// NewSchemeSignal returns a signal with no known preference.
func NewSchemeSignal() *SchemeSignal {
	return &SchemeSignal{}
}

// NewSchemeSignalWith returns a signal that starts at mode.
func NewSchemeSignalWith(mode Mode) *SchemeSignal {
	return &SchemeSignal{known: true, dark: mode.IsDark()}
}

func (s *SchemeSignal) PrefersDark() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.known {
		return false, ErrNoSignal
	}
	return s.dark, nil
}

func (s *SchemeSignal) Subscribe(fn func(Mode)) func() {
	return s.subs.add(fn)
}

// Set records a new preference and notifies subscribers.
func (s *SchemeSignal) Set(mode Mode) {
	s.mu.Lock()
	s.known = true
	s.dark = mode.IsDark()
	s.mu.Unlock()

	s.subs.notify(mode)
}

// Subscribers returns the number of live subscriptions.
func (s *SchemeSignal) Subscribers() int {
	return s.subs.len()
}
