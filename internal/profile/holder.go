package profile

import "sync"

// Holder is the current profile, shared between the watcher and request
// handlers.
type Holder struct {
	mu      sync.RWMutex
	current *Profile
	subs    []func(*Profile)
}

func NewHolder(p *Profile) *Holder {
	return &Holder{current: p}
}

// Get returns the current profile. Callers must not mutate it.
func (h *Holder) Get() *Profile {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set swaps in p and notifies subscribers.
func (h *Holder) Set(p *Profile) {
	h.mu.Lock()
	h.current = p
	subs := append([]func(*Profile){}, h.subs...)
	h.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// OnChange registers fn to run after every Set.
func (h *Holder) OnChange(fn func(*Profile)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}
