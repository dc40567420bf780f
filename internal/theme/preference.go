package theme

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Preference holds the stored choice, the system preference, and the active
// mode derived from them.
//
// Storage failures never surface to callers. The first failed read or write
// is logged and the Preference keeps working from memory for the rest of its
// life.
type Preference struct {
	mu          sync.Mutex
	storage     Storage
	stored      Mode
	system      Mode
	active      Mode
	subs        observers
	unsubscribe func()
	logger      *zap.Logger
}

// New resolves the active mode once: a stored choice wins, then the signal,
// then Light. A nil storage keeps the preference in memory only; a nil signal
// means no system preference is available.
func New(ctx context.Context, storage Storage, signal Signal, logger *zap.Logger) *Preference {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Preference{
		storage: storage,
		system:  Light,
		logger:  logger.With(zap.String("component", "theme")),
	}

	p.mu.Lock()
	p.loadStored(ctx)
	if signal != nil {
		dark, err := signal.PrefersDark()
		if err != nil {
			p.logger.Debug("no color-scheme signal, defaulting to light", zap.Error(err))
		} else {
			p.system = FromPrefersDark(dark)
		}
	}
	p.resolve()
	p.mu.Unlock()

	if signal != nil {
		p.unsubscribe = signal.Subscribe(p.OnSystemPreferenceChange)
	}
	return p
}

// Active returns the mode that drives rendering.
func (p *Preference) Active() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Stored returns the explicit choice, if one exists.
func (p *Preference) Stored() (Mode, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored, p.stored != ""
}

// System returns the last known system preference.
func (p *Preference) System() Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.system
}

// Persistent reports whether choices still reach the storage backend.
func (p *Preference) Persistent() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.storage != nil
}

// Toggle flips the active mode and stores it as the explicit choice.
func (p *Preference) Toggle(ctx context.Context) Mode {
	p.mu.Lock()
	p.active = p.active.Toggle()
	p.stored = p.active
	mode := p.active
	if p.storage != nil {
		if err := p.storage.Set(ctx, StorageKey, string(mode)); err != nil {
			p.degrade("write", err)
		}
	}
	p.mu.Unlock()

	p.subs.notify(mode)
	return mode
}

// OnSystemPreferenceChange records a new system preference. It only moves the
// active mode when no explicit choice is stored. Repeated calls with the same
// mode notify at most once.
func (p *Preference) OnSystemPreferenceChange(mode Mode) {
	p.mu.Lock()
	p.system = mode
	// The stored value may have been cleared since startup.
	p.loadStored(context.Background())
	before := p.active
	p.resolve()
	after := p.active
	p.mu.Unlock()

	if before != after {
		p.subs.notify(after)
	}
}

// Subscribe registers fn to run whenever the active mode changes.
func (p *Preference) Subscribe(fn func(Mode)) func() {
	return p.subs.add(fn)
}

// Close detaches the preference from its signal.
func (p *Preference) Close() {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
}

// loadStored refreshes p.stored from storage. Callers hold p.mu.
func (p *Preference) loadStored(ctx context.Context) {
	if p.storage == nil {
		return
	}
	raw, err := p.storage.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, ErrNotFound):
		p.stored = ""
	case err != nil:
		p.degrade("read", err)
	default:
		mode, perr := ParseMode(raw)
		if perr != nil {
			p.logger.Debug("ignoring unparsable stored theme", zap.String("value", raw))
			p.stored = ""
			return
		}
		p.stored = mode
	}
}

// resolve derives the active mode. Callers hold p.mu.
func (p *Preference) resolve() {
	if p.stored != "" {
		p.active = p.stored
		return
	}
	p.active = p.system
}

// degrade drops the storage backend after a failure. Callers hold p.mu.
func (p *Preference) degrade(op string, err error) {
	p.logger.Warn("theme storage unavailable, keeping preference in memory",
		zap.String("op", op), zap.Error(err))
	p.storage = nil
}
