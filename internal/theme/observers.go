package theme

import "sync"

// observers is an ordered set of change callbacks. The zero value is ready
// to use.
type observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(Mode)
	order  []int
}

func (o *observers) add(fn func(Mode)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func(Mode))
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn
	o.order = append(o.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { o.remove(id) })
	}
}

func (o *observers) remove(id int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.fns, id)
	for i, v := range o.order {
		if v == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			return
		}
	}
}

// notify calls every registered callback outside the lock, so a callback
// may subscribe or unsubscribe without deadlocking.
func (o *observers) notify(mode Mode) {
	o.mu.Lock()
	fns := make([]func(Mode), 0, len(o.order))
	for _, id := range o.order {
		fns = append(fns, o.fns[id])
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(mode)
	}
}

func (o *observers) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.order)
}
