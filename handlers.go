package projects

import "sync"

// Unsubscribe removes a previously registered handler. Calling it more than
// once is harmless.
type Unsubscribe func()

// ModifiedChangedHandler is called after the modified flag of sender changed.
type ModifiedChangedHandler func(sender any, modified bool)

// PropertyChangedHandler is called after the property name of sender changed.
type PropertyChangedHandler func(sender any, name string)

type handlerEntry[H any] struct {
	id uint64
	fn H
}

// handlerList keeps handlers in registration order. Handlers are always
// invoked from a snapshot taken under the lock, never while holding it.
type handlerList[H any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []handlerEntry[H]
}

func (l *handlerList[H]) add(fn H) Unsubscribe {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, handlerEntry[H]{id: id, fn: fn})
	l.mu.Unlock()

	return func() { l.remove(id) }
}

func (l *handlerList[H]) remove(id uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, entry := range l.entries {
		if entry.id == id {
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			return
		}
	}
}

func (l *handlerList[H]) snapshot() []H {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]H, len(l.entries))
	for i, entry := range l.entries {
		out[i] = entry.fn
	}
	return out
}

func (l *handlerList[H]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
