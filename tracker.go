package projects

import "sync"

// Tracker holds a modified flag and notifies handlers when it flips. The zero
// value is a clean tracker with no handlers.
type Tracker struct {
	mu       sync.Mutex
	modified bool
	sender   any
	handlers handlerList[ModifiedChangedHandler]
}

// Modified reports whether there are unsaved changes.
func (t *Tracker) Modified() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.modified
}

// SetModified updates the flag. Handlers run only when the value actually
// changes, after the new value is visible to Modified.
func (t *Tracker) SetModified(modified bool) {
	t.mu.Lock()
	if t.modified == modified {
		t.mu.Unlock()
		return
	}
	t.modified = modified
	sender := t.senderLocked()
	t.mu.Unlock()

	for _, h := range t.handlers.snapshot() {
		h(sender, modified)
	}
}

// SetSender sets the object reported to handlers as the sender. By default the
// tracker reports itself.
func (t *Tracker) SetSender(sender any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sender = sender
}

// OnModifiedChanged registers h for flag transitions.
func (t *Tracker) OnModifiedChanged(h ModifiedChangedHandler) Unsubscribe {
	return t.handlers.add(h)
}

func (t *Tracker) senderLocked() any {
	if t.sender != nil {
		return t.sender
	}
	return t
}
