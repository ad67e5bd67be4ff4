package projects

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// observerRegistration holds one registered observer.
type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool // empty means every event
	eventOrder   []string
	registeredAt time.Time
}

func (r *observerRegistration) wants(eventType string) bool {
	return len(r.eventTypes) == 0 || r.eventTypes[eventType]
}

// observerRegistry keeps registrations in the order they were made.
type observerRegistry struct {
	mu            sync.RWMutex
	registrations []*observerRegistration
}

func (r *observerRegistry) any() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registrations) > 0
}

func (r *observerRegistry) snapshot() []*observerRegistration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*observerRegistration, len(r.registrations))
	copy(out, r.registrations)
	return out
}

// RegisterObserver adds an observer for the given event types, or for every
// document event when none are given.
func (d *Document) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrNilObserver
	}
	eventTypeMap := make(map[string]bool, len(eventTypes))
	eventOrder := make([]string, 0, len(eventTypes))
	for _, eventType := range eventTypes {
		if !eventTypeMap[eventType] {
			eventOrder = append(eventOrder, eventType)
		}
		eventTypeMap[eventType] = true
	}
	registration := &observerRegistration{
		observer:     observer,
		eventTypes:   eventTypeMap,
		eventOrder:   eventOrder,
		registeredAt: time.Now(),
	}

	d.observers.mu.Lock()
	replaced := false
	for i, existing := range d.observers.registrations {
		if existing.observer.ObserverID() == observer.ObserverID() {
			d.observers.registrations[i] = registration
			replaced = true
			break
		}
	}
	if !replaced {
		d.observers.registrations = append(d.observers.registrations, registration)
	}
	d.observers.mu.Unlock()

	d.log().Debug("Observer registered", "observerID", observer.ObserverID(), "eventTypes", eventTypes)
	return nil
}

// UnregisterObserver removes an observer. Unknown observers are ignored.
func (d *Document) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return ErrNilObserver
	}
	d.observers.mu.Lock()
	defer d.observers.mu.Unlock()

	for i, existing := range d.observers.registrations {
		if existing.observer.ObserverID() == observer.ObserverID() {
			d.observers.registrations = append(d.observers.registrations[:i:i], d.observers.registrations[i+1:]...)
			d.log().Debug("Observer unregistered", "observerID", observer.ObserverID())
			return nil
		}
	}
	return nil
}

// NotifyObservers delivers event synchronously to each interested observer in
// registration order. Observer errors and panics are logged; only an invalid
// event is returned as an error.
func (d *Document) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	if event.Time().IsZero() {
		event.SetTime(time.Now())
	}
	if err := ValidateCloudEvent(event); err != nil {
		d.log().Error("Invalid CloudEvent", "eventType", event.Type(), "error", err)
		return err
	}

	for _, registration := range d.observers.snapshot() {
		if !registration.wants(event.Type()) {
			continue
		}
		d.deliver(ctx, registration.observer, event)
	}
	return nil
}

func (d *Document) deliver(ctx context.Context, observer Observer, event cloudevents.Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log().Error("Observer panicked", "observerID", observer.ObserverID(), "event", event.Type(), "panic", fmt.Sprint(r))
		}
	}()
	if err := observer.OnEvent(ctx, event); err != nil {
		d.log().Error("Observer error", "observerID", observer.ObserverID(), "event", event.Type(), "error", err)
	}
}

// GetObservers describes the registered observers in registration order.
func (d *Document) GetObservers() []ObserverInfo {
	registrations := d.observers.snapshot()
	info := make([]ObserverInfo, 0, len(registrations))
	for _, registration := range registrations {
		info = append(info, ObserverInfo{
			ID:           registration.observer.ObserverID(),
			EventTypes:   slices.Clone(registration.eventOrder),
			RegisteredAt: registration.registeredAt,
		})
	}
	return info
}

func (d *Document) log() Logger {
	if d.logger == nil {
		return discardLogger()
	}
	return d.logger
}
