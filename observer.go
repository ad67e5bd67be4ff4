package projects

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer is notified of document events. Events follow the CloudEvents
// specification.
type Observer interface {
	// OnEvent is called synchronously for every event the observer subscribed
	// to. A returned error is logged and does not stop delivery to others.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID identifies the observer for registration and logging.
	ObserverID() string
}

// Subject is implemented by objects that emit events to observers.
type Subject interface {
	// RegisterObserver adds observer for the given event types, or for all
	// events when none are given. Registering the same ID again replaces the
	// earlier registration.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers delivers event to every interested observer in
	// registration order.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers describes the current registrations.
	GetObservers() []ObserverInfo
}

// ObserverInfo describes a registered observer.
type ObserverInfo struct {
	ID string `json:"id"`

	// EventTypes is empty when the observer receives every event.
	EventTypes []string `json:"eventTypes"`

	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by documents.
const (
	EventTypeDocumentOpened          = "com.projects.document.opened"
	EventTypeDocumentSaved           = "com.projects.document.saved"
	EventTypeDocumentClosed          = "com.projects.document.closed"
	EventTypeDocumentModified        = "com.projects.document.modified"
	EventTypeDocumentPropertyChanged = "com.projects.document.property.changed"
	EventTypeDocumentDiskChanged     = "com.projects.document.disk.changed"
)

// FunctionalObserver adapts a function to the Observer interface.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver returns an observer that calls handler for each event.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent calls the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID returns the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}
