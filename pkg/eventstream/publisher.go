// Package eventstream publishes tracked interaction events to an event
// stream backend. Publishing is best-effort: the preference engine persists
// the vector update first and only then emits the event.
package eventstream

import "context"

// Publisher publishes interaction events to an event stream backend.
type Publisher interface {
	PublishInteraction(ctx context.Context, event *InteractionTrackedEvent) error
	Close() error
}
