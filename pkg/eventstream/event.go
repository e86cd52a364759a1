package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeInteractionTracked is emitted after an interaction has been
	// folded into a user's preference vector.
	EventTypeInteractionTracked = "vendora.interaction.tracked"
)

// InteractionTrackedEvent is a transport-neutral payload for a tracked
// user interaction.
type InteractionTrackedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	UserID    uint64 `json:"user_id"`
	ProductID uint64 `json:"product_id,omitempty"`
	SKU       string `json:"sku,omitempty"`
	Action    string `json:"action"`

	// ColdStart reports whether this interaction initialized the user's
	// preference vector.
	ColdStart bool `json:"cold_start"`
}
