package events

import "time"

// EventType represents the type of a state manager event.
type EventType string

// Standard event types
const (
	IterationStarted EventType = "IterationStarted"
	InsertionStarted EventType = "InsertionStarted"
	JobInserted      EventType = "JobInserted"
	InsertionEnded   EventType = "InsertionEnded"
	RuinStarted      EventType = "RuinStarted"
	JobRemoved       EventType = "JobRemoved"
	RuinEnded        EventType = "RuinEnded"
	StatesCleared    EventType = "StatesCleared"  // All stored values were wiped
	StorageResized   EventType = "StorageResized" // A value matrix was reallocated
	StateRegistered  EventType = "StateRegistered"
	UpdaterAdded     EventType = "UpdaterAdded"
)

// Event represents a significant occurrence within the state manager.
type Event struct {
	// Type categorizes the event.
	Type EventType `json:"type"`
	// Timestamp marks when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// RunID identifies the manager instance that emitted the event.
	RunID string `json:"run_id"`
	// Payload contains event-specific data such as route sizes, slot counts
	// or job ids. It never carries stored state values.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Bus defines the interface for publishing state manager events.
type Bus interface {
	// Emit publishes an event to the bus. Implementations must not block the
	// caller, which is the solver's hot loop.
	Emit(event Event)
}
