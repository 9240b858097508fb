package events

import "github.com/gxo-labs/routestate/pkg/routestate/v1/events"

// NoOpEventBus discards every event. It is the manager's bus when none is
// configured, so emitters never have to check for nil.
type NoOpEventBus struct{}

// NewNoOpEventBus creates a NoOpEventBus.
func NewNoOpEventBus() events.Bus {
	return &NoOpEventBus{}
}

// Emit does nothing.
func (n *NoOpEventBus) Emit(events.Event) {}

var _ events.Bus = (*NoOpEventBus)(nil)
