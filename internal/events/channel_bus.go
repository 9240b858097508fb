package events

import (
	"github.com/gxo-labs/routestate/pkg/routestate/v1/events"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
)

// DefaultBufferSize is used when a non-positive buffer size is requested.
const DefaultBufferSize = 256

// ChannelEventBus is an in-process events.Bus backed by a buffered channel.
// Emit never blocks: when the buffer is full the event is dropped and counted.
type ChannelEventBus struct {
	channel chan events.Event
	log     rslog.Logger
	dropped uint64
}

// NewChannelEventBus creates a bus holding up to bufferSize pending events.
// It panics if log is nil.
func NewChannelEventBus(bufferSize int, log rslog.Logger) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	if log == nil {
		panic("ChannelEventBus requires a non-nil logger")
	}
	bus := &ChannelEventBus{
		channel: make(chan events.Event, bufferSize),
		log:     log.With("component", "ChannelEventBus"),
	}
	bus.log.Debugf("ChannelEventBus initialized with buffer size %d", bufferSize)
	return bus
}

// Emit queues event, or drops it when the buffer is full.
func (c *ChannelEventBus) Emit(event events.Event) {
	select {
	case c.channel <- event:
	default:
		c.dropped++
		c.log.Warnf("Event channel buffer full, dropping event type '%s'", event.Type)
	}
}

// Dropped returns how many events were discarded because the buffer was full.
// Emit and Dropped must be called from the same goroutine.
func (c *ChannelEventBus) Dropped() uint64 { return c.dropped }

// GetChannel returns the receive side for consumers.
func (c *ChannelEventBus) GetChannel() <-chan events.Event {
	return c.channel
}

// Close closes the channel. No Emit may follow.
func (c *ChannelEventBus) Close() {
	c.log.Debugf("Closing ChannelEventBus channel.")
	close(c.channel)
}

var _ events.Bus = (*ChannelEventBus)(nil)
