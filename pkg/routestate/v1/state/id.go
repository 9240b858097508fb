// Package state defines state kind identifiers and the typed read API over the
// route and activity state cache.
package state

import "fmt"

// ReservedSlots is the number of slot indices held by the built-in state kinds.
// User-defined kinds are assigned indices from ReservedSlots upwards.
const ReservedSlots = 10

// ID identifies one kind of cached value. Its slot index is assigned once by
// the registry and never changes. The zero ID is not a valid state kind.
type ID struct {
	name  string
	index int
}

// Built-in state kinds. They occupy the reserved slots and are written only by
// the internal updaters.
var (
	Load                       = ID{name: "load", index: 0}
	Costs                      = ID{name: "costs", index: 1}
	Duration                   = ID{name: "duration", index: 2}
	FutureMaxLoad              = ID{name: "future_max_load", index: 3}
	PastMaxLoad                = ID{name: "past_max_load", index: 4}
	LatestOperationStartTime   = ID{name: "latest_operation_start_time", index: 5}
	EarliestOperationStartTime = ID{name: "earliest_operation_start_time", index: 6}
	LoadAtBeginning            = ID{name: "load_at_beginning", index: 7}
	LoadAtEnd                  = ID{name: "load_at_end", index: 8}
	MaxLoad                    = ID{name: "max_load", index: 9}
)

// BuiltIns returns the built-in state kinds ordered by slot index.
func BuiltIns() []ID {
	return []ID{
		Load, Costs, Duration, FutureMaxLoad, PastMaxLoad,
		LatestOperationStartTime, EarliestOperationStartTime,
		LoadAtBeginning, LoadAtEnd, MaxLoad,
	}
}

// NewID binds a name to a slot index. It is meant for registry
// implementations; callers obtain ids through CreateStateID.
func NewID(name string, index int) ID {
	return ID{name: name, index: index}
}

// NewLegacyID builds an id without a slot index.
//
// Deprecated: ids built this way are rejected by every manager operation with
// an ErrLegacyState error. Use the manager's CreateStateID instead.
func NewLegacyID(name string) ID {
	return ID{name: name, index: -1}
}

// Name returns the name the id was registered with.
func (id ID) Name() string { return id.name }

// Index returns the slot index of the id.
func (id ID) Index() int { return id.index }

// IsReserved reports whether the id occupies a built-in slot.
func (id ID) IsReserved() bool { return id.index >= 0 && id.index < ReservedSlots }

func (id ID) String() string { return fmt.Sprintf("%s#%d", id.name, id.index) }
