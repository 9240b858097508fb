package state

import (
	"fmt"

	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/gxo-labs/routestate/pkg/routestate/v1/state"
)

// GrowFunc is called when the registry needs a larger slot dimension. It
// receives the new number of slots and must resize every slot-indexed
// structure before returning.
type GrowFunc func(slots int)

// Registry assigns stable slot indices to named state kinds. Built-in kinds
// occupy slots 0..state.ReservedSlots-1 from construction; user kinds get the
// following indices in registration order. Indices are never reused.
//
// Registry is not safe for concurrent use; it is owned by one Store.
type Registry struct {
	byName map[string]state.ID
	ids    []state.ID
	slots  int
	growth int
	onGrow GrowFunc
}

// NewRegistry creates a registry with the built-in kinds pre-registered.
// initialSlots is the slot dimension already allocated by the caller, growth
// the number of slots added each time it is exhausted.
func NewRegistry(initialSlots, growth int, onGrow GrowFunc) *Registry {
	if initialSlots <= state.ReservedSlots {
		initialSlots = state.ReservedSlots + 1
	}
	if growth < 1 {
		growth = 1
	}
	r := &Registry{
		byName: make(map[string]state.ID, initialSlots),
		ids:    make([]state.ID, 0, initialSlots),
		slots:  initialSlots,
		growth: growth,
		onGrow: onGrow,
	}
	for _, id := range state.BuiltIns() {
		r.byName[id.Name()] = id
		r.ids = append(r.ids, id)
	}
	return r
}

// Register returns the id of name, allocating the next free slot when the
// name is new. The boolean reports whether a new slot was allocated.
func (r *Registry) Register(name string) (state.ID, bool) {
	if id, ok := r.byName[name]; ok {
		return id, false
	}
	next := len(r.ids)
	if next >= r.slots {
		r.slots = max(next+1, r.slots+r.growth)
		if r.onGrow != nil {
			r.onGrow(r.slots)
		}
	}
	id := state.NewID(name, next)
	r.byName[name] = id
	r.ids = append(r.ids, id)
	return id, true
}

// Lookup returns the id registered under name.
func (r *Registry) Lookup(name string) (state.ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Check verifies that id was issued by this registry. op names the calling
// operation in the returned error.
func (r *Registry) Check(id state.ID, op string) error {
	idx := id.Index()
	if idx < 0 || idx >= len(r.ids) || r.ids[idx].Name() != id.Name() {
		return rserrors.NewLegacyStateError(id.Name(), idx, op)
	}
	return nil
}

// CheckWritable is Check plus the reserved slot rule of the public write path.
func (r *Registry) CheckWritable(id state.ID, op string) error {
	if err := r.Check(id, op); err != nil {
		return err
	}
	if id.IsReserved() {
		return rserrors.NewReservedStateError(id.Name(), id.Index(), op)
	}
	return nil
}

// Len returns the number of registered kinds, built-ins included.
func (r *Registry) Len() int { return len(r.ids) }

// Slots returns the current slot dimension.
func (r *Registry) Slots() int { return r.slots }

// IDs returns the registered ids ordered by slot index.
func (r *Registry) IDs() []state.ID {
	out := make([]state.ID, len(r.ids))
	copy(out, r.ids)
	return out
}

func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d kinds, %d slots)", len(r.ids), r.slots)
}
