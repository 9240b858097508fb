package config

// EmptyRoutePolicy defines what a write on an empty route does. An empty
// route has no first activity, so there is no cell to hold its state.
type EmptyRoutePolicy string

const (
	// EmptyRouteDrop (default) silently drops the write. Reads on the route
	// resolve to defaults, so a route that becomes empty loses its values.
	EmptyRouteDrop EmptyRoutePolicy = "drop"

	// EmptyRouteError rejects the write with a validation error, surfacing
	// updaters that write route state before the route has activities.
	EmptyRouteError EmptyRoutePolicy = "error"
)

// Effective returns the policy, defaulting an unset value to EmptyRouteDrop.
func (p EmptyRoutePolicy) Effective() EmptyRoutePolicy {
	if p == "" {
		return EmptyRouteDrop
	}
	return p
}
