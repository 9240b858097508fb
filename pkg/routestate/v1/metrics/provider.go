package metrics

import "github.com/prometheus/client_golang/prometheus"

// RegistryProvider gives access to the registry holding the state manager
// metrics, so callers can expose them the way they see fit.
type RegistryProvider interface {
	// Registry returns the Prometheus registry containing the metrics.
	Registry() *prometheus.Registry
}
