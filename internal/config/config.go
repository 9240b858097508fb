package config

// Config holds the storage sizing and ambient settings of a state manager.
// The zero value is not usable; start from Default or Load.
type Config struct {
	SchemaVersion string        `yaml:"schemaVersion" toml:"schemaVersion" json:"schemaVersion" validate:"required"`
	Storage       StorageConfig `yaml:"storage" toml:"storage" json:"storage"`
	Logging       LoggingConfig `yaml:"logging" toml:"logging" json:"logging"`
	Events        EventsConfig  `yaml:"events" toml:"events" json:"events"`
	Metrics       MetricsConfig `yaml:"metrics" toml:"metrics" json:"metrics"`
	// FilePath is the source file, kept for error messages. Not parsed.
	FilePath string `yaml:"-" toml:"-" json:"-"`
}

// StorageConfig dimensions the value matrices. The activity and vehicle type
// dimensions are estimates: writes beyond them grow the matrices.
type StorageConfig struct {
	// MinActivities is the lower bound of the activity dimension.
	MinActivities int `yaml:"min_activities" toml:"min_activities" json:"min_activities" validate:"gte=1"`
	// ActivityHeadroom is added to the problem's activity count.
	ActivityHeadroom int `yaml:"activity_headroom" toml:"activity_headroom" json:"activity_headroom" validate:"gte=0"`
	// MinVehicleTypes is the lower bound of the vehicle type dimension.
	MinVehicleTypes int `yaml:"min_vehicle_types" toml:"min_vehicle_types" json:"min_vehicle_types" validate:"gte=1"`
	// VehicleTypeHeadroom is added to the highest known vehicle type index.
	VehicleTypeHeadroom int `yaml:"vehicle_type_headroom" toml:"vehicle_type_headroom" json:"vehicle_type_headroom" validate:"gte=0"`
	// InitialSlots is the slot dimension allocated at construction. It must
	// leave room for user state kinds after the reserved ones.
	InitialSlots int `yaml:"initial_slots" toml:"initial_slots" json:"initial_slots" validate:"gt=10"`
	// SlotGrowth is the number of slots added when the registry outgrows the
	// slot dimension.
	SlotGrowth int `yaml:"slot_growth" toml:"slot_growth" json:"slot_growth" validate:"gte=1"`
	// EmptyRouteWrites selects what happens to writes on empty routes.
	EmptyRouteWrites EmptyRoutePolicy `yaml:"empty_route_writes" toml:"empty_route_writes" json:"empty_route_writes" validate:"omitempty,oneof=drop error"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" json:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" toml:"format" json:"format" validate:"omitempty,oneof=text json"`
}

// EventsConfig configures the channel event bus created when events are
// enabled and no bus is injected.
type EventsConfig struct {
	Enabled    bool `yaml:"enabled" toml:"enabled" json:"enabled"`
	BufferSize int  `yaml:"buffer_size" toml:"buffer_size" json:"buffer_size" validate:"gte=0"`
}

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	Namespace string `yaml:"namespace" toml:"namespace" json:"namespace" validate:"required,promname"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SchemaVersion: "v1.0.0",
		Storage: StorageConfig{
			MinActivities:       10,
			ActivityHeadroom:    1,
			MinVehicleTypes:     3,
			VehicleTypeHeadroom: 1,
			InitialSlots:        20,
			SlotGrowth:          10,
			EmptyRouteWrites:    EmptyRouteDrop,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Events:  EventsConfig{Enabled: false, BufferSize: 100},
		Metrics: MetricsConfig{Namespace: "routestate"},
	}
}

// ActivityDimension returns the activity dimension for a problem with
// activityCount activities.
func (s StorageConfig) ActivityDimension(activityCount int) int {
	return max(s.MinActivities, activityCount+s.ActivityHeadroom)
}

// VehicleTypeDimension returns the vehicle type dimension for a fleet whose
// highest vehicle type index is maxTypeIndex.
func (s StorageConfig) VehicleTypeDimension(maxTypeIndex int) int {
	return max(s.MinVehicleTypes, maxTypeIndex+1+s.VehicleTypeHeadroom)
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
