package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ROUTESTATE_"

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given) without overriding variables already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return rserrors.NewConfigError(fmt.Sprintf("failed to load env file '%s'", p), err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg fields from ROUTESTATE_* environment variables.
func ApplyEnv(cfg *Config) error {
	strVars := []struct {
		name   string
		target *string
	}{
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"LOG_FORMAT", &cfg.Logging.Format},
		{"METRICS_NAMESPACE", &cfg.Metrics.Namespace},
	}
	for _, v := range strVars {
		if val, ok := os.LookupEnv(EnvPrefix + v.name); ok {
			*v.target = val
		}
	}

	intVars := []struct {
		name   string
		target *int
	}{
		{"MIN_ACTIVITIES", &cfg.Storage.MinActivities},
		{"MIN_VEHICLE_TYPES", &cfg.Storage.MinVehicleTypes},
		{"INITIAL_SLOTS", &cfg.Storage.InitialSlots},
		{"SLOT_GROWTH", &cfg.Storage.SlotGrowth},
		{"EVENTS_BUFFER_SIZE", &cfg.Events.BufferSize},
	}
	for _, v := range intVars {
		val, ok := os.LookupEnv(EnvPrefix + v.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return rserrors.NewConfigError(fmt.Sprintf("invalid integer in %s%s", EnvPrefix, v.name), err)
		}
		*v.target = n
	}

	if val, ok := os.LookupEnv(EnvPrefix + "EVENTS_ENABLED"); ok {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return rserrors.NewConfigError(fmt.Sprintf("invalid boolean in %sEVENTS_ENABLED", EnvPrefix), err)
		}
		cfg.Events.Enabled = b
	}
	if val, ok := os.LookupEnv(EnvPrefix + "EMPTY_ROUTE_WRITES"); ok {
		cfg.Storage.EmptyRouteWrites = EmptyRoutePolicy(val)
	}
	return nil
}
