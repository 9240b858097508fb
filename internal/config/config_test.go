package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gxo-labs/routestate/internal/config"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, config.Validate(cfg))
	assert.Equal(t, config.EmptyRouteDrop, cfg.Storage.EmptyRouteWrites)
	assert.Equal(t, 10, cfg.Storage.ActivityDimension(3), "small problems get the minimum")
	assert.Equal(t, 101, cfg.Storage.ActivityDimension(100))
	assert.Equal(t, 3, cfg.Storage.VehicleTypeDimension(-1))
	assert.Equal(t, 6, cfg.Storage.VehicleTypeDimension(4))
}

func TestLoad_YAML(t *testing.T) {
	doc := `
schemaVersion: "v1.2.0"
storage:
  min_activities: 64
  initial_slots: 32
  empty_route_writes: error
logging:
  level: debug
  format: json
events:
  enabled: true
  buffer_size: 16
metrics:
  namespace: solver
`
	cfg, err := config.Load([]byte(doc), config.FormatYAML, "test.yaml")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Storage.MinActivities)
	assert.Equal(t, 32, cfg.Storage.InitialSlots)
	assert.Equal(t, 10, cfg.Storage.SlotGrowth, "unset fields keep their defaults")
	assert.Equal(t, config.EmptyRouteError, cfg.Storage.EmptyRouteWrites)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "solver", cfg.Metrics.Namespace)
	assert.Equal(t, "test.yaml", cfg.FilePath)
}

func TestLoad_TOML(t *testing.T) {
	doc := `
schemaVersion = "1.0.0"

[storage]
slot_growth = 4
min_vehicle_types = 2

[logging]
level = "warn"
`
	cfg, err := config.Load([]byte(doc), config.FormatTOML, "test.toml")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Storage.SlotGrowth)
	assert.Equal(t, 2, cfg.Storage.MinVehicleTypes)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		format config.Format
	}{
		{"empty document", "  \n", config.FormatYAML},
		{"unknown yaml key", "schemaVersion: v1.0.0\nstorage:\n  slots: 3\n", config.FormatYAML},
		{"schema enum", "schemaVersion: v1.0.0\nstorage:\n  empty_route_writes: ignore\n", config.FormatYAML},
		{"too few slots", "schemaVersion: v1.0.0\nstorage:\n  initial_slots: 10\n", config.FormatYAML},
		{"unknown toml key", "schemaVersion = \"v1.0.0\"\n[storage]\nslots = 3\n", config.FormatTOML},
		{"bad toml", "schemaVersion = ", config.FormatTOML},
		{"incompatible major", "schemaVersion: v2.0.0\n", config.FormatYAML},
		{"invalid version", "schemaVersion: latest\n", config.FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load([]byte(tt.doc), tt.format, tt.name)
			assert.Error(t, err)
		})
	}
}

func TestCheckSchemaVersion(t *testing.T) {
	assert.NoError(t, config.CheckSchemaVersion("v1.0.0"))
	assert.NoError(t, config.CheckSchemaVersion("1.4.2"))

	var verr *rserrors.ValidationError
	for _, v := range []string{"", "v2.0.0", "one"} {
		err := config.CheckSchemaVersion(v)
		assert.True(t, errors.As(err, &verr), v)
	}
}

func TestValidate_StructRules(t *testing.T) {
	cfg := config.Default()
	cfg.Metrics.Namespace = "route-state"
	cfg.Storage.SlotGrowth = 0

	err := config.Validate(cfg)
	var verr *rserrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, err.Error(), "2 validation error(s)")
	assert.Contains(t, err.Error(), "Namespace")
	assert.Contains(t, err.Error(), "SlotGrowth")

	assert.Error(t, config.Validate(nil))
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("ROUTESTATE_LOG_LEVEL", "error")
	t.Setenv("ROUTESTATE_INITIAL_SLOTS", "48")
	t.Setenv("ROUTESTATE_EVENTS_ENABLED", "true")
	t.Setenv("ROUTESTATE_EMPTY_ROUTE_WRITES", "error")

	cfg := config.Default()
	require.NoError(t, config.ApplyEnv(cfg))
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, 48, cfg.Storage.InitialSlots)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, config.EmptyRouteError, cfg.Storage.EmptyRouteWrites)

	cfg, err := config.Load([]byte("schemaVersion: v1.0.0\nstorage:\n  initial_slots: 12\n"), config.FormatYAML, "")
	require.NoError(t, err)
	assert.Equal(t, 48, cfg.Storage.InitialSlots, "environment wins over the document")
}

func TestApplyEnv_InvalidValues(t *testing.T) {
	t.Setenv("ROUTESTATE_SLOT_GROWTH", "many")
	var cerr *rserrors.ConfigError
	assert.True(t, errors.As(config.ApplyEnv(config.Default()), &cerr))

	t.Setenv("ROUTESTATE_SLOT_GROWTH", "2")
	t.Setenv("ROUTESTATE_EVENTS_ENABLED", "sometimes")
	assert.True(t, errors.As(config.ApplyEnv(config.Default()), &cerr))
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "routestate.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("schemaVersion: v1.0.0\nmetrics:\n  namespace: fleet\n"), 0o600))
	tomlPath := filepath.Join(dir, "routestate.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("schemaVersion = \"v1.0.0\"\n[metrics]\nnamespace = \"depot\"\n"), 0o600))

	cfg, err := config.LoadFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "fleet", cfg.Metrics.Namespace)
	assert.Equal(t, yamlPath, cfg.FilePath)

	cfg, err = config.LoadFromFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "depot", cfg.Metrics.Namespace)

	_, err = config.LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	_, err = config.LoadFromFile("")
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "ROUTESTATE_TEST_DOTENV_NAMESPACE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(key+"=from_file\n"), 0o600))

	require.NoError(t, config.LoadDotEnv(filepath.Join(dir, "absent.env"), envPath))
	assert.Equal(t, "from_file", os.Getenv(key))

	require.NoError(t, os.WriteFile(envPath, []byte(key+"=changed\n"), 0o600))
	require.NoError(t, config.LoadDotEnv(envPath))
	assert.Equal(t, "from_file", os.Getenv(key), "existing variables are not overridden")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, config.FormatTOML, config.FormatFromPath("a/b.TOML"))
	assert.Equal(t, config.FormatYAML, config.FormatFromPath("a/b.yml"))
	assert.Equal(t, config.FormatYAML, config.FormatFromPath("config"))
}

func TestClone_IsIndependent(t *testing.T) {
	cfg := config.Default()
	cp := cfg.Clone()
	cp.Storage.InitialSlots = 99
	assert.Equal(t, 20, cfg.Storage.InitialSlots)
}
