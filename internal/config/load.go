package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedSchemaVersionConstraint is the major schema version this module
// accepts.
const SupportedSchemaVersionConstraint = "v1"

// Format identifies the encoding of a configuration document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the document format from the file extension. Unknown
// extensions are read as YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// Load parses a configuration document on top of Default, checks the schema
// version, applies environment overrides and validates the result.
// filePathHint is only used in error messages.
func Load(data []byte, format Format, filePathHint string) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, rserrors.NewConfigError("configuration content cannot be empty", nil)
	}

	cfg := Default()
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, rserrors.NewConfigError(fmt.Sprintf("failed to parse configuration TOML '%s'", filePathHint), err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, rserrors.NewConfigError(fmt.Sprintf("configuration '%s' has unknown key '%s'", filePathHint, undecoded[0].String()), nil)
		}
	default:
		if err := ValidateWithSchema(data); err != nil {
			return nil, rserrors.NewConfigError(fmt.Sprintf("configuration '%s' failed schema validation", filePathHint), err)
		}
		if err := yamlUnmarshalStrict(data, cfg); err != nil {
			return nil, rserrors.NewConfigError(fmt.Sprintf("failed to parse configuration YAML '%s'", filePathHint), err)
		}
	}
	cfg.FilePath = filePathHint

	if err := CheckSchemaVersion(cfg.SchemaVersion); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile reads a YAML or TOML configuration file, chosen by extension.
func LoadFromFile(filePath string) (*Config, error) {
	if filePath == "" {
		return nil, rserrors.NewConfigError("configuration file path cannot be empty", nil)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, rserrors.NewConfigError(fmt.Sprintf("failed to get absolute path for '%s'", filePath), err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, rserrors.NewConfigError(fmt.Sprintf("failed to read configuration file '%s'", absPath), err)
	}
	return Load(data, FormatFromPath(absPath), absPath)
}

// CheckSchemaVersion verifies that version is a semantic version whose major
// matches SupportedSchemaVersionConstraint. A missing "v" prefix is accepted.
func CheckSchemaVersion(version string) error {
	if version == "" {
		return rserrors.NewValidationError("configuration is missing required 'schemaVersion' field", nil)
	}
	v := version
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return rserrors.NewValidationError(fmt.Sprintf("invalid 'schemaVersion' format: '%s'", version), nil)
	}
	if semver.Major(v) != SupportedSchemaVersionConstraint {
		return rserrors.NewValidationError(
			fmt.Sprintf("schemaVersion '%s' is not compatible with requirement '%s'", version, SupportedSchemaVersionConstraint), nil)
	}
	return nil
}

// yamlUnmarshalStrict rejects unknown fields so typos surface early.
func yamlUnmarshalStrict(in []byte, out interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(in))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("YAML parsing error: %w", err)
	}
	return nil
}
