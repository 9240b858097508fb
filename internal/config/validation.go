package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
)

// Prometheus metric name component.
var promNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("promname", func(fl validator.FieldLevel) bool {
		return promNameRegex.MatchString(fl.Field().String())
	})
}

// Validate checks the struct invariants of cfg and its schema version.
func Validate(cfg *Config) error {
	if cfg == nil {
		return rserrors.NewValidationError("configuration cannot be nil", nil)
	}
	if err := configValidate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return rserrors.NewValidationError(
				fmt.Sprintf("configuration has %d validation error(s):\n- %s", len(msgs), strings.Join(msgs, "\n- ")), err)
		}
		return rserrors.NewValidationError("configuration validation failed", err)
	}
	return CheckSchemaVersion(cfg.SchemaVersion)
}
