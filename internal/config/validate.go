// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError reports one invalid configuration field by its YAML path.
type FieldError struct {
	Field string
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Msg)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the names operators actually write.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	var errs []error

	// ------------------------------------------------------------
	// DECLARATIVE (struct tags)
	// ------------------------------------------------------------

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, &FieldError{
				Field: fieldPath(fe.Namespace()),
				Msg:   describe(fe),
			})
		}
	}

	// ------------------------------------------------------------
	// CROSS-FIELD / CONTENT RULES
	// ------------------------------------------------------------

	for i, m := range cfg.ProfileMarkers {
		if m != "" && strings.TrimSpace(m) == "" {
			errs = append(errs, &FieldError{
				Field: fmt.Sprintf("profile_markers[%d]", i),
				Msg:   "must not be blank",
			})
		}
	}

	for i, t := range cfg.ProbeTargets {
		if strings.ContainsAny(t, " \t/") {
			errs = append(errs, &FieldError{
				Field: fmt.Sprintf("probe_targets[%d]", i),
				Msg:   fmt.Sprintf("%q is not an address or hostname", t),
			})
		}
	}

	sm := cfg.StatusMemory
	if sm.DeviceName != "" {
		for i := 0; i < len(sm.DeviceName); i++ {
			if sm.DeviceName[i] > 0x7F {
				errs = append(errs, &FieldError{
					Field: "status_memory.device_name",
					Msg:   "must contain ASCII characters only",
				})
				break
			}
		}
	}
	if sm.Enabled() && (sm.UnitID < 1 || sm.UnitID > 247) {
		errs = append(errs, &FieldError{
			Field: "status_memory.unit_id",
			Msg:   fmt.Sprintf("%d out of range 1..247", sm.UnitID),
		})
	}

	if sm.Enabled() && int(sm.Slot) > maxStatusSlot {
		errs = append(errs, &FieldError{
			Field: "status_memory.slot",
			Msg:   fmt.Sprintf("%d out of range 0..%d", sm.Slot, maxStatusSlot),
		})
	}

	return errors.Join(errs...)
}

// maxStatusSlot is the last slot whose 20-register block fits the address space.
const maxStatusSlot = 65536/20 - 1

// fieldPath turns "Config.probe.method" into "probe.method".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "dependent_service_name" {
			return "is required (missing required collaborator binding)"
		}
		return "is required"
	case "gt":
		return fmt.Sprintf("must be > %s (got %v)", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be >= %s (got %v)", fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s] (got %q)", fe.Param(), fe.Value())
	case "hostname_port":
		return fmt.Sprintf("must be host:port (got %q)", fe.Value())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
