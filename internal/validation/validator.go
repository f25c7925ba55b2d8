// Package validation checks entities against their struct tags before they
// are written. Failures come back as VALIDATION errors keyed by the JSON
// path of the offending field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"social-campaign-backend/internal/domain/shared"
	apperrors "social-campaign-backend/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Validator wraps a configured validator.Validate.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator using JSON field names and the custom rules below.
func New() *Validator {
	v := &Validator{validate: validator.New()}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// keysafe: the value may be embedded in a storage key.
	_ = v.validate.RegisterValidation("keysafe", func(fl validator.FieldLevel) bool {
		return !strings.Contains(fl.Field().String(), shared.KeyDelimiter)
	})
	return v
}

// Struct validates s.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return apperrors.NewInternal("validate", err)
	}
	fields := make(map[string]string, len(invalid))
	for _, fe := range invalid {
		fields[fieldPath(fe)] = message(fe)
	}
	return apperrors.NewValidation("invalid "+strings.ToLower(reflect.Indirect(reflect.ValueOf(s)).Type().Name()), fields)
}

// fieldPath drops the top-level type name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "at most " + fe.Param()
	case "min":
		return "at least " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "keysafe":
		return "must not contain '" + shared.KeyDelimiter + "'"
	case "gtfield":
		return "must be after " + fe.Param()
	case "unique":
		return "must not repeat"
	case "timezone":
		return "must be an IANA time zone"
	case "hexcolor":
		return "must be a hex color"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}
