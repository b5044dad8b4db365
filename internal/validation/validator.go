// Package validation provides request validation using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nesvesk-vienas/nesvesk-server/internal/domain"
	domainerrors "github.com/nesvesk-vienas/nesvesk-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// enumTags maps custom tags to the domain vocabulary they accept.
var enumTags = map[string]func(string) bool{
	"holidaydate": func(s string) bool { return domain.HolidayDate(s).Valid() },
	"city":        func(s string) bool { return domain.City(s).Valid() },
	"language":    func(s string) bool { return domain.Language(s).Valid() },
	"role":        func(s string) bool { return domain.Role(s).Valid() },
	"capability":  func(s string) bool { return domain.Capability(s).Valid() },
	"concept":     func(s string) bool { return domain.Concept(s).Valid() },
	"locale":      func(s string) bool { return domain.Locale(s).Valid() },
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty, -
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	for tag, valid := range enumTags {
		// Registration only fails for empty tags or nil funcs.
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return valid(fl.Field().String())
		})
	}

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails(
		fmt.Sprintf("validation failed: %s", joinFields(fieldErrors)), fieldErrors)
}

func joinFields(fields map[string]string) string {
	parts := make([]string, 0, len(fields))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		parts = append(parts, k+" "+fields[k])
	}
	return strings.Join(parts, ", ")
}

//nolint:gocyclo // Switch statement covering validation tags is intentionally exhaustive.
func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if e.Kind() == reflect.Slice {
			return fmt.Sprintf("must not exceed %s entries", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "gtefield":
		return "must be greater than or equal to " + e.Param()
	case "nefield":
		return "must differ from " + e.Param()
	case "holidaydate":
		return "must be one of: 24 Dec, 25 Dec, 26 Dec, 31 Dec"
	case "city", "language", "role", "capability", "concept", "locale":
		return "is not a known " + e.Tag()
	default:
		return "is invalid"
	}
}
