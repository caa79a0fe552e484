package validators

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// CustomValidator plugs go-playground/validator into echo and reports
// failures as *ValidationError keyed by form field name.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the validator used by echo and the form handlers
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("facility", func(fl validator.FieldLevel) bool {
		return models.IsFacilityCode(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	verr := NewValidationError()
	for _, fe := range fieldErrs {
		field := fe.Field()
		if idx := strings.IndexByte(field, '['); idx >= 0 {
			field = field[:idx]
		}
		verr.Add(field, message(fe))
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value has at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "facility":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "oneof":
		return fmt.Sprintf("Value must be one of: %s.", fe.Param())
	}
	return "Invalid value."
}

// ValidationError carries field level messages for a rejected form
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records msg for field, keeping the first message reported for it
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Merge copies the messages of other into e
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	for field, msg := range other.Fields {
		e.Add(field, msg)
	}
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Fields[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
