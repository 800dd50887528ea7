package utils

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once

	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// GetValidator returns the shared validator with the custom rules registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Registration only fails for empty tags or nil functions.
		_ = validate.RegisterValidation("emailish", func(fl validator.FieldLevel) bool {
			return IsEmail(fl.Field().String())
		})
	})
	return validate
}

// IsEmail reports whether s looks like local@domain.tld.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidationError lists the failed fields of a request, keyed by JSON name.
type ValidationError struct {
	Fields map[string]string
	order  []string
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.order))
	for _, field := range e.order {
		messages = append(messages, e.Fields[field])
	}
	return strings.Join(messages, "; ")
}

// ValidateStruct validates s. Rule violations come back as *ValidationError.
func ValidateStruct(s interface{}) error {
	if err := GetValidator().Struct(s); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(validationErrors))}
	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", field, e.Param())
		case "emailish":
			message = fmt.Sprintf("%s must be a valid email address", field)
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", field, e.Param())
		default:
			message = fmt.Sprintf("%s failed %s validation", field, e.Tag())
		}
		if _, seen := out.Fields[field]; !seen {
			out.order = append(out.order, field)
		}
		out.Fields[field] = message
	}
	return out
}
