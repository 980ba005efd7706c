// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("postal_code", validatePostalCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// ValidateField checks a single value against a validation tag.
func ValidateField(value interface{}, tag string) error {
	return validate.Var(value, tag)
}

func validatePostalCode(fl validator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	if len(code) < 3 || len(code) > 12 {
		return false
	}
	for _, ch := range code {
		if !isPostalChar(ch) {
			return false
		}
	}
	return true
}

func isPostalChar(ch rune) bool {
	switch {
	case ch >= '0' && ch <= '9':
		return true
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		return true
	case ch == ' ' || ch == '-':
		return true
	}
	return false
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "postal_code":
		return "Postal code must be 3-12 characters of letters, digits, spaces or dashes"
	default:
		return e.Field() + " is invalid"
	}
}
