package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	validate.RegisterValidation("list_type", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "smart", "custom":
			return true
		}
		return false
	})

	// notblank rejects strings made only of whitespace
	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"_": err.Error()}
	}

	fieldErrors := make(map[string]string)
	for _, err := range validationErrors {
		field := fieldPath(err.Namespace())
		switch err.Tag() {
		case "required", "notblank":
			fieldErrors[field] = "This field is required"
		case "min":
			fieldErrors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			fieldErrors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			fieldErrors[field] = "Value must be at least " + err.Param()
		case "lte":
			fieldErrors[field] = "Value must be at most " + err.Param()
		case "gt":
			fieldErrors[field] = "Value must be greater than " + err.Param()
		case "oneof":
			fieldErrors[field] = "Must be one of: " + strings.ReplaceAll(err.Param(), " ", ", ")
		case "list_type":
			fieldErrors[field] = "Invalid list type. Must be: smart or custom"
		case "unique":
			fieldErrors[field] = "Values must be unique"
		default:
			fieldErrors[field] = "Invalid value"
		}
	}

	return fieldErrors
}

// fieldPath drops the root struct name from a validator namespace,
// "CreateListRequest.filters.spending.type" becomes "filters.spending.type".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
