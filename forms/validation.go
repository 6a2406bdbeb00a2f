package forms

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// emailPattern matches something@something.something
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the console's custom rules
// registered: notblank, loose_email and field names taken from `form` tags.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// formatValidationErrors turns validator errors into one message per field
func formatValidationErrors(err error, fields []Field) map[string]string {
	byName := make(map[string]Field, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	messages := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return messages
	}
	for _, fieldError := range validationErrors {
		name := fieldError.Field()
		if _, exists := messages[name]; exists {
			continue
		}
		field := byName[name]
		switch fieldError.Tag() {
		case "required", "notblank":
			messages[name] = field.Label + " is required"
		case "loose_email":
			messages[name] = "Please enter a valid email address"
		case "min":
			messages[name] = field.Label + " must be at least " + fieldError.Param() + " characters long"
		default:
			if field.Message != "" {
				messages[name] = field.Message
			} else {
				messages[name] = field.Label + " is invalid"
			}
		}
	}
	return messages
}
