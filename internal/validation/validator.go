// Package validation turns loosely typed request input into typed,
// sanitized values, collecting every rule violation instead of stopping
// at the first.
package validation

import (
	"errors"
	"fmt"
	"sync"

	"writescape/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// messages maps "Struct.Field.tag" to the sentence shown to users.
var messages = map[string]string{
	"PostInput.Title.required": "You must provide a title.",
	"PostInput.Title.max":      "Title cannot exceed 255 characters.",
	"PostInput.Body.required":  "You must provide post content.",

	"RegisterInput.Username.required": "You must provide a username.",
	"RegisterInput.Username.min":      "Username must be at least 3 characters.",
	"RegisterInput.Username.max":      "Username cannot exceed 30 characters.",
	"RegisterInput.Username.alphanum": "Username can only contain letters and numbers.",
	"RegisterInput.Email.required":    "You must provide a valid email address.",
	"RegisterInput.Email.email":       "You must provide a valid email address.",
	"RegisterInput.Password.required": "You must provide a password.",
	"RegisterInput.Password.min":      "Password must be at least 12 characters.",
	"RegisterInput.Password.max":      "Password cannot exceed 50 characters.",
}

// Struct validates s and returns one VALIDATION_ERROR per failing field,
// in field declaration order.
func Struct(s any) models.Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return models.Errors{models.NewValidationError(err.Error())}
	}

	out := make(models.Errors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, models.NewValidationError(translate(fe)))
	}
	return out
}

func translate(fe validator.FieldError) string {
	key := fmt.Sprintf("%s.%s", fe.StructNamespace(), fe.Tag())
	if msg, ok := messages[key]; ok {
		return msg
	}
	return fmt.Sprintf("%s failed %s validation.", fe.Field(), fe.Tag())
}

// String coerces a decoded JSON value to a string; anything else becomes "".
func String(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
