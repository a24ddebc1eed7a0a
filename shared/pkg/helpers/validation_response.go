package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationErrorResponse represents the validation error response format
type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

var messages = map[string]string{
	"required": "The %s field is required",
	"email":    "The %s field must be a valid email address",
	"min":      "The %s field must be at least %s characters",
	"max":      "The %s field must not exceed %s characters",
	"len":      "The %s field must be exactly %s characters",
	"eqfield":  "The %s field must match %s",
	"gt":       "The %s field must be greater than %s",
	"period":   "The %s field must be a date in YYYY-MM-DD format",
	"notblank": "The %s field must not be blank",
}

// FormatValidationError formats a validator.FieldError into an English message
func FormatValidationError(fe validator.FieldError) string {
	fieldName := strings.ReplaceAll(strings.ToLower(fe.Field()), "_", " ")

	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("The %s field is invalid", fieldName)
	}
	if strings.Count(tmpl, "%s") == 2 {
		return fmt.Sprintf(tmpl, fieldName, strings.ReplaceAll(strings.ToLower(fe.Param()), "_", " "))
	}
	return fmt.Sprintf(tmpl, fieldName)
}

// FieldErrors flattens a validation error into field -> message, keeping the
// first message as the summary. ok is false when err is not a validation error.
func FieldErrors(err error) (summary string, fields map[string]string, ok bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "", nil, false
	}
	fields = make(map[string]string, len(validationErrors))
	for i, fe := range validationErrors {
		msg := FormatValidationError(fe)
		fields[fe.Field()] = msg
		if i == 0 {
			summary = msg
		}
	}
	return summary, fields, true
}

// WriteValidationErrorResponse writes a 422 response from a validator error.
func WriteValidationErrorResponse(w http.ResponseWriter, err error) {
	summary, fields, ok := FieldErrors(err)
	if !ok {
		WriteValidationErrorResponseFromString(w, err.Error())
		return
	}
	writeValidation(w, ValidationErrorResponse{Message: summary, Errors: fields})
}

// WriteValidationErrorResponseFromString writes a validation error response from a single error message
func WriteValidationErrorResponseFromString(w http.ResponseWriter, message string) {
	if message == "" {
		message = "The given data was invalid"
	}
	writeValidation(w, ValidationErrorResponse{Message: message, Errors: map[string]string{}})
}

func writeValidation(w http.ResponseWriter, response ValidationErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(response)
}
