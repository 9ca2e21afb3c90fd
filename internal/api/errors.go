package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/service"
)

// Client-facing messages.
const (
	msgUnauthenticated    = "Please authenticate"
	msgInvalidCredentials = "Invalid email or password"
	msgDuplicateIdentity  = "Unable to register user"
	msgRecordNotFound     = "Financial record not found"
	msgInvalidInput       = "Invalid input"
	msgInternal           = "An unexpected error occurred"
)

// MapErrorToStatusCode maps service and validation errors to HTTP status codes.
// Anything unrecognized is a 500.
func MapErrorToStatusCode(err error) int {
	var validationErrs validator.ValidationErrors

	switch {
	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrValidation),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a message for err that is safe to send to a client.
func GetSafeErrorMessage(err error) string {
	var validationErr *domain.ValidationError
	var validationErrs validator.ValidationErrors

	switch {
	case err == nil:
		return msgInternal
	case errors.Is(err, service.ErrUnauthenticated):
		return msgUnauthenticated
	case errors.Is(err, service.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, service.ErrDuplicateIdentity):
		return msgDuplicateIdentity
	case errors.Is(err, service.ErrNotFound):
		return msgRecordNotFound
	case errors.As(err, &validationErrs):
		return SanitizeValidationError(validationErrs)
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.Is(err, service.ErrInvalidInput):
		return msgInvalidInput
	default:
		return msgInternal
	}
}

// SanitizeValidationError describes the first failed field without echoing
// the submitted value.
func SanitizeValidationError(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return msgInvalidInput
	}
	fe := errs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), validationTagMessage(fe.Tag()))
}

func validationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "strong_password":
		return "must be at least 8 characters long and contain lowercase, uppercase, number and symbol characters"
	case "record_type":
		return "type option must be income/outcome"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err. 5xx errors are logged at
// error level with the redacted cause, everything else at debug.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status >= http.StatusInternalServerError {
		message = msgInternal
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
