package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/service"
)

// RecordIDParam is the path parameter naming a record.
const RecordIDParam = "id"

// getPathUUID parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// RequireUUIDParam rejects the request with 400 unless the named path
// parameter is a UUID. Mounted ahead of authentication so a malformed id is
// reported as such even without a session.
func RequireUUIDParam(paramName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := getPathUUID(r, paramName); err != nil {
				HandleAPIError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentUser returns the authenticated user placed in the context by the
// auth middleware. A missing user is reported as ErrUnauthenticated.
func currentUser(r *http.Request) (*domain.User, error) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok || user == nil || user.ID == uuid.Nil {
		return nil, service.ErrUnauthenticated
	}
	return user, nil
}

// decodeAndValidate decodes the body into req and validates it. Failures
// are written as 400 responses and reported with false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := shared.DecodeJSON(w, r, req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return false
	}
	return true
}
