package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/redact"
	"github.com/phrazzld/finance-api/internal/service"
)

// UnauthenticatedMessage is the body of every 401 from this middleware.
const UnauthenticatedMessage = "Please authenticate"

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthMiddleware guards routes that require a session.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates an AuthMiddleware.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate requires an "Authorization: Bearer <token>" header whose token
// authenticates. On success the user and the token are stored in the request
// context for the handlers.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
			return
		}

		user, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, UnauthenticatedMessage)
				return
			}
			logger.FromContext(r.Context()).Error("authentication failed",
				slog.String("error", redact.Error(err)))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "An unexpected error occurred")
			return
		}

		ctx := shared.WithToken(shared.WithUser(r.Context(), user), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}
