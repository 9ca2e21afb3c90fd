package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/domain"
	"github.com/phrazzld/finance-api/internal/mocks"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"", "", false},
		{"abc.def.ghi", "", false},
		{"Basic dXNlcjpwYXNz", "", false},
		{"bearer abc", "", false},
		{"Bearer ", "", false},
		{"Bearer a b", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Email: "a@example.com"}

	authn := &mocks.MockCredentialService{
		AuthenticateFn: func(ctx context.Context, token string) (*domain.User, error) {
			switch token {
			case "good":
				return user, nil
			case "broken-store":
				return nil, errors.New("connection reset")
			default:
				return nil, service.ErrUnauthenticated
			}
		},
	}
	mw := NewAuthMiddleware(authn)

	var gotUser *domain.User
	var gotToken string
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = shared.UserFromContext(r.Context())
		gotToken, _ = shared.TokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Token good", http.StatusUnauthorized},
		{"rejected token", "Bearer revoked", http.StatusUnauthorized},
		{"store failure", "Bearer broken-store", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotToken = nil, ""
			r := httptest.NewRequest(http.MethodGet, "/api/financials", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			protected.ServeHTTP(w, r)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Same(t, user, gotUser)
				assert.Equal(t, "good", gotToken)
				return
			}
			assert.Nil(t, gotUser, "handler must not run")
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), UnauthenticatedMessage)
			}
		})
	}
}

func TestAuthenticateLogsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	authn := &mocks.MockCredentialService{
		Err: errors.New("lookup failed for postgres://admin:hunter2@db:5432/finance"),
	}
	handler := NewAuthMiddleware(authn).Authenticate(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(logger.WithLogger(r.Context(), log))
	r.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, buf.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "postgres")
}
