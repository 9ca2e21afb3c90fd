package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/finance-api/internal/api/shared"
	"github.com/phrazzld/finance-api/internal/platform/logger"
	"github.com/phrazzld/finance-api/internal/service"
)

// LogoutMessage is the body message of a successful logout.
const LogoutMessage = "Logout success"

// AuthHandler handles registration and session endpoints.
type AuthHandler struct {
	credentials service.CredentialService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(credentials service.CredentialService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		credentials: credentials,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/users.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.credentials.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	logger.FromContextOrDefault(r.Context(), h.logger).Info("user registered",
		slog.String("user_id", user.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Login handles POST /api/users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, token, err := h.credentials.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		User:  userToResponse(user),
		Token: token,
	})
}

// Logout handles POST /api/users/logout. Only the token used for this
// request is revoked; other sessions stay valid.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	token, ok := shared.TokenFromContext(r.Context())
	if !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated)
		return
	}

	if err := h.credentials.RevokeToken(r.Context(), user, token); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, shared.MessageResponse{Message: LogoutMessage})
}

// Me handles GET /api/users/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
