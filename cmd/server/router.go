package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/finance-api/internal/api"
	apiMiddleware "github.com/phrazzld/finance-api/internal/api/middleware"
)

// setupRouter builds the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.SecurityHeaders(apiMiddleware.DefaultSecurityHeadersConfig()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.Server.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	authHandler := api.NewAuthHandler(app.credentialService, app.logger)
	recordHandler := api.NewRecordHandler(app.recordService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.credentialService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.Register)
		r.Post("/users/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Post("/users/logout", authHandler.Logout)
			r.Get("/users/me", authHandler.Me)
			r.Post("/financials", recordHandler.Create)
			r.Get("/financials", recordHandler.List)
		})

		// the id is checked before the session
		r.Group(func(r chi.Router) {
			r.Use(api.RequireUUIDParam(api.RecordIDParam))
			r.Use(authMiddleware.Authenticate)
			r.Patch("/financials/{id}", recordHandler.Update)
			r.Delete("/financials/{id}", recordHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
