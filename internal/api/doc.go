// Package api implements the HTTP handlers of the finance API.
//
// Handlers decode and validate requests, call the services and translate
// service errors into status codes with MapErrorToStatusCode. Error bodies
// never carry internal details; those go to the (redacted) logs.
package api
