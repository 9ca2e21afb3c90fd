// Package service holds the application services of the finance API: the
// credential service (registration, login, session tokens, authentication)
// and the ownership-scoped record service.
//
// Services translate store errors into the sentinel errors below; the API
// layer maps those to HTTP responses and never sees store errors directly.
package service
