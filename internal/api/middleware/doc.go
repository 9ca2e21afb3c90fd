// Package middleware provides the HTTP middleware of the finance API: request
// tracing, bearer-token authentication and security response headers.
package middleware
