// Package shared holds the request, response and context helpers used by
// both the handlers in package api and the middleware.
package shared
