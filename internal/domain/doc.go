// Package domain contains the core business entities of the finance API:
// users with their session tokens, and the income/outcome records they own.
// It has no knowledge of storage or HTTP.
package domain
