// Package auth signs and verifies session tokens and compares password hashes.
//
// Tokens are HS256 JWTs without an expiry claim. A token stays usable until it
// is removed from its user's token set, so signature verification here is only
// half of authentication; the other half is the membership check done by the
// credential service.
package auth
