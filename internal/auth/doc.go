// Package auth extracts user identity from backend-issued bearer tokens.
//
// The backend authenticates users and issues JWTs; this side never verifies
// signatures or issues tokens of its own. The only concern here is reading
// the numeric user id out of the claims so submitted conversation records can
// be attributed to the acting user. Anonymous sessions (no token, or a token
// without a numeric id claim) attribute records to a null user id.
package auth
