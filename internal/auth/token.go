// ABOUTME: Bearer-token identity extraction for conversation record attribution
// ABOUTME: Reads JWT claims without verifying - token issuance belongs to the backend

package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when the token cannot be parsed as a JWT.
var ErrInvalidToken = errors.New("invalid token")

// UserIDFromToken extracts the acting user's id from a backend-issued bearer
// token. The signature is deliberately not verified here: the backend is the
// sole verifier, this side only needs the identity for record attribution.
//
// Returns (nil, nil) for an empty token - anonymous sessions submit a null
// user id, not an error.
func UserIDFromToken(tokenString string) (*int64, error) {
	if tokenString == "" {
		return nil, nil
	}

	parser := jwt.NewParser()
	token, _, err := parser.ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	// The backend puts the numeric user id in "sub"; older tokens used "pid".
	for _, name := range []string{"sub", "pid"} {
		raw, ok := claims[name]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case string:
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				continue
			}
			return &id, nil
		case float64:
			id := int64(v)
			return &id, nil
		}
	}

	return nil, nil
}
