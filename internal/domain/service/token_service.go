package service

import (
	"errors"

	"github.com/google/uuid"
)

// Token verification failures. The middleware maps all three to 401, but they
// stay distinguishable for logging and tests.
var (
	// ErrTokenMalformed indicates the token structure could not be parsed.
	ErrTokenMalformed = errors.New("token is malformed")

	// ErrTokenSignature indicates the signature does not match the current secret.
	ErrTokenSignature = errors.New("token signature is invalid")

	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token is expired")
)

// TokenService defines the interface for issuing and verifying bearer tokens.
// This abstracts the details of token creation from the use cases.
type TokenService interface {
	// Issue creates a signed, time-limited token bound to the given user.
	Issue(userID uuid.UUID) (string, error)

	// Verify checks a token string and returns the user ID it was issued for.
	// Failures are ErrTokenMalformed, ErrTokenSignature or ErrTokenExpired.
	Verify(tokenString string) (uuid.UUID, error)
}
