package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"userdir/config"
	"userdir/internal/domain/service"
)

const defaultAccessTTL = time.Hour

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret []byte        // Process-wide signing secret, immutable after construction.
	ttl    time.Duration // Time-to-live for issued tokens.
}

// NewJWTService is the constructor for jwtService.
// The secret is loaded once from config at startup; rotating it invalidates
// every outstanding token.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	ttl := cfg.SecretKey.AccessTTL
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}

	return &jwtService{
		secret: []byte(cfg.SecretKey.Access),
		ttl:    ttl,
	}, nil
}

// Issue creates a signed token carrying the user ID and an absolute expiry.
// The signature covers the full claim set, so neither can be tampered with.
func (s *jwtService) Issue(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify parses and validates a token string, returning the user ID it binds.
func (s *jwtService) Verify(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Reject any algorithm other than the one we sign with. Without this a
		// forged token could downgrade to "none" or an asymmetric scheme.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, mapTokenError(err)
	}
	if !token.Valid {
		return uuid.Nil, service.ErrTokenSignature
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, service.ErrTokenMalformed
	}

	return userID, nil
}

// mapTokenError converts jwt/v5 parse failures into the domain's token errors.
// Expiry is checked before the signature verdict because jwt.Parse reports
// both through one joined error and expiry is the more specific condition.
func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return service.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrSignatureInvalid):
		return service.ErrTokenSignature
	default:
		return service.ErrTokenMalformed
	}
}
