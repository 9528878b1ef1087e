package middleware

import (
	"strings"

	"userdir/internal/delivery/http/response"
	"userdir/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// ContextUserIDKey is the echo context key carrying the authenticated account ID.
// The value is request-scoped and discarded when the request completes.
const ContextUserIDKey = "userID"

// AuthMiddleware provides middleware for bearer-token authentication.
// It performs no authorization checks: any valid token admits the request,
// including mutations of accounts other than the caller's own.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate is the core middleware function that validates the bearer token.
// Requests without a verifiable token are rejected before reaching the handler.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Authorization header is missing")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return response.Unauthorized(c, "UNAUTHENTICATED", "Invalid token format, must be Bearer token")
		}

		userID, err := m.tokenSvc.Verify(tokenString)
		if err != nil {
			// Malformed, tampered and expired tokens all read the same to the
			// caller; the distinction only matters to verification internals.
			return response.Unauthorized(c, "UNAUTHENTICATED", "Invalid or expired token")
		}

		c.Set(ContextUserIDKey, userID)

		return next(c)
	}
}
