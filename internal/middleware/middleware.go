package middleware

import (
	"net/http"
	"strings"

	"second-chance/internal/api"
	"second-chance/internal/service"

	"github.com/labstack/echo/v4"
)

// ContextUserKey holds the verified *service.Claims.
const ContextUserKey = "user"

type TokenVerifier interface {
	Verify(token string) (*service.Claims, error)
}

func extractClaims(c echo.Context, tokens TokenVerifier) (*service.Claims, string) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return nil, "missing token"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, "invalid authorization header format"
	}
	claims, err := tokens.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, "invalid token"
	}
	return claims, ""
}

// RequireAuth rejects requests without a valid Bearer token.
func RequireAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, reason := extractClaims(c, tokens)
			if claims == nil {
				return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: reason})
			}
			c.Set(ContextUserKey, claims)
			return next(c)
		}
	}
}
