package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/placenote/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// UserContextKey is the echo context key holding *models.JwtCustomClaims
const UserContextKey = "user"

var errMissingToken = errors.New("missing authorization header")

// JWTAuthMiddleware rejects requests without a valid JWT and stores the user claims.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseClaims(c.Request().Header.Get("Authorization"), secret)
			if err != nil {
				if errors.Is(err, errMissingToken) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(UserContextKey, claims)
			return next(c)
		}
	}
}

// OptionalJWTAuth stores the user claims when a valid JWT is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := parseClaims(c.Request().Header.Get("Authorization"), secret)
			if errors.Is(err, errMissingToken) {
				return next(c)
			}
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(UserContextKey, claims)
			return next(c)
		}
	}
}

func parseClaims(authHeader, secret string) (*models.JwtCustomClaims, error) {
	if authHeader == "" {
		return nil, errMissingToken
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("Invalid Authorization header format")
	}

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("Unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("Invalid token")
	}
	return claims, nil
}

// UserID returns the authenticated user's ID, or 0 for anonymous requests
func UserID(c echo.Context) uint {
	claims, ok := c.Get(UserContextKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}
