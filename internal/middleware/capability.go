package middleware

import (
	"net/http"

	"remember_galleries/internal/lib/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// ContextKey — ключ, под которым echo-jwt кладет разобранный токен
const ContextKey = "user"

// ClaimsFromContext достает права редактора из контекста запроса
func ClaimsFromContext(c echo.Context) (*jwt.Claims, bool) {
	token, ok := c.Get(ContextKey).(*gojwt.Token)
	if !ok || token == nil {
		return nil, false
	}

	claims, ok := token.Claims.(*jwt.Claims)
	return claims, ok
}

// RequireCapability пропускает запрос только если в токене есть нужное право
func RequireCapability(capability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing credentials")
			}

			if !claims.Can(capability) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}
