package middleware

import (
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/token"
)

// Context keys set by JWTAuth for downstream middleware and handlers.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
	CtxName   = "name"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token against the RS256 public key and injects the verified claims
// into the request context. Protected routes read the caller via
// c.Get(CtxUserID) and c.Get(CtxRole); the raw token never travels
// further than here.
func JWTAuth(pub *rsa.PublicKey) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := token.VerifyAccessToken(pub, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxName, claims.Name)
			return next(c)
		}
	}
}
