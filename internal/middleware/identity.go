package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/sale"
)

// CallerIdentity rebuilds the engine-facing identity from the claims
// JWTAuth stored in context. The boolean is false when no authenticated
// caller is present, which on protected routes means a wiring mistake.
func CallerIdentity(c echo.Context) (sale.Identity, bool) {
	uid, ok := c.Get(CtxUserID).(uint64)
	if !ok || uid == 0 {
		return sale.Identity{}, false
	}
	role, _ := c.Get(CtxRole).(string)
	return sale.Identity{UserID: uid, Role: role}, true
}

// currentUserID renders the caller for rate-limit key building. Guests
// share the "anon" bucket.
func currentUserID(c echo.Context) string {
	if uid, ok := c.Get(CtxUserID).(uint64); ok && uid != 0 {
		return strconv.FormatUint(uid, 10)
	}
	return "anon"
}
