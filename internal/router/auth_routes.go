package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// registerAuth wires the credential endpoints. Register, login and
// refresh are reachable without a session; logout and me require a
// valid access token of either role.
func registerAuth(e *echo.Echo, d Deps) {
	g := e.Group("/v1/auth")
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.POST("/refresh", d.Auth.Refresh)

	auth := e.Group(
		"/v1",
		middleware.JWTAuth(d.JWTPublicKey),
		middleware.RequireRole(model.RoleAdmin, model.RoleCustomer),
	)
	auth.POST("/auth/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me)
}
