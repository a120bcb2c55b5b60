package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// registerCustomer wires the purchase lifecycle. All routes require a
// valid access token with the CUSTOMER role; the engine re-checks the
// role so a future route wired onto the wrong group still cannot let an
// admin buy.
func registerCustomer(e *echo.Echo, d Deps) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(d.JWTPublicKey),
		middleware.RequireRole(model.RoleCustomer),
	)
	g.POST("/sales", d.Sales.Create)
	g.DELETE("/sales/:id", d.Sales.Cancel)
	g.PATCH("/sales/:id/payment-method", d.Sales.UpdatePayment)
	g.GET("/my-purchases", d.Sales.MyPurchases)
}
