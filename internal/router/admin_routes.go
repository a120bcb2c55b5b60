package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// registerAdmin wires product management and reporting, ADMIN only.
func registerAdmin(e *echo.Echo, d Deps) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(d.JWTPublicKey),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.POST("/products", d.Products.Create)
	g.PUT("/products/:id", d.Products.Update)
	g.DELETE("/products/:id", d.Products.Delete)

	g.GET("/reports/sales", d.Reports.SalesByPeriod)
	g.GET("/reports/products/:id/revenue", d.Reports.RevenueByProduct)
}
