package router

import "github.com/labstack/echo/v4"

// registerPublic wires guest-readable catalog browsing. These are the
// only routes behind the response cache; everything else is either a
// mutation or caller-specific.
func registerPublic(e *echo.Echo, d Deps) {
	g := e.Group("/v1")
	if d.Cache != nil {
		g.Use(d.Cache)
	}
	g.GET("/products", d.Products.List)
	g.GET("/products/:id", d.Products.Get)
}
