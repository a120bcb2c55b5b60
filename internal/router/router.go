// Package router registers the HTTP routes. Handlers hold the logic;
// this package only decides which middleware guards which path.
package router

import (
	"crypto/rsa"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
)

// Deps carries everything route registration needs: the handlers plus
// the public key for token verification and the shared middleware.
type Deps struct {
	Auth     *handler.AuthHandler
	Products *handler.ProductHandler
	Sales    *handler.SaleHandler
	Reports  *handler.ReportHandler

	JWTPublicKey *rsa.PublicKey
	Cache        echo.MiddlewareFunc
	RateLimit    echo.MiddlewareFunc
}

// Register wires all route groups onto e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	if d.RateLimit != nil {
		e.Use(d.RateLimit)
	}

	registerAuth(e, d)
	registerPublic(e, d)
	registerCustomer(e, d)
	registerAdmin(e, d)
}
