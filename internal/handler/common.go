// Package handler contains the HTTP surface: thin echo handlers that
// bind requests, call into repositories and the sale engine, and shape
// JSON responses. Business rules live below this layer.
package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/sale"
)

// reqCtx derives a bounded context for storage calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pathID parses a numeric path parameter. Zero is never a valid ID.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// caller extracts the verified identity placed in context by JWTAuth.
func caller(c echo.Context) (sale.Identity, bool) {
	return middleware.CallerIdentity(c)
}

// respondErr maps an error to its HTTP status and JSON body. Internal
// faults are logged with their cause and surfaced as an opaque message;
// everything else carries the messages attached when the error was made.
func respondErr(c echo.Context, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Printf("%s %s: internal error: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "something went wrong, try again later",
		})
	}
	msgs := apperr.MessagesOf(err)
	body := echo.Map{"error": msgs[0]}
	if len(msgs) > 1 {
		body["details"] = msgs
	}
	return c.JSON(apperr.HTTPStatus(kind), body)
}

// saleResp is the JSON shape of a sale returned by every sale endpoint.
type saleResp struct {
	ID                uint64     `json:"id"`
	ProductID         uint64     `json:"product_id"`
	ProductName       string     `json:"product_name"`
	SellerID          uint64     `json:"seller_id"`
	SellerName        string     `json:"seller_name"`
	BuyerID           uint64     `json:"buyer_id"`
	BuyerName         string     `json:"buyer_name"`
	Quantity          uint32     `json:"quantity"`
	UnitPrice         string     `json:"unit_price"`
	TotalPrice        string     `json:"total_price"`
	PaymentMethod     string     `json:"payment_method"`
	Status            string     `json:"status"`
	RestockedQuantity uint32     `json:"restocked_quantity,omitempty"`
	TransactionDate   time.Time  `json:"transaction_date"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
}

func toSaleResp(d *sale.Detail) saleResp {
	s := d.Sale
	return saleResp{
		ID:                s.ID,
		ProductID:         s.ProductID,
		ProductName:       d.ProductName,
		SellerID:          s.SellerID,
		SellerName:        d.SellerName,
		BuyerID:           s.BuyerID,
		BuyerName:         d.BuyerName,
		Quantity:          s.Quantity,
		UnitPrice:         s.UnitPriceSnapshot.StringFixed(2),
		TotalPrice:        d.TotalPrice().StringFixed(2),
		PaymentMethod:     string(s.PaymentMethod),
		Status:            s.Status,
		RestockedQuantity: s.RestockedQuantity,
		TransactionDate:   s.TransactionDate,
		CancelledAt:       s.CancelledAt,
	}
}

// productResp is the JSON shape of a product listing.
type productResp struct {
	ID                uint64    `json:"id"`
	OwnerID           uint64    `json:"owner_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	UnitPrice         string    `json:"unit_price"`
	AvailableQuantity uint32    `json:"available_quantity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func toProductResp(p *model.Product) productResp {
	return productResp{
		ID:                p.ID,
		OwnerID:           p.OwnerID,
		Name:              p.Name,
		Description:       p.Description,
		UnitPrice:         p.UnitPrice.StringFixed(2),
		AvailableQuantity: p.AvailableQuantity,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
