package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/sale"
	queue_publisher "github.com/iliyamo/marketplace-api/internal/service"
)

// SaleHandler is the thin HTTP layer over the sale engine. Every
// precondition and state change lives in the engine; this type only
// binds input, passes the caller identity along and shapes output.
type SaleHandler struct {
	Engine *sale.Engine
	Sales  *repository.SaleRepo
}

func NewSaleHandler(engine *sale.Engine, sales *repository.SaleRepo) *SaleHandler {
	return &SaleHandler{Engine: engine, Sales: sales}
}

type createPurchaseReq struct {
	ProductID     uint64 `json:"product_id"`
	Quantity      uint32 `json:"quantity"`
	PaymentMethod string `json:"payment_method"`
}

type updatePaymentReq struct {
	PaymentMethod string `json:"payment_method"`
}

// Create performs a purchase on behalf of the calling customer.
func (h *SaleHandler) Create(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	var req createPurchaseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Engine.CreatePurchase(ctx, id, sale.CreatePurchaseInput{
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return respondErr(c, err)
	}

	go publishCompleted(d)

	return c.JSON(http.StatusCreated, toSaleResp(d))
}

// Cancel reverses a purchase owned by the calling customer.
func (h *SaleHandler) Cancel(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	saleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Engine.CancelPurchase(ctx, id, saleID)
	if err != nil {
		return respondErr(c, err)
	}

	go publishCancelled(d)

	return c.JSON(http.StatusOK, toSaleResp(d))
}

// UpdatePayment changes the payment method on an active purchase.
func (h *SaleHandler) UpdatePayment(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}
	saleID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}
	var req updatePaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Engine.UpdatePaymentMethod(ctx, id, saleID, req.PaymentMethod)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toSaleResp(d))
}

// MyPurchases lists the caller's purchase history, newest first.
func (h *SaleHandler) MyPurchases(c echo.Context) error {
	id, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing identity"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	details, err := h.Sales.ListByBuyer(ctx, id.UserID)
	if err != nil {
		return respondErr(c, err)
	}
	out := make([]saleResp, 0, len(details))
	for i := range details {
		out = append(out, toSaleResp(&details[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"purchases": out})
}

// Event publishing is best-effort and off the request path; a broker
// outage never fails a committed purchase.

func publishCompleted(d *sale.Detail) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s := d.Sale
	_ = queue_publisher.PublishSaleCompleted(ctx, queue.SaleCompletedEvent{
		SaleID:        s.ID,
		ProductID:     s.ProductID,
		ProductName:   d.ProductName,
		SellerID:      s.SellerID,
		BuyerID:       s.BuyerID,
		Quantity:      s.Quantity,
		UnitPrice:     s.UnitPriceSnapshot.StringFixed(2),
		TotalPrice:    d.TotalPrice().StringFixed(2),
		PaymentMethod: string(s.PaymentMethod),
		SoldAt:        s.TransactionDate.UTC().Format(time.RFC3339),
	})
}

func publishCancelled(d *sale.Detail) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s := d.Sale
	cancelledAt := ""
	if s.CancelledAt != nil {
		cancelledAt = s.CancelledAt.UTC().Format(time.RFC3339)
	}
	_ = queue_publisher.PublishSaleCancelled(ctx, queue.SaleCancelledEvent{
		SaleID:            s.ID,
		ProductID:         s.ProductID,
		ProductName:       d.ProductName,
		BuyerID:           s.BuyerID,
		RestockedQuantity: s.RestockedQuantity,
		RefundedTotal:     d.TotalPrice().StringFixed(2),
		CancelledAt:       cancelledAt,
	})
}
