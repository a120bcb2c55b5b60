package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale status values. Status is the canonical cancellation marker; the
// quantity on a sale never changes after creation, cancelled or not.
const (
	SaleStatusActive    = "ACTIVE"
	SaleStatusCancelled = "CANCELLED"
)

// Sale is the immutable record of a purchase. UnitPriceSnapshot is
// copied from the product at purchase time so later price edits never
// change historical totals. The total is always derived, never stored.
//
// Fields:
//  ID                – primary key identifier.
//  ProductID         – product that was bought.
//  SellerID          – product owner at creation time.
//  BuyerID           – authenticated customer who bought.
//  Quantity          – units bought, > 0, immutable.
//  UnitPriceSnapshot – product price captured at purchase time.
//  PaymentMethod     – payment label (CASH, PIX, ...).
//  Status            – ACTIVE or CANCELLED.
//  RestockedQuantity – units returned to stock on cancellation.
//  TransactionDate   – when the purchase happened.
//  CancelledAt       – when the sale was cancelled (nil while active).
//  ModifiedOn        – last field edit (payment method changes).
type Sale struct {
	ID                uint64          // sales.id
	ProductID         uint64          // sales.product_id
	SellerID          uint64          // sales.seller_id
	BuyerID           uint64          // sales.buyer_id
	Quantity          uint32          // sales.quantity
	UnitPriceSnapshot decimal.Decimal // sales.unit_price_snapshot
	PaymentMethod     PaymentMethod   // sales.payment_method
	Status            string          // sales.status
	RestockedQuantity uint32          // sales.restocked_quantity
	TransactionDate   time.Time       // sales.transaction_date
	CancelledAt       *time.Time      // sales.cancelled_at (nullable)
	ModifiedOn        *time.Time      // sales.modified_on (nullable)
}

// TotalPrice recomputes quantity × unit price snapshot. The stored row
// never carries a total, so this is the only source of truth.
func (s *Sale) TotalPrice() decimal.Decimal {
	return s.UnitPriceSnapshot.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

// Cancelled reports whether the sale has been cancelled. Callers must
// use this instead of inspecting quantity or timestamps.
func (s *Sale) Cancelled() bool { return s.Status == SaleStatusCancelled }
