// Package sale implements the sale transaction engine: the conversion of
// a purchase request into a durable, inventory-consistent state change,
// and its inverse. Caller identity is always an explicit parameter, never
// ambient state, so the engine is testable without any web context.
package sale

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// Identity is the resolved caller, as asserted by a verified access
// token. The engine consults it as a precondition but never resolves it.
type Identity struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the caller holds the administrator role.
func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

// CreatePurchaseInput carries the caller-supplied purchase fields.
// PaymentMethod arrives raw and is validated here.
type CreatePurchaseInput struct {
	ProductID     uint64
	Quantity      uint32
	PaymentMethod string
}

// Detail is a sale joined with the display data callers expect back:
// product, seller and buyer names alongside the immutable record.
type Detail struct {
	Sale        model.Sale
	ProductName string
	SellerName  string
	BuyerName   string
}

// TotalPrice exposes the derived total for response shaping.
func (d *Detail) TotalPrice() decimal.Decimal { return d.Sale.TotalPrice() }

// Tx is the set of writes available inside one transactional unit. Both
// the (decrement, insert) pair of a purchase and the (restock, cancel)
// pair of a cancellation run against a single Tx so they commit together
// or not at all.
type Tx interface {
	// GetProduct returns a live (not soft-deleted) product or
	// sql.ErrNoRows.
	GetProduct(ctx context.Context, productID uint64) (*model.Product, error)
	// TryDecrementStock atomically subtracts qty from the product's
	// available quantity, failing without mutation when the result
	// would go negative. This is the single serialization point for
	// concurrent purchases of the same product.
	TryDecrementStock(ctx context.Context, productID uint64, qty uint32) (bool, error)
	// IncrementStock restocks qty units. The product must exist.
	IncrementStock(ctx context.Context, productID uint64, qty uint32) error
	// InsertSale persists a new sale and fills in its ID and
	// transaction date.
	InsertSale(ctx context.Context, s *model.Sale) error
	// GetSaleForBuyer returns the sale only when owned by buyerID,
	// locked for the remainder of the transaction; sql.ErrNoRows
	// otherwise. Ownership mismatches are indistinguishable from
	// absence on purpose.
	GetSaleForBuyer(ctx context.Context, saleID, buyerID uint64) (*model.Sale, error)
	// MarkCancelled flips the sale to CANCELLED, recording when and how
	// many units went back to stock. The original quantity stays put.
	MarkCancelled(ctx context.Context, saleID uint64, restocked uint32, at time.Time) error
	// SetPaymentMethod updates the payment label and modified-on stamp.
	SetPaymentMethod(ctx context.Context, saleID uint64, pm model.PaymentMethod, at time.Time) error
}

// Store is the engine's view of durable storage. InTx runs fn inside a
// transaction that commits iff fn returns nil.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	// GetDetail loads a sale with product/seller/buyer display data,
	// outside any transaction.
	GetDetail(ctx context.Context, saleID uint64) (*Detail, error)
}

// Engine orchestrates purchases, cancellations and payment-method edits
// against the inventory ledger and the sale records.
type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine returns an Engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// CreatePurchase converts a purchase request into a committed sale.
// Preconditions run in order and the first failure wins: positive
// quantity, customer role, live product, any stock at all, enough stock.
// The stock decrement and the sale insert share one transaction.
func (e *Engine) CreatePurchase(ctx context.Context, caller Identity, in CreatePurchaseInput) (*Detail, error) {
	if in.Quantity == 0 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be greater than zero")
	}
	pm, err := model.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid payment method")
	}
	if caller.IsAdmin() {
		return nil, apperr.New(apperr.KindConflict, "only customers may make purchases")
	}

	var saleID uint64
	err = e.store.InTx(ctx, func(tx Tx) error {
		p, err := tx.GetProduct(ctx, in.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "product not found")
			}
			return apperr.Internal(err)
		}
		if p.AvailableQuantity == 0 {
			return apperr.New(apperr.KindConflict, "product out of stock")
		}
		if p.AvailableQuantity < in.Quantity {
			return apperr.New(apperr.KindConflict, "insufficient quantity available")
		}
		ok, err := tx.TryDecrementStock(ctx, p.ID, in.Quantity)
		if err != nil {
			return apperr.Internal(err)
		}
		if !ok {
			// Lost the race to a concurrent purchase: re-read for the
			// accurate outcome.
			fresh, err := tx.GetProduct(ctx, in.ProductID)
			if err == nil && fresh.AvailableQuantity == 0 {
				return apperr.New(apperr.KindConflict, "product out of stock")
			}
			return apperr.New(apperr.KindConflict, "insufficient quantity available")
		}
		s := &model.Sale{
			ProductID:         p.ID,
			SellerID:          p.OwnerID,
			BuyerID:           caller.UserID,
			Quantity:          in.Quantity,
			UnitPriceSnapshot: p.UnitPrice,
			PaymentMethod:     pm,
			Status:            model.SaleStatusActive,
		}
		if err := tx.InsertSale(ctx, s); err != nil {
			return apperr.Internal(err)
		}
		saleID = s.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.detail(ctx, saleID)
}

// CancelPurchase reverses a sale: the original quantity is returned to
// the product's stock and the record flips to CANCELLED, atomically. A
// sale that is already cancelled, missing, or owned by someone else is
// refused; so is one whose product was withdrawn, since there is nowhere
// to restock to.
func (e *Engine) CancelPurchase(ctx context.Context, caller Identity, saleID uint64) (*Detail, error) {
	err := e.store.InTx(ctx, func(tx Tx) error {
		s, err := tx.GetSaleForBuyer(ctx, saleID, caller.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "purchase not found")
			}
			return apperr.Internal(err)
		}
		if s.Cancelled() {
			return apperr.New(apperr.KindConflict, "purchase already cancelled")
		}
		if _, err := tx.GetProduct(ctx, s.ProductID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "product no longer available")
			}
			return apperr.Internal(err)
		}
		// Restock with the quantity captured before any mutation.
		if err := tx.IncrementStock(ctx, s.ProductID, s.Quantity); err != nil {
			return apperr.Internal(err)
		}
		if err := tx.MarkCancelled(ctx, saleID, s.Quantity, e.now()); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.detail(ctx, saleID)
}

// UpdatePaymentMethod changes the payment label on an active sale owned
// by the caller. No inventory effect.
func (e *Engine) UpdatePaymentMethod(ctx context.Context, caller Identity, saleID uint64, rawMethod string) (*Detail, error) {
	pm, err := model.ParsePaymentMethod(rawMethod)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "invalid payment method")
	}
	err = e.store.InTx(ctx, func(tx Tx) error {
		s, err := tx.GetSaleForBuyer(ctx, saleID, caller.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return apperr.New(apperr.KindNotFound, "purchase not found")
			}
			return apperr.Internal(err)
		}
		if s.Cancelled() {
			return apperr.New(apperr.KindNotFound, "purchase not found")
		}
		if err := tx.SetPaymentMethod(ctx, saleID, pm, e.now()); err != nil {
			return apperr.Internal(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.detail(ctx, saleID)
}

func (e *Engine) detail(ctx context.Context, saleID uint64) (*Detail, error) {
	d, err := e.store.GetDetail(ctx, saleID)
	if err != nil {
		log.Printf("sale-engine: load detail for sale %d failed: %v", saleID, err)
		return nil, apperr.Internal(err)
	}
	return d, nil
}
