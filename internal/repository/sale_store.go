package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/marketplace-api/internal/database"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/sale"
)

// SaleStore adapts the product and sale repositories to the sale
// engine's Store interface. One SaleStore transaction spans both tables,
// which is what makes the (decrement, insert) and (restock, cancel)
// pairs all-or-nothing.
type SaleStore struct {
	db       *sql.DB
	products *ProductRepo
	sales    *SaleRepo
}

func NewSaleStore(db *sql.DB, products *ProductRepo, sales *SaleRepo) *SaleStore {
	return &SaleStore{db: db, products: products, sales: sales}
}

// InTx runs fn inside a single database transaction.
func (s *SaleStore) InTx(ctx context.Context, fn func(tx sale.Tx) error) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&saleStoreTx{store: s, tx: tx})
	})
}

// GetDetail loads display data outside any transaction.
func (s *SaleStore) GetDetail(ctx context.Context, saleID uint64) (*sale.Detail, error) {
	return s.sales.GetDetail(ctx, saleID)
}

// saleStoreTx is the transaction-scoped view handed to the engine.
type saleStoreTx struct {
	store *SaleStore
	tx    *sql.Tx
}

func (t *saleStoreTx) GetProduct(ctx context.Context, productID uint64) (*model.Product, error) {
	return t.store.products.GetTx(ctx, t.tx, productID)
}

func (t *saleStoreTx) TryDecrementStock(ctx context.Context, productID uint64, qty uint32) (bool, error) {
	return t.store.products.TryDecrementTx(ctx, t.tx, productID, qty)
}

func (t *saleStoreTx) IncrementStock(ctx context.Context, productID uint64, qty uint32) error {
	return t.store.products.IncrementTx(ctx, t.tx, productID, qty)
}

func (t *saleStoreTx) InsertSale(ctx context.Context, s *model.Sale) error {
	return t.store.sales.CreateTx(ctx, t.tx, s)
}

func (t *saleStoreTx) GetSaleForBuyer(ctx context.Context, saleID, buyerID uint64) (*model.Sale, error) {
	return t.store.sales.GetForBuyerTx(ctx, t.tx, saleID, buyerID)
}

func (t *saleStoreTx) MarkCancelled(ctx context.Context, saleID uint64, restocked uint32, at time.Time) error {
	return t.store.sales.CancelTx(ctx, t.tx, saleID, restocked, at)
}

func (t *saleStoreTx) SetPaymentMethod(ctx context.Context, saleID uint64, pm model.PaymentMethod, at time.Time) error {
	return t.store.sales.SetPaymentMethodTx(ctx, t.tx, saleID, pm, at)
}
