package sale

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// memStore is an in-memory Store. A single mutex serializes InTx calls,
// mirroring the row-level serialization the database gives the real
// store, and a transaction's writes are applied only when fn returns nil.
type memStore struct {
	mu       sync.Mutex
	products map[uint64]*model.Product
	sales    map[uint64]*model.Sale
	users    map[uint64]string
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uint64]*model.Product{},
		sales:    map[uint64]*model.Sale{},
		users:    map[uint64]string{},
		nextID:   1,
	}
}

func (m *memStore) addUser(id uint64, name string) { m.users[id] = name }

func (m *memStore) addProduct(ownerID uint64, name, price string, qty uint32) *model.Product {
	p := &model.Product{
		ID:                m.nextID,
		OwnerID:           ownerID,
		Name:              name,
		UnitPrice:         decimal.RequireFromString(price),
		AvailableQuantity: qty,
	}
	m.nextID++
	m.products[p.ID] = p
	return p
}

func (m *memStore) stock(productID uint64) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[productID].AvailableQuantity
}

func (m *memStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx := &memTx{
		products: map[uint64]model.Product{},
		sales:    map[uint64]model.Sale{},
		nextID:   m.nextID,
	}
	for id, p := range m.products {
		tx.products[id] = *p
	}
	for id, s := range m.sales {
		tx.sales[id] = *s
	}
	if err := fn(tx); err != nil {
		return err
	}
	for id, p := range tx.products {
		cp := p
		m.products[id] = &cp
	}
	for id, s := range tx.sales {
		cs := s
		m.sales[id] = &cs
	}
	m.nextID = tx.nextID
	return nil
}

func (m *memStore) GetDetail(ctx context.Context, saleID uint64) (*Detail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sales[saleID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	d := &Detail{Sale: *s}
	if p, ok := m.products[s.ProductID]; ok {
		d.ProductName = p.Name
	}
	d.SellerName = m.users[s.SellerID]
	d.BuyerName = m.users[s.BuyerID]
	return d, nil
}

// memTx operates on copies; memStore.InTx commits them on success.
type memTx struct {
	products map[uint64]model.Product
	sales    map[uint64]model.Sale
	nextID   uint64
}

func (t *memTx) GetProduct(ctx context.Context, productID uint64) (*model.Product, error) {
	p, ok := t.products[productID]
	if !ok || p.DeletedAt != nil {
		return nil, sql.ErrNoRows
	}
	cp := p
	return &cp, nil
}

func (t *memTx) TryDecrementStock(ctx context.Context, productID uint64, qty uint32) (bool, error) {
	p, ok := t.products[productID]
	if !ok || p.DeletedAt != nil || p.AvailableQuantity < qty {
		return false, nil
	}
	p.AvailableQuantity -= qty
	t.products[productID] = p
	return true, nil
}

func (t *memTx) IncrementStock(ctx context.Context, productID uint64, qty uint32) error {
	p, ok := t.products[productID]
	if !ok {
		return sql.ErrNoRows
	}
	p.AvailableQuantity += qty
	t.products[productID] = p
	return nil
}

func (t *memTx) InsertSale(ctx context.Context, s *model.Sale) error {
	s.ID = t.nextID
	t.nextID++
	s.TransactionDate = time.Now().UTC()
	t.sales[s.ID] = *s
	return nil
}

func (t *memTx) GetSaleForBuyer(ctx context.Context, saleID, buyerID uint64) (*model.Sale, error) {
	s, ok := t.sales[saleID]
	if !ok || s.BuyerID != buyerID {
		return nil, sql.ErrNoRows
	}
	cs := s
	return &cs, nil
}

func (t *memTx) MarkCancelled(ctx context.Context, saleID uint64, restocked uint32, at time.Time) error {
	s, ok := t.sales[saleID]
	if !ok || s.Status != model.SaleStatusActive {
		return sql.ErrNoRows
	}
	s.Status = model.SaleStatusCancelled
	s.RestockedQuantity = restocked
	s.CancelledAt = &at
	t.sales[saleID] = s
	return nil
}

func (t *memTx) SetPaymentMethod(ctx context.Context, saleID uint64, pm model.PaymentMethod, at time.Time) error {
	s, ok := t.sales[saleID]
	if !ok {
		return sql.ErrNoRows
	}
	s.PaymentMethod = pm
	s.ModifiedOn = &at
	t.sales[saleID] = s
	return nil
}

var (
	admin    = Identity{UserID: 1, Role: model.RoleAdmin}
	customer = Identity{UserID: 2, Role: model.RoleCustomer}
)

func newFixture(t *testing.T, qty uint32) (*Engine, *memStore, *model.Product) {
	t.Helper()
	store := newMemStore()
	store.addUser(1, "alice")
	store.addUser(2, "bob")
	p := store.addProduct(1, "keyboard", "149.90", qty)
	return NewEngine(store), store, p
}

func buy(in uint64, qty uint32) CreatePurchaseInput {
	return CreatePurchaseInput{ProductID: in, Quantity: qty, PaymentMethod: "PIX"}
}

func TestCreatePurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("succeeds and decrements stock", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 3))
		require.NoError(t, err)

		assert.Equal(t, uint32(7), store.stock(p.ID))
		assert.Equal(t, uint32(3), d.Sale.Quantity)
		assert.Equal(t, model.SaleStatusActive, d.Sale.Status)
		assert.Equal(t, "149.90", d.Sale.UnitPriceSnapshot.StringFixed(2))
		assert.Equal(t, "449.70", d.TotalPrice().StringFixed(2))
		assert.Equal(t, "keyboard", d.ProductName)
		assert.Equal(t, "alice", d.SellerName)
		assert.Equal(t, "bob", d.BuyerName)
	})

	t.Run("zero quantity is rejected before anything else", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		_, err := eng.CreatePurchase(ctx, admin, CreatePurchaseInput{ProductID: p.ID, Quantity: 0, PaymentMethod: "nope"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		assert.Equal(t, uint32(10), store.stock(p.ID))
	})

	t.Run("invalid payment method", func(t *testing.T) {
		eng, _, p := newFixture(t, 10)

		_, err := eng.CreatePurchase(ctx, customer, CreatePurchaseInput{ProductID: p.ID, Quantity: 1, PaymentMethod: "BARTER"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("admins cannot buy", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		_, err := eng.CreatePurchase(ctx, admin, buy(p.ID, 1))
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, uint32(10), store.stock(p.ID))
	})

	t.Run("unknown product", func(t *testing.T) {
		eng, _, _ := newFixture(t, 10)

		_, err := eng.CreatePurchase(ctx, customer, buy(999, 1))
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("withdrawn product reads as absent", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)
		now := time.Now().UTC()
		store.products[p.ID].DeletedAt = &now

		_, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("out of stock beats insufficient quantity", func(t *testing.T) {
		eng, _, p := newFixture(t, 0)

		_, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, "product out of stock", apperr.MessagesOf(err)[0])
	})

	t.Run("insufficient quantity leaves stock untouched", func(t *testing.T) {
		eng, store, p := newFixture(t, 5)

		_, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 6))
		require.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, "insufficient quantity available", apperr.MessagesOf(err)[0])
		assert.Equal(t, uint32(5), store.stock(p.ID))
	})

	t.Run("snapshot survives later price edits", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 2))
		require.NoError(t, err)

		store.products[p.ID].UnitPrice = decimal.RequireFromString("999.99")

		fresh, err := store.GetDetail(ctx, d.Sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "149.90", fresh.Sale.UnitPriceSnapshot.StringFixed(2))
		assert.Equal(t, "299.80", fresh.TotalPrice().StringFixed(2))
	})
}

func TestCreatePurchaseConcurrent(t *testing.T) {
	// Stock 5, two buyers want 3 each: exactly one succeeds and the
	// final stock is 2.
	eng, store, p := newFixture(t, 5)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.CreatePurchase(ctx, customer, buy(p.ID, 3))
		}(i)
	}
	wg.Wait()

	var ok, failed int
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
			failed++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
	assert.Equal(t, uint32(2), store.stock(p.ID))
}

func TestCancelPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("restores stock and flips status", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 4))
		require.NoError(t, err)
		require.Equal(t, uint32(6), store.stock(p.ID))

		cancelled, err := eng.CancelPurchase(ctx, customer, d.Sale.ID)
		require.NoError(t, err)

		assert.Equal(t, uint32(10), store.stock(p.ID))
		assert.Equal(t, model.SaleStatusCancelled, cancelled.Sale.Status)
		assert.Equal(t, uint32(4), cancelled.Sale.RestockedQuantity)
		assert.Equal(t, uint32(4), cancelled.Sale.Quantity, "quantity must stay immutable")
		assert.NotNil(t, cancelled.Sale.CancelledAt)
	})

	t.Run("double cancel does not restock twice", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 4))
		require.NoError(t, err)

		_, err = eng.CancelPurchase(ctx, customer, d.Sale.ID)
		require.NoError(t, err)

		_, err = eng.CancelPurchase(ctx, customer, d.Sale.ID)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, uint32(10), store.stock(p.ID))
	})

	t.Run("foreign sale reads as absent", func(t *testing.T) {
		eng, _, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		require.NoError(t, err)

		other := Identity{UserID: 42, Role: model.RoleCustomer}
		_, err = eng.CancelPurchase(ctx, other, d.Sale.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("withdrawn product blocks restock", func(t *testing.T) {
		eng, store, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 2))
		require.NoError(t, err)

		now := time.Now().UTC()
		store.products[p.ID].DeletedAt = &now

		_, err = eng.CancelPurchase(ctx, customer, d.Sale.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
		assert.Equal(t, uint32(8), store.stock(p.ID))
	})
}

func TestUpdatePaymentMethod(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the label on an active sale", func(t *testing.T) {
		eng, _, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		require.NoError(t, err)
		require.Equal(t, model.PaymentPix, d.Sale.PaymentMethod)

		updated, err := eng.UpdatePaymentMethod(ctx, customer, d.Sale.ID, "credit_card")
		require.NoError(t, err)
		assert.Equal(t, model.PaymentCreditCard, updated.Sale.PaymentMethod)
		assert.NotNil(t, updated.Sale.ModifiedOn)
	})

	t.Run("invalid method", func(t *testing.T) {
		eng, _, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		require.NoError(t, err)

		_, err = eng.UpdatePaymentMethod(ctx, customer, d.Sale.ID, "IOU")
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("cancelled sale reads as absent", func(t *testing.T) {
		eng, _, p := newFixture(t, 10)

		d, err := eng.CreatePurchase(ctx, customer, buy(p.ID, 1))
		require.NoError(t, err)
		_, err = eng.CancelPurchase(ctx, customer, d.Sale.ID)
		require.NoError(t, err)

		_, err = eng.UpdatePaymentMethod(ctx, customer, d.Sale.ID, "CASH")
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
