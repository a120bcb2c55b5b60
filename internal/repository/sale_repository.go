package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/sale"
)

// SaleRepo persists sale records. Writes only ever happen inside a
// transaction shared with the inventory adjustment, which is why every
// mutating method is a ...Tx variant.
type SaleRepo struct{ DB *sql.DB }

func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{DB: db} }

const saleCols = `id, product_id, seller_id, buyer_id, quantity, unit_price_snapshot,
	payment_method, status, restocked_quantity, transaction_date, cancelled_at, modified_on`

func scanSale(scan func(dest ...any) error) (*model.Sale, error) {
	var (
		s         model.Sale
		pm        string
		cancelled sql.NullTime
		modified  sql.NullTime
	)
	err := scan(&s.ID, &s.ProductID, &s.SellerID, &s.BuyerID, &s.Quantity,
		&s.UnitPriceSnapshot, &pm, &s.Status, &s.RestockedQuantity,
		&s.TransactionDate, &cancelled, &modified)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = model.PaymentMethod(pm)
	if cancelled.Valid {
		t := cancelled.Time
		s.CancelledAt = &t
	}
	if modified.Valid {
		t := modified.Time
		s.ModifiedOn = &t
	}
	return &s, nil
}

// CreateTx inserts a sale within the transaction that also decremented
// the product's stock, and reads the row back to populate the generated
// ID and transaction date.
func (r *SaleRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Sale) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO sales (product_id, seller_id, buyer_id, quantity, unit_price_snapshot, payment_method, status)
		 VALUES (?,?,?,?,?,?,?)`,
		s.ProductID, s.SellerID, s.BuyerID, s.Quantity, s.UnitPriceSnapshot,
		string(s.PaymentMethod), s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT transaction_date FROM sales WHERE id=?", s.ID).
		Scan(&s.TransactionDate)
}

// GetForBuyerTx loads a sale owned by buyerID and locks the row until
// the transaction ends, so two concurrent cancellations of the same sale
// serialize instead of double-restocking. Absence and foreign ownership
// both read as sql.ErrNoRows.
func (r *SaleRepo) GetForBuyerTx(ctx context.Context, tx *sql.Tx, saleID, buyerID uint64) (*model.Sale, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+saleCols+" FROM sales WHERE id=? AND buyer_id=? LIMIT 1 FOR UPDATE",
		saleID, buyerID)
	return scanSale(row.Scan)
}

// CancelTx flips the sale to CANCELLED. The quantity column is left
// untouched; the restocked amount is recorded separately so the record
// stays an honest history of what was bought.
func (r *SaleRepo) CancelTx(ctx context.Context, tx *sql.Tx, saleID uint64, restocked uint32, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE sales SET status=?, restocked_quantity=?, cancelled_at=?
		 WHERE id=? AND status=?`,
		model.SaleStatusCancelled, restocked, at, saleID, model.SaleStatusActive)
	return err
}

// SetPaymentMethodTx updates the payment label and modified-on stamp.
func (r *SaleRepo) SetPaymentMethodTx(ctx context.Context, tx *sql.Tx, saleID uint64, pm model.PaymentMethod, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE sales SET payment_method=?, modified_on=? WHERE id=?",
		string(pm), at, saleID)
	return err
}

// GetDetail loads a sale joined with product, seller and buyer display
// names. Withdrawn products still join; history outlives the listing.
func (r *SaleRepo) GetDetail(ctx context.Context, saleID uint64) (*sale.Detail, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT s.id, s.product_id, s.seller_id, s.buyer_id, s.quantity, s.unit_price_snapshot,
		        s.payment_method, s.status, s.restocked_quantity, s.transaction_date,
		        s.cancelled_at, s.modified_on,
		        p.name, seller.name, buyer.name
		 FROM sales s
		 JOIN products p ON p.id = s.product_id
		 JOIN users seller ON seller.id = s.seller_id
		 JOIN users buyer ON buyer.id = s.buyer_id
		 WHERE s.id = ?`, saleID)
	var (
		s         model.Sale
		pm        string
		cancelled sql.NullTime
		modified  sql.NullTime
		d         sale.Detail
	)
	err := row.Scan(&s.ID, &s.ProductID, &s.SellerID, &s.BuyerID, &s.Quantity,
		&s.UnitPriceSnapshot, &pm, &s.Status, &s.RestockedQuantity,
		&s.TransactionDate, &cancelled, &modified,
		&d.ProductName, &d.SellerName, &d.BuyerName)
	if err != nil {
		return nil, err
	}
	s.PaymentMethod = model.PaymentMethod(pm)
	if cancelled.Valid {
		t := cancelled.Time
		s.CancelledAt = &t
	}
	if modified.Valid {
		t := modified.Time
		s.ModifiedOn = &t
	}
	d.Sale = s
	return &d, nil
}

// ListByBuyer returns the caller's purchases, newest first.
func (r *SaleRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]sale.Detail, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT s.id, s.product_id, s.seller_id, s.buyer_id, s.quantity, s.unit_price_snapshot,
		        s.payment_method, s.status, s.restocked_quantity, s.transaction_date,
		        s.cancelled_at, s.modified_on,
		        p.name, seller.name, buyer.name
		 FROM sales s
		 JOIN products p ON p.id = s.product_id
		 JOIN users seller ON seller.id = s.seller_id
		 JOIN users buyer ON buyer.id = s.buyer_id
		 WHERE s.buyer_id = ?
		 ORDER BY s.transaction_date DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]sale.Detail, 0)
	for rows.Next() {
		var (
			s         model.Sale
			pm        string
			cancelled sql.NullTime
			modified  sql.NullTime
			d         sale.Detail
		)
		if err := rows.Scan(&s.ID, &s.ProductID, &s.SellerID, &s.BuyerID, &s.Quantity,
			&s.UnitPriceSnapshot, &pm, &s.Status, &s.RestockedQuantity,
			&s.TransactionDate, &cancelled, &modified,
			&d.ProductName, &d.SellerName, &d.BuyerName); err != nil {
			return nil, err
		}
		s.PaymentMethod = model.PaymentMethod(pm)
		if cancelled.Valid {
			t := cancelled.Time
			s.CancelledAt = &t
		}
		if modified.Valid {
			t := modified.Time
			s.ModifiedOn = &t
		}
		d.Sale = s
		out = append(out, d)
	}
	return out, rows.Err()
}
