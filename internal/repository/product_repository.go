package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// ProductRepo persists products and owns the inventory adjustment
// primitives. Stock changes are single guarded UPDATE statements so the
// check-then-act is one atomic unit at the database; two concurrent
// decrements against the same product can never both succeed when only
// one has sufficient stock.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productCols = "id,owner_id,name,description,unit_price,available_quantity,deleted_at,created_at,updated_at"

func scanProduct(scan func(dest ...any) error) (*model.Product, error) {
	var (
		p       model.Product
		deleted sql.NullTime
	)
	err := scan(&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.UnitPrice,
		&p.AvailableQuantity, &deleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if deleted.Valid {
		t := deleted.Time
		p.DeletedAt = &t
	}
	return &p, nil
}

// Create inserts a product and populates its generated ID.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO products (owner_id, name, description, unit_price, available_quantity) VALUES (?,?,?,?,?)",
		p.OwnerID, p.Name, p.Description, p.UnitPrice, p.AvailableQuantity)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM products WHERE id=?", p.ID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

// Update edits the owner-mutable fields of a live product. The WHERE
// clause enforces ownership; zero rows affected reads as absence so a
// foreign owner learns nothing about the product's existence.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET name=?, description=?, unit_price=?, available_quantity=?
		 WHERE id=? AND owner_id=? AND deleted_at IS NULL`,
		p.Name, p.Description, p.UnitPrice, p.AvailableQuantity, p.ID, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SoftDelete withdraws a product without removing the row; historical
// sales keep referencing it.
func (r *ProductRepo) SoftDelete(ctx context.Context, id, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET deleted_at=NOW() WHERE id=? AND owner_id=? AND deleted_at IS NULL",
		id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetByID fetches a live product.
func (r *ProductRepo) GetByID(ctx context.Context, id uint64) (*model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanProduct(row.Scan)
}

// GetTx is GetByID inside a caller-owned transaction. The sale engine
// reads the price snapshot and owner through this before adjusting stock.
func (r *ProductRepo) GetTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Product, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+productCols+" FROM products WHERE id=? AND deleted_at IS NULL LIMIT 1", id)
	return scanProduct(row.Scan)
}

// List returns all live products, newest first.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productCols+" FROM products WHERE deleted_at IS NULL ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// TryDecrementTx subtracts qty from available stock iff enough remains.
// The guard lives in the WHERE clause, so the decrement is atomic at the
// row: a concurrent transaction either sees the decremented value or
// blocks on the row lock, never a stale read.
func (r *ProductRepo) TryDecrementTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET available_quantity = available_quantity - ?
		 WHERE id=? AND deleted_at IS NULL AND available_quantity >= ?`,
		qty, id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// IncrementTx returns qty units to stock. Increments commute, so no
// guard is needed beyond product existence, which the caller checks.
func (r *ProductRepo) IncrementTx(ctx context.Context, tx *sql.Tx, id uint64, qty uint32) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE products SET available_quantity = available_quantity + ? WHERE id=?",
		qty, id)
	return err
}
