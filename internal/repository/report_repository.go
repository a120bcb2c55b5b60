package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// PeriodReport summarizes an admin's active sales over a time window.
// Revenue is computed from the per-sale price snapshots, so later price
// edits never rewrite history.
type PeriodReport struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	SaleCount    uint64          `json:"sale_count"`
	UnitsSold    uint64          `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
}

// ProductRevenue summarizes the active sales of a single product.
type ProductRevenue struct {
	ProductID    uint64          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	SaleCount    uint64          `json:"sale_count"`
	UnitsSold    uint64          `json:"units_sold"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
}

// ReportRepo runs aggregate queries for the admin reporting endpoints.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// SalesByPeriod aggregates the seller's active sales with a transaction
// date inside [from, to]. Cancelled sales are excluded entirely; their
// stock went back and their revenue never materialized.
func (r *ReportRepo) SalesByPeriod(ctx context.Context, sellerID uint64, from, to time.Time) (*PeriodReport, error) {
	rep := &PeriodReport{From: from, To: to, GrossRevenue: decimal.Zero}
	var revenue sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(quantity), 0), SUM(quantity * unit_price_snapshot)
		 FROM sales
		 WHERE seller_id = ? AND status = 'ACTIVE'
		   AND transaction_date >= ? AND transaction_date <= ?`,
		sellerID, from, to).
		Scan(&rep.SaleCount, &rep.UnitsSold, &revenue)
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		rep.GrossRevenue, err = decimal.NewFromString(revenue.String)
		if err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// RevenueByProduct aggregates the active sales of one product, verifying
// that the product belongs to sellerID. A foreign or unknown product
// reads as sql.ErrNoRows.
func (r *ReportRepo) RevenueByProduct(ctx context.Context, sellerID, productID uint64) (*ProductRevenue, error) {
	rep := &ProductRevenue{ProductID: productID, GrossRevenue: decimal.Zero}
	var revenue sql.NullString
	err := r.DB.QueryRowContext(ctx,
		`SELECT p.name, COUNT(s.id), COALESCE(SUM(s.quantity), 0), SUM(s.quantity * s.unit_price_snapshot)
		 FROM products p
		 LEFT JOIN sales s ON s.product_id = p.id AND s.status = 'ACTIVE'
		 WHERE p.id = ? AND p.owner_id = ?
		 GROUP BY p.id, p.name`,
		productID, sellerID).
		Scan(&rep.ProductName, &rep.SaleCount, &rep.UnitsSold, &revenue)
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		rep.GrossRevenue, err = decimal.NewFromString(revenue.String)
		if err != nil {
			return nil, err
		}
	}
	return rep, nil
}
