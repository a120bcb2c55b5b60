package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a listing created by an administrator. The sale engine is
// the only writer of AvailableQuantity; the owner edits everything else.
// Products are never hard-deleted: DeletedAt marks them withdrawn.
//
// Fields:
//  ID                – primary key identifier.
//  OwnerID           – administrator who listed the product.
//  Name              – display name.
//  Description       – free-form description.
//  UnitPrice         – current price, fixed-point decimal, >= 0.
//  AvailableQuantity – stock on hand, invariant >= 0.
//  DeletedAt         – soft-delete marker (nil while listed).
//  CreatedAt         – creation timestamp.
//  UpdatedAt         – last update timestamp.
type Product struct {
	ID                uint64          // products.id
	OwnerID           uint64          // products.owner_id
	Name              string          // products.name
	Description       string          // products.description
	UnitPrice         decimal.Decimal // products.unit_price
	AvailableQuantity uint32          // products.available_quantity
	DeletedAt         *time.Time      // products.deleted_at (nullable)
	CreatedAt         time.Time       // products.created_at
	UpdatedAt         time.Time       // products.updated_at
}
