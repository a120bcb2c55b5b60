// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used for sale lifecycle events.
const (
	SaleCompletedQueue = "sale.completed"
	SaleCancelledQueue = "sale.cancelled"
)

// SaleCompletedEvent is published after a purchase commits. It carries
// enough for downstream consumers to log, notify, or feed analytics
// without querying the primary database. Money fields are decimal
// strings to keep exactness across the wire.
type SaleCompletedEvent struct {
	EventID       string `json:"event_id"`
	SaleID        uint64 `json:"sale_id"`
	ProductID     uint64 `json:"product_id"`
	ProductName   string `json:"product_name"`
	SellerID      uint64 `json:"seller_id"`
	BuyerID       uint64 `json:"buyer_id"`
	Quantity      uint32 `json:"quantity"`
	UnitPrice     string `json:"unit_price"`
	TotalPrice    string `json:"total_price"`
	PaymentMethod string `json:"payment_method"`
	SoldAt        string `json:"sold_at"`
}

// SaleCancelledEvent is published after a cancellation commits and the
// stock has been returned.
type SaleCancelledEvent struct {
	EventID           string `json:"event_id"`
	SaleID            uint64 `json:"sale_id"`
	ProductID         uint64 `json:"product_id"`
	ProductName       string `json:"product_name"`
	BuyerID           uint64 `json:"buyer_id"`
	RestockedQuantity uint32 `json:"restocked_quantity"`
	RefundedTotal     string `json:"refunded_total"`
	CancelledAt       string `json:"cancelled_at"`
}
