package model

import "time"

// Order status lifecycle. Only admins move an order past processing.
const (
	OrderProcessing = "processing"
	OrderPacking    = "packing"
	OrderSuccess    = "success"
	OrderDeclined   = "declined"
)

// OrderItem is one product/amount/variant line within an order.
type OrderItem struct {
	GoodID uint64 `json:"id"`
	Amount uint32 `json:"amount"`
	Size   string `json:"size"`
	Color  string `json:"color"`
}

// Recipient is the denormalized snapshot of delivery data captured at order
// time. It stays frozen even when the owning user record changes later.
type Recipient struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	City         string `json:"city"`
	PostalOffice uint32 `json:"postalOffice"`
}

// Order mirrors the `orders` table plus its `order_items` rows. UserID is
// zero for guest checkouts.
type Order struct {
	ID        uint64      `json:"id"`
	OrderNum  uint32      `json:"orderNum"` // random 7-digit operator-facing number
	Items     []OrderItem `json:"products"`
	Sum       uint64      `json:"sum"`
	UserID    uint64      `json:"userId,omitempty"`
	Date      string      `json:"date"` // calendar day, YYYY-MM-DD
	Comment   string      `json:"comment"`
	Status    string      `json:"status"`
	Recipient Recipient   `json:"userData"`
	CreatedAt time.Time   `json:"createdAt"`
}
