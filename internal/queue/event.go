// Package queue defines message payloads exchanged over the broker and the
// background consumer that journals them.
package queue

// Queue names. One durable queue carries both order events.
const OrderEventsQueue = "order.events"

// Event kinds.
const (
	KindOrderCreated       = "order.created"
	KindOrderStatusChanged = "order.status.changed"
)

// OrderEvent is published when an order is created or its status changes.
// It carries enough for downstream consumers (journal, notifications,
// analytics) to act without touching the primary database.
type OrderEvent struct {
	Kind      string `json:"kind"`
	OrderID   uint64 `json:"order_id"`
	OrderNum  uint32 `json:"order_num"`
	UserID    uint64 `json:"user_id,omitempty"`
	Sum       uint64 `json:"sum"`
	Status    string `json:"status"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	ItemCount int    `json:"item_count"`
	At        string `json:"at"`
}
