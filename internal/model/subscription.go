package model

import "time"

// Subscription mirrors the `subscriptions` table: one unique email per row.
type Subscription struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
