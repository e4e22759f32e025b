package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SubscriptionRepo persists newsletter subscriptions.
type SubscriptionRepo struct{ DB *sql.DB }

func NewSubscriptionRepo(db *sql.DB) *SubscriptionRepo { return &SubscriptionRepo{DB: db} }

// Create registers an email. Duplicates surface as ErrEmailExists via the
// unique index, translated to a 400 by the handler.
func (r *SubscriptionRepo) Create(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	_, err := r.DB.ExecContext(ctx, "INSERT INTO subscriptions (email) VALUES (?)", email)
	if isDuplicateEntry(err) {
		return ErrEmailExists
	}
	return err
}
