package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clothica/backend/internal/model"
)

// OrderRepo persists orders and their line items.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// Create inserts the order row and all line items inside one transaction and
// returns the order with its generated id.
func (r *OrderRepo) Create(ctx context.Context, o model.Order) (model.Order, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Order{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var userID any
	if o.UserID != 0 {
		userID = o.UserID
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (order_num, sum, user_id, date, comment, status, first_name, last_name, phone, city, postal_office)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		o.OrderNum, o.Sum, userID, o.Date, o.Comment, model.OrderProcessing,
		o.Recipient.FirstName, o.Recipient.LastName, o.Recipient.Phone,
		o.Recipient.City, o.Recipient.PostalOffice)
	if err != nil {
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	o.ID = uint64(id)
	o.Status = model.OrderProcessing

	for _, item := range o.Items {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, good_id, amount, size, color) VALUES (?,?,?,?,?)",
			o.ID, item.GoodID, item.Amount, item.Size, item.Color); err != nil {
			return model.Order{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Order{}, err
	}
	committed = true
	return o, nil
}

// ListForUser returns every order placed by the user or addressed to the
// user's phone. Guest orders placed with the same phone before registration
// stay visible this way.
func (r *OrderRepo) ListForUser(ctx context.Context, userID uint64, phone string) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		orderSelect+" WHERE o.user_id = ? OR o.phone = ? ORDER BY o.id DESC", userID, phone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

// UpdateStatus sets a new status and returns the updated order. ErrNotFound
// when no order matches.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Order, error) {
	if _, err := r.DB.ExecContext(ctx, "UPDATE orders SET status=? WHERE id=?", status, id); err != nil {
		return model.Order{}, err
	}
	return r.GetByID(ctx, id)
}

const orderSelect = `SELECT o.id, o.order_num, o.sum, o.user_id, o.date, o.comment, o.status,
	o.first_name, o.last_name, o.phone, o.city, o.postal_office, o.created_at
	FROM orders o`

// GetByID fetches one order with its line items.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (model.Order, error) {
	rows, err := r.DB.QueryContext(ctx, orderSelect+" WHERE o.id = ?", id)
	if err != nil {
		return model.Order{}, err
	}
	defer rows.Close()
	orders, err := r.collectOrders(ctx, rows)
	if err != nil {
		return model.Order{}, err
	}
	if len(orders) == 0 {
		return model.Order{}, ErrNotFound
	}
	return orders[0], nil
}

func (r *OrderRepo) collectOrders(ctx context.Context, rows *sql.Rows) ([]model.Order, error) {
	out := []model.Order{}
	index := map[uint64]int{}
	for rows.Next() {
		var (
			o      model.Order
			userID sql.NullInt64
		)
		if err := rows.Scan(&o.ID, &o.OrderNum, &o.Sum, &userID, &o.Date, &o.Comment, &o.Status,
			&o.Recipient.FirstName, &o.Recipient.LastName, &o.Recipient.Phone,
			&o.Recipient.City, &o.Recipient.PostalOffice, &o.CreatedAt); err != nil {
			return nil, err
		}
		if userID.Valid {
			o.UserID = uint64(userID.Int64)
		}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	ph := make([]string, 0, len(out))
	for _, o := range out {
		ids = append(ids, o.ID)
		ph = append(ph, "?")
	}
	itemRows, err := r.DB.QueryContext(ctx,
		"SELECT order_id, good_id, amount, size, color FROM order_items WHERE order_id IN ("+strings.Join(ph, ",")+") ORDER BY id", ids...)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var (
			orderID uint64
			item    model.OrderItem
		)
		if err := itemRows.Scan(&orderID, &item.GoodID, &item.Amount, &item.Size, &item.Color); err != nil {
			return nil, err
		}
		i := index[orderID]
		out[i].Items = append(out[i].Items, item)
	}
	return out, itemRows.Err()
}
