package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clothica/backend/internal/model"
)

// FeedbackRepo persists customer feedback. Feedback is append-only: created
// through the public endpoint, never mutated afterwards.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// Create inserts a feedback row. The referenced good must exist; a foreign
// key violation surfaces as ErrNotFound.
func (r *FeedbackRepo) Create(ctx context.Context, f model.Feedback) (model.Feedback, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO feedbacks (author, date, description, rate, good_id) VALUES (?,?,?,?,?)",
		f.Author, f.Date, f.Description, f.Rate, f.Good.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.Feedback{}, ErrNotFound
		}
		return model.Feedback{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Feedback{}, err
	}
	f.ID = uint64(id)
	return f, nil
}

// List returns one page of feedbacks, optionally restricted to a single
// good, each joined with the reviewed good's name.
func (r *FeedbackRepo) List(ctx context.Context, goodID uint64, page, perPage int) ([]model.Feedback, int64, error) {
	cond := "1=1"
	args := []any{}
	if goodID != 0 {
		cond = "f.good_id = ?"
		args = append(args, goodID)
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM feedbacks f WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...), perPage, (page-1)*perPage)
	rows, err := r.DB.QueryContext(ctx,
		`SELECT f.id, f.author, f.date, f.description, f.rate, g.id, g.name
		FROM feedbacks f
		JOIN goods g ON g.id = f.good_id
		WHERE `+cond+`
		ORDER BY f.id LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Feedback, 0, perPage)
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.Author, &f.Date, &f.Description, &f.Rate, &f.Good.ID, &f.Good.Name); err != nil {
			return nil, 0, err
		}
		out = append(out, f)
	}
	return out, total, rows.Err()
}

// isForeignKeyViolation reports whether err is a MySQL foreign-key failure
// (error 1452).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
