package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/clothica/backend/internal/model"
)

// SessionRepo persists session records (hashed token pairs).
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row and returns it with the generated id.
func (r *SessionRepo) Create(ctx context.Context, s model.Session) (model.Session, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (user_id, access_hash, refresh_hash, refresh_expires_at) VALUES (?,?,?,?)",
		s.UserID, s.AccessHash, s.RefreshHash, s.RefreshExpiresAt)
	if err != nil {
		return model.Session{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Session{}, err
	}
	s.ID = uint64(id)
	return s, nil
}

func scanSession(row *sql.Row) (model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.UserID, &s.AccessHash, &s.RefreshHash, &s.RefreshExpiresAt, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return s, ErrSessionNotFound
	}
	return s, err
}

// GetByID fetches a session by its primary key.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, access_hash, refresh_hash, refresh_expires_at, created_at FROM sessions WHERE id=? LIMIT 1", id))
}

// GetByRefreshHash fetches a session by the hash of its refresh token.
func (r *SessionRepo) GetByRefreshHash(ctx context.Context, hash string) (model.Session, error) {
	return scanSession(r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, access_hash, refresh_hash, refresh_expires_at, created_at FROM sessions WHERE refresh_hash=? LIMIT 1", hash))
}

// ClaimByID deletes a session by id and reports whether this call removed
// it. Rotation uses the row deletion as its serialization point: of two
// concurrent refreshes with the same token, only the one that actually
// deletes the row proceeds.
func (r *SessionRepo) ClaimByID(ctx context.Context, id uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteByID removes a session by id. Missing rows are not an error.
func (r *SessionRepo) DeleteByID(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id=?", id)
	return err
}

// DeleteByRefreshHash removes a session by refresh-token hash. Missing rows
// are not an error.
func (r *SessionRepo) DeleteByRefreshHash(ctx context.Context, hash string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE refresh_hash=?", hash)
	return err
}

// DeleteByUserID removes every session belonging to a user. Login calls this
// so a fresh login leaves at most one live session per user.
func (r *SessionRepo) DeleteByUserID(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE user_id=?", userID)
	return err
}

// DeleteExpired sweeps sessions whose refresh window has passed. Rotation
// rejects expired sessions lazily; this keeps the table from accumulating
// garbage between rotations.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM sessions WHERE refresh_expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
