package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/clothica/backend/internal/model"
)

// UserRepo persists user records.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, first_name, last_name, phone, password_hash, city, postal_office, avatar, avatar_id, role, created_at, updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Phone, &u.PasswordHash,
		&u.City, &u.PostalOffice, &u.Avatar, &u.AvatarID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// Create inserts a new user with the 'user' role and returns its id. A
// duplicate phone surfaces as ErrPhoneExists via the unique index.
func (r *UserRepo) Create(ctx context.Context, firstName, phone, passwordHash string) (uint64, error) {
	phone = strings.TrimSpace(phone)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (first_name, phone, password_hash) VALUES (?,?,?)",
		strings.TrimSpace(firstName), phone, passwordHash)
	if err != nil {
		if isDuplicateEntry(err) {
			return 0, ErrPhoneExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByPhone fetches a user by phone.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone=? LIMIT 1", strings.TrimSpace(phone)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// UpdateProfile overwrites the mutable profile fields and returns the fresh
// record. A phone collision with another user surfaces as ErrPhoneExists.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, firstName, lastName, phone, city string, postalOffice uint32) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET first_name=?, last_name=?, phone=?, city=?, postal_office=? WHERE id=?",
		strings.TrimSpace(firstName), strings.TrimSpace(lastName), strings.TrimSpace(phone),
		strings.TrimSpace(city), postalOffice, id)
	if err != nil {
		if isDuplicateEntry(err) {
			return model.User{}, ErrPhoneExists
		}
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateAvatar stores the new avatar URL and object reference and returns
// the fresh record.
func (r *UserRepo) UpdateAvatar(ctx context.Context, id uint64, url, refID string) (model.User, error) {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET avatar=?, avatar_id=? WHERE id=?", url, refID, id)
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, id)
}
