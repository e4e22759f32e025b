package model

import "time"

// Role values stored in users.role.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the `users` table. PasswordHash never leaves the server:
// handlers respond with PublicUser projections only.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	Phone        string    // users.phone (unique, +380 format)
	PasswordHash string    // users.password_hash (bcrypt)
	City         string    // users.city
	PostalOffice uint32    // users.postal_office
	Avatar       string    // users.avatar (object storage URL)
	AvatarID     string    // users.avatar_id (object storage reference)
	Role         string    // users.role (user|admin)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// PublicUser is the outward shape of a user record with the password hash
// stripped.
type PublicUser struct {
	ID           uint64    `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	PostalOffice uint32    `json:"postalOffice"`
	Avatar       string    `json:"avatar"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public strips the credential fields from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Phone:        u.Phone,
		City:         u.City,
		PostalOffice: u.PostalOffice,
		Avatar:       u.Avatar,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
