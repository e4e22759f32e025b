package model

import "time"

// Session models an entry in the `sessions` table. One row represents one
// active authentication grant: a user paired with an access/refresh token
// pair. The plain tokens are never stored; only their SHA-256 hashes.
//
// Fields:
//  ID               – primary key, also the value of the sessionId cookie.
//  UserID           – owner of the session.
//  AccessHash       – SHA-256 hex digest of the access token.
//  RefreshHash      – SHA-256 hex digest of the refresh token (unique).
//  RefreshExpiresAt – when the refresh token stops being rotatable.
//  CreatedAt        – timestamp of creation.
type Session struct {
	ID               uint64    // sessions.id
	UserID           uint64    // sessions.user_id
	AccessHash       string    // sessions.access_hash
	RefreshHash      string    // sessions.refresh_hash
	RefreshExpiresAt time.Time // sessions.refresh_expires_at
	CreatedAt        time.Time // sessions.created_at
}
