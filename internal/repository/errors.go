// Package repository implements the persistence layer over MySQL. Sentinel
// errors defined here let handlers map failures onto HTTP statuses without
// inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when an entity lookup by id matches nothing.
// Handlers translate it into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrPhoneExists is returned when a registration collides with an existing
// user phone. Translated into HTTP 400.
var ErrPhoneExists = errors.New("phone already in use")

// ErrEmailExists is returned when a subscription collides with an existing
// email. Translated into HTTP 400.
var ErrEmailExists = errors.New("email already in use")

// ErrSessionNotFound is returned when no session matches the presented
// token or id. Translated into HTTP 401.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when a refresh token exists but its validity
// window has passed. Distinct from ErrSessionNotFound for logging, identical
// at the HTTP layer (401).
var ErrSessionExpired = errors.New("session token expired")

// isDuplicateEntry reports whether err is a MySQL unique-constraint
// violation (error 1062).
func isDuplicateEntry(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}
