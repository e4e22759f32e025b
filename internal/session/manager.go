// Package session implements the authentication session lifecycle: paired
// access/refresh tokens, rotation on refresh, replacement on login and
// cookie issuance.
package session

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/utils"
)

// Cookie names shared by issuance, clearing and the auth gate.
const (
	CookieAccess  = "accessToken"
	CookieRefresh = "refreshToken"
	CookieSession = "sessionId"
)

// Store is the persistence surface the manager needs. *repository.SessionRepo
// satisfies it; tests plug in fakes.
type Store interface {
	Create(ctx context.Context, s model.Session) (model.Session, error)
	GetByRefreshHash(ctx context.Context, hash string) (model.Session, error)
	ClaimByID(ctx context.Context, id uint64) (bool, error)
	DeleteByID(ctx context.Context, id uint64) error
	DeleteByRefreshHash(ctx context.Context, hash string) error
	DeleteByUserID(ctx context.Context, userID uint64) error
}

// UserSource resolves the role for freshly rotated sessions.
type UserSource interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// Grant is a created session together with the raw tokens that go back to
// the client. The raw values exist only in memory; the store keeps hashes.
type Grant struct {
	Session model.Session
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// Manager creates, rotates and invalidates sessions.
type Manager struct {
	Store          Store
	Users          UserSource
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
}

func NewManager(store Store, users UserSource, secret string, accessTTLMin, refreshTTLDays int) *Manager {
	return &Manager{
		Store:          store,
		Users:          users,
		JWTSecret:      secret,
		AccessTTLMin:   accessTTLMin,
		RefreshTTLDays: refreshTTLDays,
	}
}

// Create generates a fresh token pair, persists a session record holding
// their hashes and returns the grant.
func (m *Manager) Create(ctx context.Context, userID uint64, role string) (Grant, error) {
	access, err := utils.NewAccessToken(m.JWTSecret, userID, role, m.AccessTTLMin)
	if err != nil {
		return Grant{}, err
	}
	refresh, err := utils.NewRefreshToken(m.RefreshTTLDays)
	if err != nil {
		return Grant{}, err
	}
	s, err := m.Store.Create(ctx, model.Session{
		UserID:           userID,
		AccessHash:       utils.HashToken(access.Token),
		RefreshHash:      utils.HashToken(refresh.Raw),
		RefreshExpiresAt: refresh.Exp,
	})
	if err != nil {
		return Grant{}, err
	}
	return Grant{Session: s, Access: access, Refresh: refresh}, nil
}

// Login discards every existing session for the user, then creates a fresh
// one. At most one active session survives a login.
func (m *Manager) Login(ctx context.Context, userID uint64, role string) (Grant, error) {
	if err := m.Store.DeleteByUserID(ctx, userID); err != nil {
		return Grant{}, err
	}
	return m.Create(ctx, userID, role)
}

// Rotate exchanges a refresh token for a new session. The old session is
// deleted only on success, so a token that fails the expiry check stays in
// place; the conditional claim on the row makes the rotation single-use even
// under concurrent refreshes.
func (m *Manager) Rotate(ctx context.Context, rawRefresh string) (Grant, error) {
	s, err := m.Store.GetByRefreshHash(ctx, utils.HashToken(rawRefresh))
	if err != nil {
		return Grant{}, err
	}
	if time.Now().UTC().After(s.RefreshExpiresAt) {
		return Grant{}, repository.ErrSessionExpired
	}
	claimed, err := m.Store.ClaimByID(ctx, s.ID)
	if err != nil {
		return Grant{}, err
	}
	if !claimed {
		// a concurrent refresh won the claim; this token is spent
		return Grant{}, repository.ErrSessionNotFound
	}
	u, err := m.Users.GetByID(ctx, s.UserID)
	if err != nil {
		return Grant{}, err
	}
	return m.Create(ctx, u.ID, u.Role)
}

// Logout deletes by session id and, independently, by refresh token.
// Absence of either is not an error; logout is idempotent.
func (m *Manager) Logout(ctx context.Context, sessionID uint64, rawRefresh string) error {
	if sessionID != 0 {
		if err := m.Store.DeleteByID(ctx, sessionID); err != nil {
			return err
		}
	}
	if rawRefresh != "" {
		if err := m.Store.DeleteByRefreshHash(ctx, utils.HashToken(rawRefresh)); err != nil {
			return err
		}
	}
	return nil
}

// ReadCookie resolves a cookie through two extraction paths: the parsed
// cookie jar first, then a manual scan of the raw Cookie header. The second
// path covers requests whose cookies the primary parser did not populate.
func ReadCookie(c echo.Context, name string) string {
	if ck, err := c.Cookie(name); err == nil && ck.Value != "" {
		return ck.Value
	}
	raw := c.Request().Header.Get("Cookie")
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && k == name {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

// IssueCookies projects a grant onto the three auth cookies. The refresh and
// session cookies live until the refresh token expires; the access cookie
// until the JWT does.
func IssueCookies(c echo.Context, g Grant) {
	setCookie(c, CookieAccess, g.Access.Token, g.Access.Exp)
	setCookie(c, CookieRefresh, g.Refresh.Raw, g.Refresh.Exp)
	setCookie(c, CookieSession, strconv.FormatUint(g.Session.ID, 10), g.Refresh.Exp)
}

// ClearCookies expires all three auth cookies regardless of which were set.
func ClearCookies(c echo.Context) {
	expired := time.Unix(0, 0).UTC()
	setCookie(c, CookieAccess, "", expired)
	setCookie(c, CookieRefresh, "", expired)
	setCookie(c, CookieSession, "", expired)
}

func setCookie(c echo.Context, name, value string, exp time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Expires:  exp,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
