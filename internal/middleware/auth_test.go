package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/session"
	"github.com/clothica/backend/internal/utils"
)

const testSecret = "test-secret"

type fakeSessions struct {
	sessions map[uint64]model.Session
}

func (f fakeSessions) GetByID(_ context.Context, id uint64) (model.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return model.Session{}, repository.ErrSessionNotFound
	}
	return s, nil
}

type fakeUsers struct {
	users map[uint64]model.User
}

func (f fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// authFixture returns a request carrying a full valid cookie set plus the
// stores that back it.
func authFixture(t *testing.T) (*http.Request, fakeSessions, fakeUsers) {
	t.Helper()
	access, err := utils.NewAccessToken(testSecret, 1, model.RoleUser, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieAccess, Value: access.Token})
	req.AddCookie(&http.Cookie{Name: session.CookieSession, Value: "10"})

	sessions := fakeSessions{sessions: map[uint64]model.Session{
		10: {ID: 10, UserID: 1, AccessHash: utils.HashToken(access.Token)},
	}}
	users := fakeUsers{users: map[uint64]model.User{
		1: {ID: 1, FirstName: "Olha", Phone: "+380501234567", Role: model.RoleUser},
	}}
	return req, sessions, users
}

func runGate(req *http.Request, sessions fakeSessions, users fakeUsers) (*httptest.ResponseRecorder, echo.Context) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	h := Authenticate(testSecret, sessions, users)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = h(c)
	return rec, c
}

func TestAuthenticatePasses(t *testing.T) {
	req, sessions, users := authFixture(t)
	rec, c := runGate(req, sessions, users)

	assert.Equal(t, http.StatusOK, rec.Code)
	u, ok := CurrentUser(c)
	require.True(t, ok)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, uint64(1), c.Get("user_id"))
	assert.Equal(t, model.RoleUser, c.Get("role"))
}

func TestAuthenticateMissingAccessCookie(t *testing.T) {
	_, sessions, users := authFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec, _ := runGate(req, sessions, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateBadToken(t *testing.T) {
	req, sessions, users := authFixture(t)
	req.Header.Del("Cookie")
	req.AddCookie(&http.Cookie{Name: session.CookieAccess, Value: "garbage"})
	req.AddCookie(&http.Cookie{Name: session.CookieSession, Value: "10"})
	rec, _ := runGate(req, sessions, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateUnknownSession(t *testing.T) {
	req, _, users := authFixture(t)
	rec, _ := runGate(req, fakeSessions{sessions: map[uint64]model.Session{}}, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAccessHashMismatch(t *testing.T) {
	req, sessions, users := authFixture(t)
	s := sessions.sessions[10]
	s.AccessHash = utils.HashToken("some other token")
	sessions.sessions[10] = s
	rec, _ := runGate(req, sessions, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateSessionUserMismatch(t *testing.T) {
	req, sessions, users := authFixture(t)
	s := sessions.sessions[10]
	s.UserID = 99
	sessions.sessions[10] = s
	rec, _ := runGate(req, sessions, users)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateCookieOnlyInRawHeader(t *testing.T) {
	access, err := utils.NewAccessToken(testSecret, 1, model.RoleUser, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie",
		session.CookieAccess+"="+access.Token+"; "+session.CookieSession+"=10")

	sessions := fakeSessions{sessions: map[uint64]model.Session{
		10: {ID: 10, UserID: 1, AccessHash: utils.HashToken(access.Token)},
	}}
	users := fakeUsers{users: map[uint64]model.User{1: {ID: 1, Role: model.RoleUser}}}

	rec, _ := runGate(req, sessions, users)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	handler := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name string
		role any
		want int
	}{
		{"admin allowed", model.RoleAdmin, http.StatusOK},
		{"user rejected", model.RoleUser, http.StatusForbidden},
		{"missing role rejected", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+strconv.Itoa(1), nil)
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)
			if tt.role != nil {
				c.Set("role", tt.role)
			}
			_ = RequireRole(model.RoleAdmin)(handler)(c)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
