package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothica/backend/internal/config"
	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/session"
)

// ----- fakes -----

type fakeUserStore struct {
	nextID uint64
	byID   map[uint64]model.User
	phones map[string]uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byID: map[uint64]model.User{}, phones: map[string]uint64{}}
}

func (f *fakeUserStore) Create(_ context.Context, firstName, phone, passwordHash string) (uint64, error) {
	if _, ok := f.phones[phone]; ok {
		return 0, repository.ErrPhoneExists
	}
	f.nextID++
	f.byID[f.nextID] = model.User{
		ID: f.nextID, FirstName: firstName, Phone: phone,
		PasswordHash: passwordHash, Role: model.RoleUser,
	}
	f.phones[phone] = f.nextID
	return f.nextID, nil
}

func (f *fakeUserStore) GetByPhone(_ context.Context, phone string) (model.User, error) {
	id, ok := f.phones[phone]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return f.byID[id], nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeSessionStore struct {
	nextID   uint64
	sessions map[uint64]model.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[uint64]model.Session{}}
}

func (f *fakeSessionStore) Create(_ context.Context, s model.Session) (model.Session, error) {
	f.nextID++
	s.ID = f.nextID
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionStore) GetByRefreshHash(_ context.Context, hash string) (model.Session, error) {
	for _, s := range f.sessions {
		if s.RefreshHash == hash {
			return s, nil
		}
	}
	return model.Session{}, repository.ErrSessionNotFound
}

func (f *fakeSessionStore) ClaimByID(_ context.Context, id uint64) (bool, error) {
	if _, ok := f.sessions[id]; !ok {
		return false, nil
	}
	delete(f.sessions, id)
	return true, nil
}

func (f *fakeSessionStore) DeleteByID(_ context.Context, id uint64) error {
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) DeleteByRefreshHash(_ context.Context, hash string) error {
	for id, s := range f.sessions {
		if s.RefreshHash == hash {
			delete(f.sessions, id)
		}
	}
	return nil
}

func (f *fakeSessionStore) DeleteByUserID(_ context.Context, userID uint64) error {
	for id, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, id)
		}
	}
	return nil
}

type fakeSubs struct{ emails map[string]bool }

func (f *fakeSubs) Create(_ context.Context, email string) error {
	if f.emails[email] {
		return repository.ErrEmailExists
	}
	f.emails[email] = true
	return nil
}

// ----- fixture -----

type authFixture struct {
	handler  *AuthHandler
	users    *fakeUserStore
	sessions *fakeSessionStore
}

func newAuthFixture() authFixture {
	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	manager := session.NewManager(sessions, users, "test-secret", 15, 30)
	cfg := config.Config{JWTSecret: "test-secret", BcryptCost: 4}
	h := NewAuthHandler(cfg, users, manager, &fakeSubs{emails: map[string]bool{}})
	return authFixture{handler: h, users: users, sessions: sessions}
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, h(c))
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

const registerBody = `{"firstName":"Olha","phone":"+380501234567","password":"correct horse"}`

// ----- tests -----

func TestRegisterSetsCookiesAndStripsPassword(t *testing.T) {
	fx := newAuthFixture()

	rec := doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	names := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		names[ck.Name] = true
	}
	assert.True(t, names[session.CookieAccess])
	assert.True(t, names[session.CookieRefresh])
	assert.True(t, names[session.CookieSession])

	assert.NotContains(t, rec.Body.String(), "password")
	var u model.PublicUser
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, "Olha", u.FirstName)
	assert.Equal(t, model.RoleUser, u.Role)
}

func TestRegisterDuplicatePhone(t *testing.T) {
	fx := newAuthFixture()

	rec := doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Phone in use", errorMessage(t, rec))
}

func TestRegisterRejectsBadPhone(t *testing.T) {
	fx := newAuthFixture()
	rec := doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register",
		`{"firstName":"Olha","phone":"0501234567","password":"correct horse"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	fx := newAuthFixture()
	doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)

	rec := doJSON(t, fx.handler.Login, http.MethodPost, "/api/auth/login",
		`{"phone":"+380501234567","password":"wrong password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))
}

func TestLoginUnknownPhoneSameError(t *testing.T) {
	fx := newAuthFixture()
	rec := doJSON(t, fx.handler.Login, http.MethodPost, "/api/auth/login",
		`{"phone":"+380509999999","password":"whatever pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", errorMessage(t, rec))
}

func TestLoginReplacesSession(t *testing.T) {
	fx := newAuthFixture()
	doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)
	require.Len(t, fx.sessions.sessions, 1)

	rec := doJSON(t, fx.handler.Login, http.MethodPost, "/api/auth/login",
		`{"phone":"+380501234567","password":"correct horse"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, fx.sessions.sessions, 1)
}

func TestRefreshRotatesToken(t *testing.T) {
	fx := newAuthFixture()
	reg := doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)

	var refresh *http.Cookie
	for _, ck := range reg.Result().Cookies() {
		if ck.Name == session.CookieRefresh {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)

	rec := doJSON(t, fx.handler.Refresh, http.MethodGet, "/api/auth/refresh", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code)

	// the spent token must be rejected on replay
	rec = doJSON(t, fx.handler.Refresh, http.MethodGet, "/api/auth/refresh", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Session not found", errorMessage(t, rec))
}

func TestRefreshWithoutCookie(t *testing.T) {
	fx := newAuthFixture()
	rec := doJSON(t, fx.handler.Refresh, http.MethodGet, "/api/auth/refresh", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutIsIdempotentAndClearsCookies(t *testing.T) {
	fx := newAuthFixture()
	reg := doJSON(t, fx.handler.Register, http.MethodPost, "/api/auth/register", registerBody)
	cookies := reg.Result().Cookies()

	rec := doJSON(t, fx.handler.Logout, http.MethodPost, "/api/auth/logout", "", cookies...)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, fx.sessions.sessions)
	assert.Len(t, rec.Result().Cookies(), 3)

	// same cookies again, same outcome
	rec = doJSON(t, fx.handler.Logout, http.MethodPost, "/api/auth/logout", "", cookies...)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// and with no cookies at all
	rec = doJSON(t, fx.handler.Logout, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubscribeDuplicateEmail(t *testing.T) {
	fx := newAuthFixture()
	body := `{"email":"olha@example.com"}`

	rec := doJSON(t, fx.handler.Subscribe, http.MethodPost, "/api/subscriptions", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, fx.handler.Subscribe, http.MethodPost, "/api/subscriptions", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email in use", errorMessage(t, rec))
}
