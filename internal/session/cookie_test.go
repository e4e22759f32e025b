package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/utils"
)

func newEchoContext(req *http.Request) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec), rec
}

func TestReadCookieFromJar(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAccess, Value: "tok-123"})
	c, _ := newEchoContext(req)

	assert.Equal(t, "tok-123", ReadCookie(c, CookieAccess))
}

func TestReadCookieFallsBackToRawHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	// the comma makes the value invalid for the stdlib jar, which drops the
	// cookie entirely; the raw-header scan still finds it
	req.Header.Set("Cookie", "foo=bar; "+CookieRefresh+"=raw,456; baz=1")
	c, _ := newEchoContext(req)

	assert.Equal(t, "raw,456", ReadCookie(c, CookieRefresh))
	assert.Equal(t, "", ReadCookie(c, "missing"))
}

func TestIssueCookiesSetsAllThree(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c, rec := newEchoContext(req)

	g := Grant{
		Session: model.Session{ID: 9},
		Access:  utils.AccessToken{Token: "acc", Exp: time.Now().Add(15 * time.Minute)},
		Refresh: utils.RefreshToken{Raw: "ref", Exp: time.Now().Add(30 * 24 * time.Hour)},
	}
	IssueCookies(c, g)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	byName := map[string]*http.Cookie{}
	for _, ck := range cookies {
		byName[ck.Name] = ck
	}
	assert.Equal(t, "acc", byName[CookieAccess].Value)
	assert.Equal(t, "ref", byName[CookieRefresh].Value)
	assert.Equal(t, "9", byName[CookieSession].Value)
	for _, ck := range cookies {
		assert.True(t, ck.HttpOnly)
		assert.Equal(t, "/", ck.Path)
	}
}

func TestClearCookiesExpiresAllThree(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c, rec := newEchoContext(req)

	ClearCookies(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, ck := range cookies {
		assert.Empty(t, ck.Value)
		assert.True(t, ck.Expires.Before(time.Now()))
	}
}
