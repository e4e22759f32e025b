package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/config"
	"github.com/clothica/backend/internal/middleware"
	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/session"
	"github.com/clothica/backend/internal/utils"
	"github.com/clothica/backend/internal/validation"
)

// UserStore is the slice of the user repository the auth handler needs.
type UserStore interface {
	Create(ctx context.Context, firstName, phone, passwordHash string) (uint64, error)
	GetByPhone(ctx context.Context, phone string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// SubscriptionStore registers newsletter emails.
type SubscriptionStore interface {
	Create(ctx context.Context, email string) error
}

// AuthHandler bundles dependencies for registration, login, session refresh,
// logout and subscriptions.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions *session.Manager
	Subs     SubscriptionStore
}

func NewAuthHandler(cfg config.Config, users UserStore, sessions *session.Manager, subs SubscriptionStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Sessions: sessions, Subs: subs}
}

// ----- DTOs -----

type registerReq struct {
	FirstName string `json:"firstName" validate:"required,min=2,max=32"`
	Phone     string `json:"phone" validate:"required,ua_phone"`
	Password  string `json:"password" validate:"required,min=8,max=64"`
}
type loginReq struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type subscribeReq struct {
	Email string `json:"email" validate:"required,email"`
}

// Register creates a user, starts a session and sets the auth cookies.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	uid, err := h.Users.Create(ctx, req.FirstName, req.Phone, hash)
	if err != nil {
		if errors.Is(err, repository.ErrPhoneExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Phone in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	grant, err := h.Sessions.Create(ctx, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	session.IssueCookies(c, grant)
	return c.JSON(http.StatusCreated, u.Public())
}

// Login verifies credentials, replaces any previous session for the user and
// sets fresh cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	grant, err := h.Sessions.Login(ctx, u.ID, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create session failed"})
	}
	session.IssueCookies(c, grant)
	return c.JSON(http.StatusOK, u.Public())
}

// Refresh rotates the session referenced by the refreshToken cookie. The old
// refresh token is single-use: once rotated (or concurrently claimed) it is
// gone.
func (h *AuthHandler) Refresh(c echo.Context) error {
	raw := session.ReadCookie(c, session.CookieRefresh)
	if raw == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session not found"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	grant, err := h.Sessions.Rotate(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session not found"})
		case errors.Is(err, repository.ErrSessionExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Session token expired"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	session.IssueCookies(c, grant)
	return c.JSON(http.StatusOK, echo.Map{"message": "Session refreshed"})
}

// Logout deletes whatever session the cookies reference and clears all three
// auth cookies either way. Calling it without a live session still succeeds.
func (h *AuthHandler) Logout(c echo.Context) error {
	var sid uint64
	if v := session.ReadCookie(c, session.CookieSession); v != "" {
		sid, _ = strconv.ParseUint(v, 10, 64)
	}
	refresh := session.ReadCookie(c, session.CookieRefresh)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.Logout(ctx, sid, refresh); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	session.ClearCookies(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user attached by the auth gate.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, u)
}

// Subscribe registers an email for the newsletter. Duplicates are a 400, the
// same status the storefront uses for any conflicting unique field.
func (h *AuthHandler) Subscribe(c echo.Context) error {
	var req subscribeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Subs.Create(ctx, req.Email); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "subscribe failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully subscribed"})
}
