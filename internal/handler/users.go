package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/storage"
	"github.com/clothica/backend/internal/validation"
)

// maxAvatarBytes caps avatar uploads at 5 MiB.
const maxAvatarBytes = 5 << 20

// UsersHandler updates the authenticated user's profile and avatar.
type UsersHandler struct {
	Users   *repository.UserRepo
	Objects storage.ObjectStorage
}

func NewUsersHandler(users *repository.UserRepo, objects storage.ObjectStorage) *UsersHandler {
	return &UsersHandler{Users: users, Objects: objects}
}

type updateUserReq struct {
	FirstName    string `json:"firstName" validate:"required,min=2,max=32"`
	LastName     string `json:"lastName" validate:"omitempty,min=2,max=32"`
	Phone        string `json:"phone" validate:"required,ua_phone"`
	City         string `json:"city" validate:"max=64"`
	PostalOffice uint32 `json:"postalOffice"`
}

// UpdateUserData overwrites the caller's profile fields.
func (h *UsersHandler) UpdateUserData(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, userID, req.FirstName, req.LastName, req.Phone, req.City, req.PostalOffice)
	if err != nil {
		if errors.Is(err, repository.ErrPhoneExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Phone in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	return c.JSON(http.StatusOK, u.Public())
}

// UpdateUserAvatar replaces the caller's avatar. The new object is stored
// first and the old one removed only after the database points at the new
// URL, so a failure mid-way never leaves the profile without an image.
func (h *UsersHandler) UpdateUserAvatar(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file"})
	}
	if fh.Size > maxAvatarBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File too large"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No file"})
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxAvatarBytes+1))
	if err != nil || int64(len(data)) > maxAvatarBytes {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "File too large"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	prev, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	obj, err := h.Objects.Store(ctx, data, filepath.Ext(fh.Filename))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store file failed"})
	}
	u, err := h.Users.UpdateAvatar(ctx, userID, obj.URL, obj.RefID)
	if err != nil {
		// the record still points at the old avatar; drop the orphan
		_ = h.Objects.Delete(ctx, obj.RefID)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update user failed"})
	}
	if prev.AvatarID != "" {
		_ = h.Objects.Delete(ctx, prev.AvatarID)
	}
	return c.JSON(http.StatusOK, echo.Map{"url": u.Avatar})
}
