package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/validation"
)

// CategoriesHandler serves the read-only category listing.
type CategoriesHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoriesHandler(categories *repository.CategoryRepo) *CategoriesHandler {
	return &CategoriesHandler{Categories: categories}
}

type categoriesQuery struct {
	Page    int `query:"page" validate:"omitempty,min=1"`
	PerPage int `query:"perPage" validate:"omitempty,min=4,max=20"`
}

// GetAllCategories lists one page of categories.
func (h *CategoriesHandler) GetAllCategories(c echo.Context) error {
	var q categoriesQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
	}
	if err := validation.Struct(q); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = 4
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	categories, total, err := h.Categories.List(ctx, q.Page, q.PerPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := (total + int64(q.PerPage) - 1) / int64(q.PerPage)
	return c.JSON(http.StatusOK, echo.Map{
		"page":            q.Page,
		"perPage":         q.PerPage,
		"totalCategories": total,
		"totalPages":      totalPages,
		"categories":      categories,
	})
}

// GetCategoryByID returns one category.
func (h *CategoriesHandler) GetCategoryByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("categoryId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	cat, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, cat)
}
