// Package handler contains the HTTP handlers behind /api. Each handler binds
// a request DTO, validates it, calls into repositories and renders JSON.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/validation"
)

// GoodsHandler serves the product catalog.
type GoodsHandler struct {
	Goods *repository.GoodRepo
}

func NewGoodsHandler(goods *repository.GoodRepo) *GoodsHandler {
	return &GoodsHandler{Goods: goods}
}

// goodsQuery is the catalog listing query string. Every field is optional;
// anything present must validate.
type goodsQuery struct {
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PerPage  int    `query:"perPage" validate:"omitempty,min=5,max=20"`
	Category string `query:"categoryId" validate:"omitempty,number"`
	Search   string `query:"search"`
	Gender   string `query:"gender" validate:"omitempty,oneof=men women unisex"`
	Price    string `query:"price" validate:"omitempty,price_range"`
	Color    string `query:"color" validate:"omitempty,oneof=white black grey blue green red pastel"`
	Sizes    string `query:"sizes" validate:"omitempty,size_csv"`
	Sort     string `query:"sort" validate:"omitempty,oneof=desc"`
}

// GetAllGoods lists one catalog page. Filters compose conjunctively; sort=desc
// ranks by rating, everything else comes back newest first.
func (h *GoodsHandler) GetAllGoods(c echo.Context) error {
	var q goodsQuery
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
		q.PerPage = 8
	}

	f := repository.GoodFilter{
		Search:       strings.TrimSpace(q.Search),
		Gender:       q.Gender,
		Color:        q.Color,
		Page:         q.Page,
		PerPage:      q.PerPage,
		SortByRating: q.Sort == "desc",
	}
	if q.Category != "" {
		f.CategoryID, _ = strconv.ParseUint(q.Category, 10, 64)
	}
	if q.Sizes != "" {
		f.Sizes = strings.Split(q.Sizes, ",")
	}
	if q.Price != "" {
		// validated as "<min>,<max>"
		lo, hi, _ := strings.Cut(q.Price, ",")
		f.PriceFrom, _ = strconv.ParseFloat(lo, 64)
		f.PriceTo, _ = strconv.ParseFloat(hi, 64)
		f.HasPrice = true
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	page, err := h.Goods.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":       q.Page,
		"perPage":    q.PerPage,
		"totalGoods": page.TotalGoods,
		"totalPages": page.TotalPages,
		"goods":      page.Goods,
	})
}

// GetGoodByID returns a single good with its full feedback list.
func (h *GoodsHandler) GetGoodByID(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("goodId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid good id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Goods.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Good not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, g)
}
