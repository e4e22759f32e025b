package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/validation"
)

// FeedbacksHandler serves and accepts product feedback.
type FeedbacksHandler struct {
	Feedbacks *repository.FeedbackRepo
}

func NewFeedbacksHandler(feedbacks *repository.FeedbackRepo) *FeedbacksHandler {
	return &FeedbacksHandler{Feedbacks: feedbacks}
}

type feedbacksQuery struct {
	Page    int    `query:"page" validate:"omitempty,min=1"`
	PerPage int    `query:"perPage" validate:"omitempty,min=6,max=20"`
	GoodID  string `query:"goodId" validate:"omitempty,number"`
}

type createFeedbackReq struct {
	Author      string  `json:"author" validate:"required,min=2,max=53"`
	Description string  `json:"description" validate:"required,max=500"`
	Rate        float64 `json:"rate" validate:"required,half_rate"`
	GoodID      uint64  `json:"goodId" validate:"required"`
}

// GetAllFeedbacks lists one page of feedbacks, optionally for a single good.
func (h *FeedbacksHandler) GetAllFeedbacks(c echo.Context) error {
	var q feedbacksQuery
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
		q.PerPage = 6
	}
	var goodID uint64
	if q.GoodID != "" {
		goodID, _ = strconv.ParseUint(q.GoodID, 10, 64)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	feedbacks, total, err := h.Feedbacks.List(ctx, goodID, q.Page, q.PerPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	totalPages := (total + int64(q.PerPage) - 1) / int64(q.PerPage)
	return c.JSON(http.StatusOK, echo.Map{
		"page":           q.Page,
		"perPage":        q.PerPage,
		"totalFeedbacks": total,
		"totalPages":     totalPages,
		"feedbacks":      feedbacks,
	})
}

// CreateFeedback stores a new feedback stamped with today's date.
func (h *FeedbacksHandler) CreateFeedback(c echo.Context) error {
	var req createFeedbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Feedbacks.Create(ctx, model.Feedback{
		Author:      req.Author,
		Date:        time.Now().UTC().Format("2006-01-02"),
		Description: req.Description,
		Rate:        req.Rate,
		Good:        model.FeedbackGood{ID: req.GoodID},
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Good not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create feedback failed"})
	}
	return c.JSON(http.StatusCreated, f)
}
