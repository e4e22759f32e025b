package handler

import (
	"context"
	"crypto/rand"
	"errors"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/middleware"
	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/queue"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/service"
	"github.com/clothica/backend/internal/validation"
)

// OrdersHandler places orders and tracks their status.
type OrdersHandler struct {
	Orders *repository.OrderRepo
	Goods  *repository.GoodRepo
}

func NewOrdersHandler(orders *repository.OrderRepo, goods *repository.GoodRepo) *OrdersHandler {
	return &OrdersHandler{Orders: orders, Goods: goods}
}

type orderItemReq struct {
	GoodID uint64 `json:"id" validate:"required"`
	Amount uint32 `json:"amount" validate:"required,min=1"`
	Size   string `json:"size" validate:"required,oneof=XXS XS S M L XL XXL"`
	Color  string `json:"color" validate:"required,oneof=white black grey blue green red pastel"`
}

type recipientReq struct {
	FirstName    string `json:"firstName" validate:"required,min=2,max=32"`
	LastName     string `json:"lastName" validate:"required,min=2,max=32"`
	Phone        string `json:"phone" validate:"required,ua_phone"`
	City         string `json:"city" validate:"required,max=64"`
	PostalOffice uint32 `json:"postalOffice" validate:"required"`
}

type createOrderReq struct {
	Items     []orderItemReq `json:"products" validate:"required,min=1,dive"`
	Recipient recipientReq   `json:"userData" validate:"required"`
	Comment   string         `json:"comment" validate:"max=500"`
}

type patchOrderReq struct {
	Status string `json:"status" validate:"required,oneof=processing packing success declined"`
}

// CreateOrder places a guest order.
func (h *OrdersHandler) CreateOrder(c echo.Context) error {
	return h.create(c, 0)
}

// CreateUserOrder places an order on behalf of the authenticated user.
func (h *OrdersHandler) CreateUserOrder(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return h.create(c, userID)
}

// create is the shared checkout path. The total is always recomputed from the
// catalog's own prices; items whose good no longer exists price at zero but
// stay on the order so the operator sees what was requested.
func (h *OrdersHandler) create(c echo.Context, userID uint64) error {
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ids := make([]uint64, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.GoodID)
	}
	prices, err := h.Goods.UnitPrices(ctx, ids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.OrderItem{
			GoodID: item.GoodID,
			Amount: item.Amount,
			Size:   item.Size,
			Color:  item.Color,
		})
	}

	orderNum, err := randomOrderNum()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	o, err := h.Orders.Create(ctx, model.Order{
		OrderNum: orderNum,
		Items:    items,
		Sum:      orderSum(items, prices),
		UserID:   userID,
		Date:     time.Now().UTC().Format("2006-01-02"),
		Comment:  req.Comment,
		Recipient: model.Recipient{
			FirstName:    req.Recipient.FirstName,
			LastName:     req.Recipient.LastName,
			Phone:        req.Recipient.Phone,
			City:         req.Recipient.City,
			PostalOffice: req.Recipient.PostalOffice,
		},
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create order failed"})
	}

	// checkout never waits on the broker
	go func(ev queue.OrderEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.PublishOrderEvent(ctx, ev)
	}(orderEvent(queue.KindOrderCreated, o))

	return c.JSON(http.StatusCreated, o)
}

// GetUserOrders lists the authenticated user's orders, including guest orders
// placed with the same phone.
func (h *OrdersHandler) GetUserOrders(c echo.Context) error {
	userID, ok := c.Get("user_id").(uint64)
	if !ok || userID == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	u, _ := middleware.CurrentUser(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	orders, err := h.Orders.ListForUser(ctx, userID, u.Phone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, orders)
}

// PatchOrder moves an order to a new status. Admin only; the role gate sits
// in the router.
func (h *OrdersHandler) PatchOrder(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("orderId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req patchOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validation.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": validation.Message(err)})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Orders.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update order failed"})
	}

	go func(ev queue.OrderEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = service.PublishOrderEvent(ctx, ev)
	}(orderEvent(queue.KindOrderStatusChanged, o))

	return c.JSON(http.StatusOK, o)
}

// orderSum totals the order against the catalog's own prices. An item whose
// good id resolved to no price contributes zero; the ceiling keeps the total
// integral.
func orderSum(items []model.OrderItem, prices map[uint64]float64) uint64 {
	var sum float64
	for _, item := range items {
		sum += prices[item.GoodID] * float64(item.Amount)
	}
	return uint64(math.Ceil(sum))
}

// randomOrderNum draws the operator-facing number uniformly from
// [1111111, 9999999].
func randomOrderNum() (uint32, error) {
	const lo, hi = 1111111, 9999999
	n, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		return 0, err
	}
	return uint32(n.Int64() + lo), nil
}

func orderEvent(kind string, o model.Order) queue.OrderEvent {
	return queue.OrderEvent{
		Kind:      kind,
		OrderID:   o.ID,
		OrderNum:  o.OrderNum,
		UserID:    o.UserID,
		Sum:       o.Sum,
		Status:    o.Status,
		Phone:     o.Recipient.Phone,
		City:      o.Recipient.City,
		ItemCount: len(o.Items),
		At:        time.Now().UTC().Format(time.RFC3339),
	}
}
