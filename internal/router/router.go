// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/clothica/backend/internal/config"
	"github.com/clothica/backend/internal/handler"
	"github.com/clothica/backend/internal/middleware"
	"github.com/clothica/backend/internal/model"
	"github.com/clothica/backend/internal/repository"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg        config.Config
	DB         *sql.DB
	Redis      *redis.Client
	Auth       *handler.AuthHandler
	Goods      *handler.GoodsHandler
	Categories *handler.CategoriesHandler
	Feedbacks  *handler.FeedbacksHandler
	Orders     *handler.OrdersHandler
	Users      *handler.UsersHandler
	Sessions   *repository.SessionRepo
	UserRepo   *repository.UserRepo
}

// Register sets up every route under /api plus the health check and static
// uploads.
func Register(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	if d.Cfg.FrontendOrigin != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{d.Cfg.FrontendOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
			AllowCredentials: true,
		}))
	}

	e.GET("/healthz", handler.Health(d.DB))
	e.Static("/uploads", d.Cfg.UploadDir)

	api := e.Group("/api")
	authGate := middleware.Authenticate(d.Cfg.JWTSecret, d.Sessions, d.UserRepo)

	registerAuth(api, d, authGate)
	registerCatalog(api, d)
	registerOrders(api, d, authGate)
	registerUsers(api, d, authGate)
}

// registerAuth mounts the session lifecycle and the newsletter subscription.
// The whole group is rate limited; credentials endpoints are the main abuse
// target.
func registerAuth(api *echo.Group, d Deps, authGate echo.MiddlewareFunc) {
	g := api.Group("/auth", middleware.RateLimit(d.Redis, d.Cfg.AuthRateLimit, time.Minute))
	g.POST("/register", d.Auth.Register)
	g.POST("/login", d.Auth.Login)
	g.GET("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
	g.GET("/me", d.Auth.Me, authGate)

	api.POST("/subscriptions", d.Auth.Subscribe)
}

// registerCatalog mounts the public browse endpoints. All of them are GET and
// sit behind the Redis response cache.
func registerCatalog(api *echo.Group, d Deps) {
	cache := middleware.CacheJSON(d.Redis, d.Cfg.CacheTTL)

	api.GET("/goods", d.Goods.GetAllGoods, cache)
	api.GET("/goods/:goodId", d.Goods.GetGoodByID, cache)
	api.GET("/categories", d.Categories.GetAllCategories, cache)
	api.GET("/categories/:categoryId", d.Categories.GetCategoryByID, cache)
	api.GET("/feedbacks", d.Feedbacks.GetAllFeedbacks, cache)
	api.POST("/feedbacks", d.Feedbacks.CreateFeedback)
}

// registerOrders mounts checkout and order tracking. Guest checkout stays
// open; listing and the authed variant require a session; status changes are
// admin only.
func registerOrders(api *echo.Group, d Deps, authGate echo.MiddlewareFunc) {
	api.POST("/orders", d.Orders.CreateOrder)
	api.POST("/orders/user", d.Orders.CreateUserOrder, authGate)
	api.GET("/orders", d.Orders.GetUserOrders, authGate)
	api.PATCH("/orders/:orderId", d.Orders.PatchOrder, authGate, middleware.RequireRole(model.RoleAdmin))
}

// registerUsers mounts profile self-service.
func registerUsers(api *echo.Group, d Deps, authGate echo.MiddlewareFunc) {
	g := api.Group("/users", authGate)
	g.PATCH("/me", d.Users.UpdateUserData)
	g.PATCH("/me/avatar", d.Users.UpdateUserAvatar)
}
