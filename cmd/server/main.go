package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/clothica/backend/internal/config"
	"github.com/clothica/backend/internal/database"
	"github.com/clothica/backend/internal/handler"
	"github.com/clothica/backend/internal/queue"
	"github.com/clothica/backend/internal/repository"
	"github.com/clothica/backend/internal/router"
	"github.com/clothica/backend/internal/session"
	"github.com/clothica/backend/internal/storage"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db, "migrations"); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}

	objects, err := storage.NewDiskStorage(cfg.UploadDir, "/uploads")
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	goods := repository.NewGoodRepo(db)
	categories := repository.NewCategoryRepo(db)
	feedbacks := repository.NewFeedbackRepo(db)
	orders := repository.NewOrderRepo(db)
	subs := repository.NewSubscriptionRepo(db)

	manager := session.NewManager(sessions, users, cfg.JWTSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)

	go queue.StartOrderConsumer()

	e := echo.New()
	e.HideBanner = true

	router.Register(e, router.Deps{
		Cfg:        cfg,
		DB:         db,
		Redis:      rdb,
		Auth:       handler.NewAuthHandler(cfg, users, manager, subs),
		Goods:      handler.NewGoodsHandler(goods),
		Categories: handler.NewCategoriesHandler(categories),
		Feedbacks:  handler.NewFeedbacksHandler(feedbacks),
		Orders:     handler.NewOrdersHandler(orders, goods),
		Users:      handler.NewUsersHandler(users, objects),
		Sessions:   sessions,
		UserRepo:   users,
	})

	log.Fatal(e.Start(":" + cfg.Port))
}
