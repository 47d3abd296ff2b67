package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/hviet/smile-pos/internal/config"
	"github.com/hviet/smile-pos/internal/database"
	"github.com/hviet/smile-pos/internal/handler"
	"github.com/hviet/smile-pos/internal/middleware"
	"github.com/hviet/smile-pos/internal/queue"
	"github.com/hviet/smile-pos/internal/repository"
	"github.com/hviet/smile-pos/internal/router"
	"github.com/hviet/smile-pos/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional; without it the server runs uncached and the
	// snapshot routes stay unmounted.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, response cache and snapshot routes disabled")
	}
	cache := middleware.NewCache(config.LoadCacheConfig(), rdb)

	// The sales consumer tails the broker for settled bills and keeps
	// logs/sales.log current.  It reconnects forever on its own.
	go func() {
		if err := queue.StartSalesConsumer(); err != nil {
			log.Printf("sales consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterOrders(e, handler.NewOrderHandler(repository.NewOrderRepo(db), cache), cache)
	router.RegisterReports(e, handler.NewReportHandler(repository.NewReportRepo(db), cache, service.NewSalesPublisher()), cache)
	if rdb != nil {
		router.RegisterSnapshot(e, handler.NewSnapshotHandler(rdb))
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
