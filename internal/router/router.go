// Package router defines how the order-store API's HTTP routes are
// registered.  All routes live under /v1; orders and reports carry
// the response cache on their GET listings, and the Redis snapshot
// routes are only mounted when a Redis client exists.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/hviet/smile-pos/internal/handler"
	"github.com/hviet/smile-pos/internal/middleware"
)

// RegisterRoutes registers the health check endpoint.  Load balancers
// and monitoring probe this to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterOrders mounts the order book routes.  The listing routes go
// through the orders cache bucket; every write invalidates it inside
// the handler.
func RegisterOrders(e *echo.Echo, h *handler.OrderHandler, cache *middleware.Cache) {
	g := e.Group("/v1/orders")
	// Full snapshot; the POS terminals hydrate from this at startup.
	g.GET("", h.ListOrders, cache.Middleware(middleware.BucketOrders))
	g.GET("/table/:id", h.ListOrdersByTable, cache.Middleware(middleware.BucketOrders))
	// Idempotent create-or-update; the sync engine's workhorse.
	g.POST("/table/:id/item", h.UpsertItem)
	g.PUT("/table/:id/dish/:name", h.UpdateQuantity)
	g.PUT("/table/:id/dish/:name/note", h.UpdateNote)
	g.DELETE("/table/:id/dish/:name", h.DeleteOrder)
	g.DELETE("/by-table/:id", h.DeleteOrdersByTable)
	g.DELETE("", h.DeleteAllOrders)
}

// RegisterReports mounts the sales report routes.
func RegisterReports(e *echo.Echo, h *handler.ReportHandler, cache *middleware.Cache) {
	g := e.Group("/v1/reports")
	g.GET("", h.ListReports, cache.Middleware(middleware.BucketReports))
	g.GET("/table/:id", h.ListReportsByTable, cache.Middleware(middleware.BucketReports))
	g.POST("", h.CreateReport)
	// One settled bill per batch; also emits the sales.recorded event.
	g.POST("/batch", h.CreateReportBatch)
	g.DELETE("/:id", h.DeleteReport)
	g.DELETE("", h.DeleteAllReports)
}

// RegisterSnapshot mounts the Redis snapshot routes.  Call only when
// a Redis client is available.
func RegisterSnapshot(e *echo.Echo, h *handler.SnapshotHandler) {
	g := e.Group("/v1/snapshot")
	g.GET("/check", h.Check)
	g.GET("/data", h.GetData)
	g.POST("/data", h.SetData)
	g.DELETE("/data", h.ClearData)
}
