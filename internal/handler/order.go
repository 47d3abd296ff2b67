package handler // handler package contains the HTTP handlers of the order-store API

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hviet/smile-pos/internal/middleware"
	"github.com/hviet/smile-pos/internal/repository"
)

// OrderHandler serves the live order book.  The POS client's sync
// engine is the only writer; reads come from terminals hydrating at
// startup.  Cache may be nil when Redis is unavailable; invalidation
// then degrades to a no-op.
type OrderHandler struct {
	Repo  *repository.OrderRepo
	Cache *middleware.Cache
}

// NewOrderHandler wires an OrderHandler.
func NewOrderHandler(repo *repository.OrderRepo, cache *middleware.Cache) *OrderHandler {
	return &OrderHandler{Repo: repo, Cache: cache}
}

// ListOrders handles GET /v1/orders and returns the full order book.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	records, err := h.Repo.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, records)
}

// ListOrdersByTable handles GET /v1/orders/table/:id.
func (h *OrderHandler) ListOrdersByTable(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id")) // parse the table ID from the URL
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	records, err := h.Repo.ListByTable(c.Request().Context(), tableID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "db error"})
	}
	return c.JSON(http.StatusOK, records)
}

// UpsertItem handles POST /v1/orders/table/:id/item.  It creates the
// (table, dish) row or overwrites its quantity, keeping the stored
// note when the incoming one is empty.  This is the idempotent call
// the sync engine leans on: replaying it converges on the same row.
func (h *OrderHandler) UpsertItem(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	var body struct { // anonymous struct to bind the incoming JSON
		DishName string `json:"dish_name"`
		Quantity int    `json:"quantity"`
		Note     string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.DishName)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dish_name is required"})
	}
	if body.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "quantity must be at least 1"})
	}
	rec, err := h.Repo.Upsert(c.Request().Context(), tableID, name, body.Quantity, body.Note)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not upsert order"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, rec)
}

// UpdateQuantity handles PUT /v1/orders/table/:id/dish/:name.  A row
// that does not exist yet is created rather than rejected.
func (h *OrderHandler) UpdateQuantity(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	name := dishParam(c)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dish name is required"})
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if body.Quantity < 1 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "quantity must be at least 1"})
	}
	rec, created, err := h.Repo.UpdateQuantity(c.Request().Context(), tableID, name, body.Quantity)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update quantity"})
	}
	h.invalidate(c)
	if created {
		return c.JSON(http.StatusCreated, rec)
	}
	return c.JSON(http.StatusOK, rec)
}

// UpdateNote handles PUT /v1/orders/table/:id/dish/:name/note.
func (h *OrderHandler) UpdateNote(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	name := dishParam(c)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dish name is required"})
	}
	var body struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	rec, err := h.Repo.UpdateNote(c.Request().Context(), tableID, name, body.Note)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not update note"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, rec)
}

// DeleteOrder handles DELETE /v1/orders/table/:id/dish/:name.  The
// 404 on a missing row is part of the client contract: the sync
// engine reads it as "already removed".
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	name := dishParam(c)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "dish name is required"})
	}
	if err := h.Repo.DeleteByTableAndDish(c.Request().Context(), tableID, name); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete order"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "order deleted"})
}

// DeleteOrdersByTable handles DELETE /v1/orders/by-table/:id and
// clears one table's rows, reporting how many were removed.
func (h *OrderHandler) DeleteOrdersByTable(c echo.Context) error {
	tableID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid table id"})
	}
	n, err := h.Repo.DeleteByTable(c.Request().Context(), tableID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete orders"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, map[string]any{"message": "orders deleted", "deleted": n})
}

// DeleteAllOrders handles DELETE /v1/orders.
func (h *OrderHandler) DeleteAllOrders(c echo.Context) error {
	if err := h.Repo.DeleteAll(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not delete orders"})
	}
	h.invalidate(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "all orders deleted"})
}

// invalidate drops the cached order listings after any write.
func (h *OrderHandler) invalidate(c echo.Context) {
	if h.Cache != nil {
		h.Cache.Invalidate(c.Request().Context(), middleware.BucketOrders)
	}
}

// dishParam extracts and unescapes the dish name path parameter.
// Names carry spaces and diacritics, so clients path-escape them.
func dishParam(c echo.Context) string {
	raw := c.Param("name")
	if name, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(raw)
}
