package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// snapshotKey is where ad-hoc state dumps live in Redis.  The old
// deployment used this as a scratch pad for manual inspection and
// recovery; the endpoints are kept for operational parity.
const snapshotKey = "pos:snapshot"

// SnapshotHandler exposes the Redis snapshot endpoints.  It is only
// registered when a Redis client could be constructed at startup.
type SnapshotHandler struct {
	RDB *redis.Client
}

// NewSnapshotHandler wires a SnapshotHandler.
func NewSnapshotHandler(rdb *redis.Client) *SnapshotHandler { return &SnapshotHandler{RDB: rdb} }

// Check handles GET /v1/snapshot/check and reports the database size.
func (h *SnapshotHandler) Check(c echo.Context) error {
	size, err := h.RDB.DBSize(c.Request().Context()).Result()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "redis error"})
	}
	return c.JSON(http.StatusOK, map[string]int64{"size": size})
}

// GetData handles GET /v1/snapshot/data.  The stored value is JSON
// when it parses as such, otherwise it is returned verbatim.
func (h *SnapshotHandler) GetData(c echo.Context) error {
	data, err := h.RDB.Get(c.Request().Context(), snapshotKey).Result()
	if err == redis.Nil {
		return c.JSON(http.StatusOK, map[string]any{"data": nil, "message": "no data found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "redis error"})
	}
	var parsed any
	if json.Unmarshal([]byte(data), &parsed) == nil {
		return c.JSON(http.StatusOK, map[string]any{"data": parsed})
	}
	return c.JSON(http.StatusOK, map[string]any{"data": data})
}

// SetData handles POST /v1/snapshot/data and stores the posted JSON
// document under the snapshot key.
func (h *SnapshotHandler) SetData(c echo.Context) error {
	var body map[string]any
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "encode error"})
	}
	if err := h.RDB.Set(c.Request().Context(), snapshotKey, buf, 0).Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "redis error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "data saved"})
}

// ClearData handles DELETE /v1/snapshot/data and removes the snapshot
// key.  Unlike the old deployment this does not flush the whole
// database: the response cache lives in the same Redis and must
// survive a snapshot wipe.
func (h *SnapshotHandler) ClearData(c echo.Context) error {
	if err := h.RDB.Del(c.Request().Context(), snapshotKey).Err(); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "redis error"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "snapshot cleared"})
}
