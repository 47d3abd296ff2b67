// Package middleware holds the echo middleware of the order-store
// server.  The only middleware left is the Redis response cache; the
// API is an internal service for the restaurant's own terminals, so
// there is no auth layer in front of it.
package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hviet/smile-pos/internal/config"
)

// Buckets group cached routes by the table they read from, so a write
// can drop exactly the listings it staled and nothing else.
const (
	BucketOrders  = "orders"
	BucketReports = "reports"
)

// Cache is a read-through response cache for GET listings.  Entries
// are keyed by route and query under a per-bucket version number;
// invalidation bumps the version, which orphans every entry of the
// bucket at once and lets Redis expire them by TTL.  That keeps
// invalidation a single INCR instead of a key scan.
type Cache struct {
	cfg config.CacheConfig
	rdb *redis.Client
}

// NewCache returns a Cache, or nil when caching is disabled or no
// Redis client is available.  Callers treat a nil *Cache as "no
// caching" throughout.
func NewCache(cfg config.CacheConfig, rdb *redis.Client) *Cache {
	if !cfg.Enabled || rdb == nil {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &Cache{cfg: cfg, rdb: rdb}
}

// cachedResponse is the stored envelope.  Body is base64 on the wire,
// which is fine for the small JSON listings this cache holds.
type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Middleware caches successful GET responses of the given bucket.
// Nil receivers pass requests straight through so route registration
// does not need to special-case a missing cache.
func (ca *Cache) Middleware(bucket string) echo.MiddlewareFunc {
	if ca == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}
			ctx := c.Request().Context()
			key := ca.key(ctx, bucket, c)

			if raw, err := ca.rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil && cached.Status != 0 {
					c.Response().Header().Set("X-Cache", "HIT")
					return c.Blob(cached.Status, cached.ContentType, cached.Body)
				}
			}

			// Miss: run the handler with a capturing writer.
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")
			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && cw.buf.Len() <= ca.cfg.MaxBodyBytes {
				payload, err := json.Marshal(cachedResponse{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        cw.buf.Bytes(),
				})
				if err == nil {
					_ = ca.rdb.SetEx(context.Background(), key, payload, ca.cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

// Invalidate bumps the bucket's version so every cached listing of
// that bucket misses from now on.  Safe on a nil receiver.
func (ca *Cache) Invalidate(ctx context.Context, bucket string) {
	if ca == nil {
		return
	}
	_ = ca.rdb.Incr(ctx, ca.versionKey(bucket)).Err()
}

// key builds prefix:bucket:v<version>:<sha1 of path+query>.  The
// concrete request path goes into the hash, not the route pattern, so
// every table's listing caches separately.
func (ca *Cache) key(ctx context.Context, bucket string, c echo.Context) string {
	version := int64(0)
	if v, err := ca.rdb.Get(ctx, ca.versionKey(bucket)).Result(); err == nil {
		version, _ = strconv.ParseInt(v, 10, 64)
	}
	sum := sha1.Sum([]byte(c.Request().URL.Path + "?" + c.Request().URL.RawQuery))
	return fmt.Sprintf("%s:%s:v%d:%x", ca.cfg.Prefix, bucket, version, sum[:])
}

func (ca *Cache) versionKey(bucket string) string {
	return ca.cfg.Prefix + ":" + bucket + ":ver"
}

// captureWriter duplicates the response body into a buffer while
// forwarding it to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	cw.buf.Write(b)
	return cw.ResponseWriter.Write(b)
}
