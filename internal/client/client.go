// Package client is the HTTP client for the remote order/report
// store.  It implements the interfaces the session and sync engine
// consume, translating them onto the server's /v1 routes.  Dish names
// are path-escaped because the menu is Vietnamese and names carry
// spaces and diacritics.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hviet/smile-pos/internal/model"
	"github.com/hviet/smile-pos/internal/syncer"
)

// Client talks to one order-store server.
type Client struct {
	base string
	http *http.Client
}

// New returns a Client for the given base URL, e.g.
// "http://localhost:8080".  A trailing slash is tolerated.
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// ListOrders fetches the full order snapshot, used once at startup to
// hydrate table state.
func (c *Client) ListOrders(ctx context.Context) ([]model.OrderRecord, error) {
	var out []model.OrderRecord
	if err := c.do(ctx, http.MethodGet, "/v1/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOrdersByTable fetches the rows of a single table.
func (c *Client) ListOrdersByTable(ctx context.Context, tableID int) ([]model.OrderRecord, error) {
	var out []model.OrderRecord
	p := "/v1/orders/table/" + strconv.Itoa(tableID)
	if err := c.do(ctx, http.MethodGet, p, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpsertOrder creates or updates one table's dish row.  The server
// keeps the stored note when the sent note is empty.
func (c *Client) UpsertOrder(ctx context.Context, tableID int, dishName string, quantity int, note string) error {
	p := "/v1/orders/table/" + strconv.Itoa(tableID) + "/item"
	body := map[string]any{"dish_name": dishName, "quantity": quantity, "note": note}
	return c.do(ctx, http.MethodPost, p, body, nil)
}

// UpdateQuantity sets a row's quantity; the server creates the row if
// it does not exist yet.
func (c *Client) UpdateQuantity(ctx context.Context, tableID int, dishName string, quantity int) error {
	p := dishPath(tableID, dishName)
	return c.do(ctx, http.MethodPut, p, map[string]any{"quantity": quantity}, nil)
}

// UpdateNote sets a row's note.
func (c *Client) UpdateNote(ctx context.Context, tableID int, dishName, note string) error {
	p := dishPath(tableID, dishName) + "/note"
	return c.do(ctx, http.MethodPut, p, map[string]any{"note": note}, nil)
}

// DeleteOrder deletes one table's dish row.  A missing row surfaces as
// syncer.ErrNotFound so the engine can treat it as an already-done
// removal.
func (c *Client) DeleteOrder(ctx context.Context, tableID int, dishName string) error {
	return c.do(ctx, http.MethodDelete, dishPath(tableID, dishName), nil, nil)
}

// DeleteOrdersByTable deletes every row of one table.
func (c *Client) DeleteOrdersByTable(ctx context.Context, tableID int) error {
	return c.do(ctx, http.MethodDelete, "/v1/orders/by-table/"+strconv.Itoa(tableID), nil, nil)
}

// DeleteAllOrders wipes the order table.
func (c *Client) DeleteAllOrders(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/orders", nil, nil)
}

// RecordSales writes a settled bill's report rows in one batch.
func (c *Client) RecordSales(ctx context.Context, rows []model.Report) error {
	return c.do(ctx, http.MethodPost, "/v1/reports/batch", map[string]any{"reports": rows}, nil)
}

// ListReports fetches all report rows, newest first.
func (c *Client) ListReports(ctx context.Context) ([]model.Report, error) {
	var out []model.Report
	if err := c.do(ctx, http.MethodGet, "/v1/reports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteAllReports wipes the report table.
func (c *Client) DeleteAllReports(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/reports", nil, nil)
}

func dishPath(tableID int, dishName string) string {
	return "/v1/orders/table/" + strconv.Itoa(tableID) + "/dish/" + url.PathEscape(dishName)
}

// do performs one JSON round trip.  Non-2xx responses become errors;
// 404 wraps syncer.ErrNotFound.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, syncer.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
