package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hviet/smile-pos/internal/model"
)

// OrderRepo provides CRUD operations over the order_list table, the
// live order book of the restaurant.  One row per (table, dish); the
// pair is a unique key so the create call can upsert.  All timestamp
// columns are stored in UTC.
//
// Schema:
//
//	CREATE TABLE order_list (
//	  id         BIGINT AUTO_INCREMENT PRIMARY KEY,
//	  table_id   INT          NOT NULL,
//	  dish_name  VARCHAR(255) NOT NULL,
//	  quantity   INT          NOT NULL,
//	  note       TEXT         NOT NULL,
//	  created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	  updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
//	             ON UPDATE CURRENT_TIMESTAMP,
//	  UNIQUE KEY uq_table_dish (table_id, dish_name)
//	)
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, table_id, dish_name, quantity, note, created_at, updated_at`

// ListAll returns every order row, sorted by dish name the way the
// original listing did.
func (r *OrderRepo) ListAll(ctx context.Context) ([]model.OrderRecord, error) {
	const q = `SELECT ` + orderColumns + ` FROM order_list ORDER BY dish_name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// ListByTable returns the rows of one table.
func (r *OrderRepo) ListByTable(ctx context.Context, tableID int) ([]model.OrderRecord, error) {
	const q = `SELECT ` + orderColumns + ` FROM order_list WHERE table_id = ? ORDER BY dish_name`
	rows, err := r.db.QueryContext(ctx, q, tableID)
	if err != nil {
		return nil, fmt.Errorf("list orders for table %d: %w", tableID, err)
	}
	defer rows.Close()
	return scanOrders(rows)
}

// Upsert creates the (table, dish) row or updates it in place.
// Quantity is always overwritten with the incoming absolute value; the
// stored note is only overwritten when the incoming note is non-empty,
// so a quantity-only sync cannot wipe a note that was set earlier.
func (r *OrderRepo) Upsert(ctx context.Context, tableID int, dishName string, quantity int, note string) (model.OrderRecord, error) {
	const q = `INSERT INTO order_list (table_id, dish_name, quantity, note)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			quantity = VALUES(quantity),
			note = IF(VALUES(note) <> '', VALUES(note), note)`
	if _, err := r.db.ExecContext(ctx, q, tableID, dishName, quantity, note); err != nil {
		return model.OrderRecord{}, fmt.Errorf("upsert order: %w", err)
	}
	return r.get(ctx, tableID, dishName)
}

// UpdateQuantity sets the row's quantity.  A missing row is created
// instead of failing: the client may sync a quantity edit for a dish
// the server never saw, and losing that edit would desync the table.
// The returned flag reports whether a new row was created.
func (r *OrderRepo) UpdateQuantity(ctx context.Context, tableID int, dishName string, quantity int) (model.OrderRecord, bool, error) {
	const q = `UPDATE order_list SET quantity = ? WHERE table_id = ? AND dish_name = ?`
	res, err := r.db.ExecContext(ctx, q, quantity, tableID, dishName)
	if err != nil {
		return model.OrderRecord{}, false, fmt.Errorf("update quantity: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return model.OrderRecord{}, false, err
	}
	if affected == 0 {
		// The row may also exist with the same quantity already; an
		// insert attempt disambiguates via the unique key.
		const ins = `INSERT IGNORE INTO order_list (table_id, dish_name, quantity, note) VALUES (?, ?, ?, '')`
		insRes, err := r.db.ExecContext(ctx, ins, tableID, dishName, quantity)
		if err != nil {
			return model.OrderRecord{}, false, fmt.Errorf("create on quantity update: %w", err)
		}
		inserted, _ := insRes.RowsAffected()
		rec, err := r.get(ctx, tableID, dishName)
		return rec, inserted > 0, err
	}
	rec, err := r.get(ctx, tableID, dishName)
	return rec, false, err
}

// UpdateNote sets the row's note.  Unlike quantity updates, a note on
// a missing row is an error: there is nothing sensible to create.
func (r *OrderRepo) UpdateNote(ctx context.Context, tableID int, dishName, note string) (model.OrderRecord, error) {
	const q = `UPDATE order_list SET note = ? WHERE table_id = ? AND dish_name = ?`
	res, err := r.db.ExecContext(ctx, q, note, tableID, dishName)
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("update note: %w", err)
	}
	if _, err := res.RowsAffected(); err != nil {
		return model.OrderRecord{}, err
	}
	// Zero rows touched can also mean the note was unchanged; the
	// lookup settles whether the row exists and returns it either way.
	return r.get(ctx, tableID, dishName)
}

// DeleteByTableAndDish removes one row.  A missing row returns
// ErrOrderNotFound.
func (r *OrderRepo) DeleteByTableAndDish(ctx context.Context, tableID int, dishName string) error {
	const q = `DELETE FROM order_list WHERE table_id = ? AND dish_name = ?`
	res, err := r.db.ExecContext(ctx, q, tableID, dishName)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DeleteByTable removes every row of one table and reports how many
// rows went away.
func (r *OrderRepo) DeleteByTable(ctx context.Context, tableID int) (int64, error) {
	const q = `DELETE FROM order_list WHERE table_id = ?`
	res, err := r.db.ExecContext(ctx, q, tableID)
	if err != nil {
		return 0, fmt.Errorf("delete orders for table %d: %w", tableID, err)
	}
	return res.RowsAffected()
}

// DeleteAll truncates the order book.
func (r *OrderRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_list`); err != nil {
		return fmt.Errorf("delete all orders: %w", err)
	}
	return nil
}

// get queries one row back after a write so callers always see fully
// populated records including the generated timestamps.
func (r *OrderRepo) get(ctx context.Context, tableID int, dishName string) (model.OrderRecord, error) {
	const q = `SELECT ` + orderColumns + ` FROM order_list WHERE table_id = ? AND dish_name = ?`
	var rec model.OrderRecord
	err := r.db.QueryRowContext(ctx, q, tableID, dishName).Scan(
		&rec.ID, &rec.TableID, &rec.DishName, &rec.Quantity, &rec.Note,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return model.OrderRecord{}, ErrOrderNotFound
	}
	if err != nil {
		return model.OrderRecord{}, fmt.Errorf("get order: %w", err)
	}
	return rec, nil
}

func scanOrders(rows *sql.Rows) ([]model.OrderRecord, error) {
	out := make([]model.OrderRecord, 0, 16)
	for rows.Next() {
		var rec model.OrderRecord
		if err := rows.Scan(
			&rec.ID, &rec.TableID, &rec.DishName, &rec.Quantity, &rec.Note,
			&rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
