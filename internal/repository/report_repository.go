package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hviet/smile-pos/internal/model"
)

// ReportRepo stores settled sales.  Payment writes one row per dish
// of the bill; the whole-bill figures (total, ship fee, discount)
// repeat on every row of the batch.
//
// Schema:
//
//	CREATE TABLE report (
//	  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
//	  table_id     INT          NOT NULL,
//	  date         VARCHAR(50)  NOT NULL,
//	  hour         VARCHAR(50)  NOT NULL,
//	  product_code VARCHAR(50)  NOT NULL,
//	  product_name VARCHAR(255) NOT NULL,
//	  quantity     INT          NOT NULL,
//	  total        DOUBLE       NOT NULL,
//	  ship_fee     DOUBLE       NOT NULL DEFAULT 0,
//	  discount     DOUBLE       NOT NULL DEFAULT 0,
//	  created_at   DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
//	)
type ReportRepo struct {
	db *sql.DB
}

// NewReportRepo returns a new ReportRepo bound to the given database.
func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{db: db} }

const reportColumns = `id, table_id, date, hour, product_code, product_name, quantity, total, ship_fee, discount, created_at`

// ListAll returns all report rows, newest first.
func (r *ReportRepo) ListAll(ctx context.Context) ([]model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM report ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListByTable returns the rows settled on one table.
func (r *ReportRepo) ListByTable(ctx context.Context, tableID int) ([]model.Report, error) {
	const q = `SELECT ` + reportColumns + ` FROM report WHERE table_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, tableID)
	if err != nil {
		return nil, fmt.Errorf("list reports for table %d: %w", tableID, err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// Insert writes one report row and populates its generated ID.
func (r *ReportRepo) Insert(ctx context.Context, rep *model.Report) error {
	const q = `INSERT INTO report (table_id, date, hour, product_code, product_name, quantity, total, ship_fee, discount)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		rep.TableID, rep.Date, rep.Hour, rep.ProductCode, rep.ProductName,
		rep.Quantity, rep.Total, rep.ShipFee, rep.Discount,
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rep.ID = id
	return nil
}

// InsertBatch writes a settled bill's rows in a single statement
// inside one transaction, so a bill is reported entirely or not at
// all.  Passing an empty slice has no effect and returns nil.
func (r *ReportRepo) InsertBatch(ctx context.Context, reps []model.Report) error {
	if len(reps) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report batch: %w", err)
	}
	query := `INSERT INTO report (table_id, date, hour, product_code, product_name, quantity, total, ship_fee, discount) VALUES `
	args := make([]interface{}, 0, len(reps)*9)
	for i, rep := range reps {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			rep.TableID, rep.Date, rep.Hour, rep.ProductCode, rep.ProductName,
			rep.Quantity, rep.Total, rep.ShipFee, rep.Discount,
		)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert report batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report batch: %w", err)
	}
	return nil
}

// DeleteByID removes a single report row.
func (r *ReportRepo) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM report WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete report %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReportNotFound
	}
	return nil
}

// DeleteAll truncates the report table.
func (r *ReportRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM report`); err != nil {
		return fmt.Errorf("delete all reports: %w", err)
	}
	return nil
}

func scanReports(rows *sql.Rows) ([]model.Report, error) {
	out := make([]model.Report, 0, 16)
	for rows.Next() {
		var rep model.Report
		if err := rows.Scan(
			&rep.ID, &rep.TableID, &rep.Date, &rep.Hour, &rep.ProductCode,
			&rep.ProductName, &rep.Quantity, &rep.Total, &rep.ShipFee,
			&rep.Discount, &rep.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}
