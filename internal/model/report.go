package model

import "time"

// Report is one settled sale line, mirroring a row of the remote
// store's report table.  Payment writes one row per dish on the bill;
// Total, ShipFee and Discount repeat the whole-bill figures on every
// row so a single row is enough to reconstruct the bill footer.
//
// Fields:
//  TableID     - table or sales channel the bill was settled on.
//  Date        - settlement date, "2006-01-02".
//  Hour        - settlement time of day, "15:04:05".
//  ProductCode - catalog ID of the dish.
//  ProductName - catalog name of the dish.
//  Quantity    - quantity sold.
//  Total       - final bill total (shared by all rows of the bill).
//  ShipFee     - delivery fee applied to the bill.
//  Discount    - discount amount applied to the bill.
type Report struct {
	ID          int64     `json:"id,omitempty"`
	TableID     int       `json:"table_id"`
	Date        string    `json:"date"`
	Hour        string    `json:"hour"`
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Total       float64   `json:"total"`
	ShipFee     float64   `json:"ship_fee"`
	Discount    float64   `json:"discount"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
