package queue

// SalesRecordedEvent is published after a settled bill's report rows
// are persisted.  It carries the whole-bill figures plus one line per
// dish so consumers do not need to read the database back.
type SalesRecordedEvent struct {
	TableID    int         `json:"table_id"`
	Date       string      `json:"date"`
	Hour       string      `json:"hour"`
	Total      float64     `json:"total"`
	ShipFee    float64     `json:"ship_fee"`
	Discount   float64     `json:"discount"`
	Items      []SaleItem  `json:"items"`
	RecordedAt string      `json:"recorded_at"` // RFC3339, server clock
}

// SaleItem is one dish line of a settled bill.
type SaleItem struct {
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}
