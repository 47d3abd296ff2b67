package model

import "time"

// OrderLine is one dish's position within a table's current order.
// There is at most one OrderLine per distinct dish on a table; the
// dish ID is the uniqueness key.  Quantity and note are mutated in
// place as the cashier edits the order.
type OrderLine struct {
	Dish     Dish   `json:"dish"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// Table is a billing unit: a physical table or one of the sales
// channels (Shopee, delivery, takeaway).  Tables are created once at
// startup and never destroyed; only their order list changes.
// IsOrdered is derived and must always equal len(Orders) > 0.
type Table struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Orders    []OrderLine `json:"orders"`
	IsOrdered bool        `json:"is_ordered"`
}

// OrderRecord mirrors one row of the remote store's order_list table.
// It is the wire shape returned by the orders API and consumed when
// hydrating table state at startup.  Dishes are keyed by name on the
// remote side, so only the name travels here.
type OrderRecord struct {
	ID        int64     `json:"id"`
	TableID   int       `json:"table_id"`
	DishName  string    `json:"dish_name"`
	Quantity  int       `json:"quantity"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
