package model

// Dish is one entry of the restaurant's menu catalog.  Dishes are
// immutable reference data: they are loaded once at startup and are
// never mutated at runtime.  The ID doubles as the product code that
// ends up on sales reports.
//
// Fields:
//  ID    - short product code, e.g. "P01".
//  Name  - display name; the remote order store identifies dishes by
//          this name, not by ID.
//  Price - unit price in VND; never negative.
type Dish struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
