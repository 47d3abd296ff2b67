// Package catalog holds the static dish catalog.  The menu is
// reference data compiled into the binary: the original deployment had
// a fixed menu maintained by hand, and nothing in the system mutates
// it at runtime.  Lookups never fail hard; callers that need a display
// name for an unknown ID get the ID itself back, because a stale or
// mistyped ID must never block a flush to the remote store.
package catalog

import "github.com/hviet/smile-pos/internal/model"

// Catalog resolves dish IDs and names against the fixed menu.
type Catalog struct {
	byID   map[string]model.Dish
	byName map[string]model.Dish
	dishes []model.Dish
}

// New builds a Catalog from the given dishes.  Later duplicates of an
// ID or name silently win; the menu data is expected to be clean.
func New(dishes []model.Dish) *Catalog {
	c := &Catalog{
		byID:   make(map[string]model.Dish, len(dishes)),
		byName: make(map[string]model.Dish, len(dishes)),
		dishes: append([]model.Dish(nil), dishes...),
	}
	for _, d := range dishes {
		c.byID[d.ID] = d
		c.byName[d.Name] = d
	}
	return c
}

// Default returns the catalog of the house menu.
func Default() *Catalog { return New(menu) }

// ByID looks a dish up by its product code.
func (c *Catalog) ByID(id string) (model.Dish, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// ByName looks a dish up by its display name.  The remote order store
// keys rows by dish name, so hydration resolves through here.
func (c *Catalog) ByName(name string) (model.Dish, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// NameFor returns the display name for a dish ID, falling back to the
// ID string itself when the catalog has no entry.  A flush must never
// fail because an ID cannot be resolved.
func (c *Catalog) NameFor(id string) string {
	if d, ok := c.byID[id]; ok {
		return d.Name
	}
	return id
}

// Placeholder wraps an unknown remote dish name into a zero-price dish
// whose ID is the name itself.  Hydration uses this so rows written by
// an older menu still show up on the table instead of being dropped.
func Placeholder(name string) model.Dish {
	return model.Dish{ID: name, Name: name, Price: 0}
}

// All returns the full menu in catalog order.
func (c *Catalog) All() []model.Dish {
	return append([]model.Dish(nil), c.dishes...)
}

// menu is the house menu.  Prices are VND.
var menu = []model.Dish{
	{ID: "P01", Name: "Phở bò", Price: 55000},
	{ID: "P02", Name: "Phở gà", Price: 50000},
	{ID: "P03", Name: "Phở tái lăn", Price: 65000},
	{ID: "B01", Name: "Bún chả", Price: 45000},
	{ID: "B02", Name: "Bún bò Huế", Price: 55000},
	{ID: "B03", Name: "Bún riêu", Price: 40000},
	{ID: "C01", Name: "Cơm gà xối mỡ", Price: 50000},
	{ID: "C02", Name: "Cơm sườn nướng", Price: 55000},
	{ID: "C03", Name: "Cơm rang dưa bò", Price: 60000},
	{ID: "C04", Name: "Cơm trắng", Price: 10000},
	{ID: "G01", Name: "Gỏi cuốn", Price: 35000},
	{ID: "G02", Name: "Nem rán", Price: 40000},
	{ID: "L01", Name: "Lẩu thái", Price: 250000},
	{ID: "L02", Name: "Lẩu gà lá é", Price: 280000},
	{ID: "R01", Name: "Rau muống xào tỏi", Price: 30000},
	{ID: "R02", Name: "Đậu hũ sốt cà", Price: 30000},
	{ID: "D01", Name: "Trà đá", Price: 5000},
	{ID: "D02", Name: "Nước cam", Price: 25000},
	{ID: "D03", Name: "Cà phê sữa đá", Price: 25000},
	{ID: "D04", Name: "Bia Hà Nội", Price: 20000},
	{ID: "T01", Name: "Chè khúc bạch", Price: 30000},
	{ID: "T02", Name: "Sữa chua nếp cẩm", Price: 25000},
}
