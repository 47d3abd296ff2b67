// Package billing contains the pure bill math: subtotal, discount
// interpretation and the final total.  Nothing here touches state or
// the network, so the whole package is trivially testable.
package billing

import (
	"errors"
	"time"

	"github.com/hviet/smile-pos/internal/model"
)

// ErrAmbiguousDiscount is returned for discount values strictly
// between 100 and 1000.  Such a value is neither a valid percentage
// (at most 100) nor an absolute amount (at least 1000 VND), so it is
// rejected outright instead of being silently coerced either way.
var ErrAmbiguousDiscount = errors.New("discount between 100 and 1000 is ambiguous")

// ErrNegativeDiscount is returned for discounts below zero.
var ErrNegativeDiscount = errors.New("discount must not be negative")

// Subtotal sums price times quantity over the order lines.
func Subtotal(orders []model.OrderLine) float64 {
	var sum float64
	for _, line := range orders {
		sum += line.Dish.Price * float64(line.Quantity)
	}
	return sum
}

// DiscountAmount interprets the raw discount input against a
// subtotal.  A value in (0, 100] is a percentage of the subtotal; a
// value of 1000 or more is an absolute amount in VND; zero means no
// discount.
func DiscountAmount(subtotal, discount float64) (float64, error) {
	switch {
	case discount < 0:
		return 0, ErrNegativeDiscount
	case discount == 0:
		return 0, nil
	case discount <= 100:
		return subtotal * discount / 100, nil
	case discount < 1000:
		return 0, ErrAmbiguousDiscount
	default:
		return discount, nil
	}
}

// Bill is the computed footer of a table's bill.
type Bill struct {
	TableID   int
	Items     []model.OrderLine
	Subtotal  float64
	Discount  float64
	ShipFee   float64
	Total     float64
	Date      string
	Hour      string
}

// Compute derives a Bill from a table's current order lines.  discount
// is the raw input (percent or absolute, see DiscountAmount); shipFee
// is added on top after the discount.
func Compute(tableID int, orders []model.OrderLine, discount, shipFee float64, now time.Time) (Bill, error) {
	subtotal := Subtotal(orders)
	amount, err := DiscountAmount(subtotal, discount)
	if err != nil {
		return Bill{}, err
	}
	return Bill{
		TableID:  tableID,
		Items:    append([]model.OrderLine(nil), orders...),
		Subtotal: subtotal,
		Discount: amount,
		ShipFee:  shipFee,
		Total:    subtotal - amount + shipFee,
		Date:     now.Format("2006-01-02"),
		Hour:     now.Format("15:04:05"),
	}, nil
}

// ReportRows expands a bill into one report row per dish.  Total,
// ShipFee and Discount carry the whole-bill figures on every row.
func ReportRows(b Bill) []model.Report {
	rows := make([]model.Report, 0, len(b.Items))
	for _, line := range b.Items {
		rows = append(rows, model.Report{
			TableID:     b.TableID,
			Date:        b.Date,
			Hour:        b.Hour,
			ProductCode: line.Dish.ID,
			ProductName: line.Dish.Name,
			Quantity:    line.Quantity,
			Total:       b.Total,
			ShipFee:     b.ShipFee,
			Discount:    b.Discount,
		})
	}
	return rows
}
