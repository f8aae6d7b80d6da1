// Package pricing computes line and cart totals from cart snapshots. It has
// no side effects; unit and topping prices are summed at full precision and
// only the cart total is rounded to cents.
package pricing

import (
	"errors"
	"fmt"

	"github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidPrice means a stored price could not be read as a number.
var ErrInvalidPrice = errors.New("invalid price")

const centsPlaces = 2

// LineTotal is (unit price + sum of topping prices) * quantity.
func LineTotal(item domain.LineItem) (decimal.Decimal, error) {
	unit, err := item.Price.Decimal()
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: line %d/%s: %w", ErrInvalidPrice, item.ID, item.Size, err)
	}

	toppings, err := ToppingsTotal(item)
	if err != nil {
		return decimal.Zero, err
	}

	return unit.Add(toppings).Mul(decimal.NewFromInt(int64(item.Quantity))), nil
}

// ToppingsTotal is the per-unit sum of the line's topping prices.
func ToppingsTotal(item domain.LineItem) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range item.Toppings {
		p, err := t.Price.Decimal()
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: topping %d on line %d/%s: %w", ErrInvalidPrice, t.ID, item.ID, item.Size, err)
		}
		sum = sum.Add(p)
	}
	return sum, nil
}

// CartTotal sums the line totals and rounds half away from zero to cents.
func CartTotal(items []domain.LineItem) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, it := range items {
		lt, err := LineTotal(it)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(lt)
	}
	return total.Round(centsPlaces), nil
}

// Format renders an amount with exactly two fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixed(centsPlaces)
}
