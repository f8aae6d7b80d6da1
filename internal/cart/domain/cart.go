package domain

import (
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
)

// LineKey identifies a cart line: one menu entry in one size.
type LineKey struct {
	ID   int64
	Size menu.Size
}

// LineItem is a customized, quantified entry in the cart. Price is the unit
// price captured when the line was first added.
type LineItem struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name,omitempty"`
	Size     menu.Size      `json:"size"`
	Price    menu.Amount    `json:"price"`
	Quantity int            `json:"quantity"`
	Toppings []menu.Topping `json:"toppings"`
}

func (l LineItem) Key() LineKey {
	return LineKey{ID: l.ID, Size: l.Size}
}

// NewLineItem starts a line with quantity 1.
func NewLineItem(entry menu.MenuEntry, size menu.Size, unitPrice menu.Amount, toppings []menu.Topping) LineItem {
	return LineItem{
		ID:       entry.ID,
		Name:     entry.Name,
		Size:     size,
		Price:    unitPrice,
		Quantity: 1,
		Toppings: UniqueToppings(toppings),
	}
}

// UniqueToppings copies the selection, keeping the first topping per id.
// The result is never nil.
func UniqueToppings(ts []menu.Topping) []menu.Topping {
	out := make([]menu.Topping, 0, len(ts))
	seen := make(map[int64]struct{}, len(ts))
	for _, t := range ts {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Clone deep-copies a snapshot so callers cannot alias store state.
func Clone(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		it.Toppings = append([]menu.Topping{}, it.Toppings...)
		out[i] = it
	}
	return out
}
