package domain

import (
	"errors"
	"strings"
)

var ErrInvalidSize = errors.New("invalid size")

type Size string

const (
	SizeSmall Size = "Small"
	SizeLarge Size = "Large"
)

// ParseSize accepts the size names case-insensitively.
func ParseSize(s string) (Size, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return SizeSmall, nil
	case "large":
		return SizeLarge, nil
	default:
		return "", ErrInvalidSize
	}
}

type Category string

const (
	CategoryAll     Category = "All"
	CategoryPizza   Category = "Pizza"
	CategoryBreads  Category = "Breads"
	CategoryDeserts Category = "Deserts"
)

type Topping struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price Amount `json:"price"`
}

type MenuEntry struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Category    Category `json:"category"`
	PriceSmall  Amount   `json:"price_small"`
	PriceLarge  Amount   `json:"price_large"`
}

// PriceFor returns the unit price for a size.
func (m MenuEntry) PriceFor(size Size) (Amount, error) {
	switch size {
	case SizeSmall:
		return m.PriceSmall, nil
	case SizeLarge:
		return m.PriceLarge, nil
	default:
		return "", ErrInvalidSize
	}
}

// ToggleTopping adds t to the selection, or removes it when a topping with
// the same id is already selected.
func ToggleTopping(selection []Topping, t Topping) []Topping {
	out := make([]Topping, 0, len(selection)+1)
	found := false
	for _, s := range selection {
		if s.ID == t.ID {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		out = append(out, t)
	}
	return out
}
