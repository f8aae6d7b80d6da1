package fixture

import (
	"context"
	"fmt"
	"os"

	"github.com/dwikikusuma/pizza-cart/internal/menu/app"
	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"gopkg.in/yaml.v3"
)

type file struct {
	Items []struct {
		ID          int64  `yaml:"id"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Image       string `yaml:"image"`
		Category    string `yaml:"category"`
		PriceSmall  string `yaml:"price_small"`
		PriceLarge  string `yaml:"price_large"`
	} `yaml:"items"`
	Toppings []struct {
		ID    int64  `yaml:"id"`
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"toppings"`
}

// Source serves a static catalog loaded from YAML, for offline runs and demos.
type Source struct {
	items    []domain.MenuEntry
	toppings []domain.Topping
}

func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Source, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse menu fixture: %w", err)
	}

	src := &Source{
		items:    make([]domain.MenuEntry, 0, len(f.Items)),
		toppings: make([]domain.Topping, 0, len(f.Toppings)),
	}
	for _, it := range f.Items {
		src.items = append(src.items, domain.MenuEntry{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Image:       it.Image,
			Category:    domain.Category(it.Category),
			PriceSmall:  domain.Amount(it.PriceSmall),
			PriceLarge:  domain.Amount(it.PriceLarge),
		})
	}
	for _, tp := range f.Toppings {
		src.toppings = append(src.toppings, domain.Topping{
			ID:    tp.ID,
			Name:  tp.Name,
			Price: domain.Amount(tp.Price),
		})
	}
	return src, nil
}

func (s *Source) ListMenuItems(ctx context.Context) ([]domain.MenuEntry, error) {
	return append([]domain.MenuEntry(nil), s.items...), nil
}

func (s *Source) GetMenuItem(ctx context.Context, id int64) (domain.MenuEntry, error) {
	for _, it := range s.items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.MenuEntry{}, app.ErrNotFound
}

func (s *Source) ListToppings(ctx context.Context) ([]domain.Topping, error) {
	return append([]domain.Topping(nil), s.toppings...), nil
}
