package app

import (
	"context"

	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
)

// MenuSource is the catalog collaborator: the backend API or an offline file.
type MenuSource interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuEntry, error)
	GetMenuItem(ctx context.Context, id int64) (domain.MenuEntry, error)
	ListToppings(ctx context.Context) ([]domain.Topping, error)
}
