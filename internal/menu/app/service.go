package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrFetch marks a failed call to the menu collaborator.
	ErrFetch = errors.New("failed to fetch menu")
)

type Filter struct {
	Category domain.Category
	Search   string
}

type ItemDetail struct {
	Item     domain.MenuEntry `json:"item"`
	Toppings []domain.Topping `json:"toppings"`
}

type Service struct {
	src MenuSource
}

func NewService(src MenuSource) *Service {
	return &Service{
		src: src,
	}
}

// ListMenu returns the entries matching the category (All or empty matches
// every category) whose name contains the search term, ignoring case.
func (s *Service) ListMenu(ctx context.Context, f Filter) ([]domain.MenuEntry, error) {
	items, err := s.src.ListMenuItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	term := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.MenuEntry, 0, len(items))
	for _, it := range items {
		if f.Category != "" && f.Category != domain.CategoryAll && it.Category != f.Category {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(it.Name), term) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *Service) GetItem(ctx context.Context, id int64) (domain.MenuEntry, error) {
	if id <= 0 {
		return domain.MenuEntry{}, ErrInvalidInput
	}
	item, err := s.src.GetMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.MenuEntry{}, err
		}
		return domain.MenuEntry{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return item, nil
}

func (s *Service) ListToppings(ctx context.Context) ([]domain.Topping, error) {
	toppings, err := s.src.ListToppings(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return toppings, nil
}

// FindToppings resolves topping ids against the current topping list,
// keeping the order of ids and dropping duplicates.
func (s *Service) FindToppings(ctx context.Context, ids []int64) ([]domain.Topping, error) {
	if len(ids) == 0 {
		return []domain.Topping{}, nil
	}

	all, err := s.ListToppings(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Topping, len(all))
	for _, t := range all {
		byID[t.ID] = t
	}

	out := make([]domain.Topping, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown topping %d", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// ItemDetail loads an entry and the topping list concurrently.
func (s *Service) ItemDetail(ctx context.Context, id int64) (ItemDetail, error) {
	var detail ItemDetail

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		item, err := s.GetItem(ctx, id)
		if err != nil {
			return err
		}
		detail.Item = item
		return nil
	})
	g.Go(func() error {
		toppings, err := s.ListToppings(ctx)
		if err != nil {
			return err
		}
		detail.Toppings = toppings
		return nil
	})

	if err := g.Wait(); err != nil {
		return ItemDetail{}, err
	}
	return detail, nil
}
