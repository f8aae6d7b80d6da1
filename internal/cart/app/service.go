package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
)

// SnapshotKey is where the cart lives in the blob store.
const SnapshotKey = "cart"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrLineNotFound = errors.New("cart line not found")
	errCorrupt      = errors.New("corrupt cart snapshot")
)

// Service owns the ordered cart lines and their persisted snapshot. Every
// mutator builds the next state on a copy, saves it, and only then makes it
// current, so memory and storage never disagree once a call returns.
type Service struct {
	repo BlobStore
	log  *slog.Logger

	mu    sync.Mutex
	items []domain.LineItem
	index map[domain.LineKey]int
}

func NewService(repo BlobStore, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		repo:  repo,
		log:   log,
		items: []domain.LineItem{},
		index: map[domain.LineKey]int{},
	}
}

// Load replaces the in-memory cart with the persisted snapshot. A missing or
// unreadable snapshot yields an empty cart.
func (s *Service) Load(ctx context.Context) []domain.LineItem {
	items := s.decode(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(items)
	return domain.Clone(items)
}

// Save overwrites the persisted snapshot with items.
func (s *Service) Save(ctx context.Context, items []domain.LineItem) error {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	return s.repo.Put(ctx, SnapshotKey, raw)
}

func (s *Service) Items() []domain.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Clone(s.items)
}

type MergeOption func(*mergeOptions)

type mergeOptions struct {
	toppings    []menu.Topping
	setToppings bool
}

// WithToppings replaces the line's toppings, even with an empty selection.
// Merges without it leave an existing line's toppings alone.
func WithToppings(ts ...menu.Topping) MergeOption {
	return func(o *mergeOptions) {
		o.toppings = ts
		o.setToppings = true
	}
}

// Merge adds one unit of entry in size. An existing line for the same key
// gets quantity+1 and keeps its position and captured price; otherwise a new
// line is appended at unitPrice.
func (s *Service) Merge(ctx context.Context, entry menu.MenuEntry, size menu.Size, unitPrice menu.Amount, opts ...MergeOption) ([]domain.LineItem, error) {
	if entry.ID <= 0 {
		return s.Items(), fmt.Errorf("%w: menu item id is required", ErrInvalidInput)
	}
	if size != menu.SizeSmall && size != menu.SizeLarge {
		return s.Items(), menu.ErrInvalidSize
	}

	var o mergeOptions
	for _, opt := range opts {
		opt(&o)
	}

	key := domain.LineKey{ID: entry.ID, Size: size}
	return s.mutate(ctx, func(next []domain.LineItem) ([]domain.LineItem, error) {
		if i, ok := s.index[key]; ok {
			next[i].Quantity++
			if o.setToppings {
				next[i].Toppings = domain.UniqueToppings(o.toppings)
			}
			return next, nil
		}
		return append(next, domain.NewLineItem(entry, size, unitPrice, o.toppings)), nil
	})
}

// Increment adds one to the line's quantity. An unknown key changes nothing.
func (s *Service) Increment(ctx context.Context, key domain.LineKey) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(next []domain.LineItem) ([]domain.LineItem, error) {
		if i, ok := s.index[key]; ok {
			next[i].Quantity++
		}
		return next, nil
	})
}

// Decrement removes one unit, dropping the line when it reaches zero. An
// unknown key returns ErrLineNotFound and leaves the cart untouched.
func (s *Service) Decrement(ctx context.Context, key domain.LineKey) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(next []domain.LineItem) ([]domain.LineItem, error) {
		i, ok := s.index[key]
		if !ok {
			return nil, fmt.Errorf("%w: %d/%s", ErrLineNotFound, key.ID, key.Size)
		}
		if next[i].Quantity <= 1 {
			return removeAt(next, i), nil
		}
		next[i].Quantity--
		return next, nil
	})
}

// Remove deletes the line; removing an unknown key is a no-op.
func (s *Service) Remove(ctx context.Context, key domain.LineKey) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(next []domain.LineItem) ([]domain.LineItem, error) {
		if i, ok := s.index[key]; ok {
			return removeAt(next, i), nil
		}
		return next, nil
	})
}

// RemoveCharged takes the charged quantities out of the cart, dropping lines
// that reach zero. Units added after the charge was priced stay, as do keys
// the cart no longer holds.
func (s *Service) RemoveCharged(ctx context.Context, charged []domain.LineItem) ([]domain.LineItem, error) {
	return s.mutate(ctx, func(next []domain.LineItem) ([]domain.LineItem, error) {
		drop := make(map[domain.LineKey]int, len(charged))
		for _, it := range charged {
			drop[it.Key()] += it.Quantity
		}

		out := next[:0]
		for _, it := range next {
			it.Quantity -= drop[it.Key()]
			if it.Quantity > 0 {
				out = append(out, it)
			}
		}
		return out, nil
	})
}

func (s *Service) Clear(ctx context.Context) ([]domain.LineItem, error) {
	return s.mutate(ctx, func([]domain.LineItem) ([]domain.LineItem, error) {
		return []domain.LineItem{}, nil
	})
}

// mutate runs fn on a copy of the current lines under the lock. fn may use
// s.index to find positions in its argument.
func (s *Service) mutate(ctx context.Context, fn func(next []domain.LineItem) ([]domain.LineItem, error)) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(domain.Clone(s.items))
	if err != nil {
		return domain.Clone(s.items), err
	}

	if err := s.Save(ctx, next); err != nil {
		s.log.Error("cart save failed", slog.Any("err", err))
		return domain.Clone(s.items), fmt.Errorf("save cart: %w", err)
	}

	s.commit(next)
	return domain.Clone(next), nil
}

func (s *Service) commit(items []domain.LineItem) {
	s.items = items
	s.index = make(map[domain.LineKey]int, len(items))
	for i, it := range items {
		s.index[it.Key()] = i
	}
}

func (s *Service) decode(ctx context.Context) []domain.LineItem {
	raw, err := s.repo.Get(ctx, SnapshotKey)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			s.log.Warn("cart snapshot unavailable, starting empty", slog.Any("err", err))
		}
		return []domain.LineItem{}
	}

	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		s.log.Warn("cart snapshot undecodable, starting empty", slog.Any("err", err))
		return []domain.LineItem{}
	}
	if err := validate(items); err != nil {
		s.log.Warn("cart snapshot rejected, starting empty", slog.Any("err", err))
		return []domain.LineItem{}
	}

	for i := range items {
		if items[i].Toppings == nil {
			items[i].Toppings = []menu.Topping{}
		}
	}
	if items == nil {
		items = []domain.LineItem{}
	}
	return items
}

func validate(items []domain.LineItem) error {
	seen := make(map[domain.LineKey]struct{}, len(items))
	for _, it := range items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: line %d/%s has quantity %d", errCorrupt, it.ID, it.Size, it.Quantity)
		}
		if _, dup := seen[it.Key()]; dup {
			return fmt.Errorf("%w: duplicate line %d/%s", errCorrupt, it.ID, it.Size)
		}
		seen[it.Key()] = struct{}{}
	}
	return nil
}

func removeAt(items []domain.LineItem, i int) []domain.LineItem {
	return append(items[:i], items[i+1:]...)
}
