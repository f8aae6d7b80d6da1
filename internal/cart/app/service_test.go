package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/dwikikusuma/pizza-cart/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeBlobs struct {
	data   map[string][]byte
	puts   int
	putErr error
	getErr error
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: map[string][]byte{}}
}

func (f *fakeBlobs) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return v, nil
}

func (f *fakeBlobs) Put(ctx context.Context, key string, value []byte) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.puts++
	f.data[key] = append([]byte(nil), value...)
	return nil
}

// persisted decodes what the fake store holds right now.
func (f *fakeBlobs) persisted(t *testing.T) []domain.LineItem {
	t.Helper()
	var items []domain.LineItem
	require.NoError(t, json.Unmarshal(f.data[SnapshotKey], &items))
	return items
}

var (
	margherita = menu.MenuEntry{ID: 1, Name: "Margherita", PriceSmall: "8.00", PriceLarge: "12.00"}
	bread      = menu.MenuEntry{ID: 2, Name: "Garlic Bread", PriceSmall: "4.00", PriceLarge: "6.00"}
	olives     = menu.Topping{ID: 10, Name: "Olives", Price: "1.00"}
	ham        = menu.Topping{ID: 11, Name: "Ham", Price: "1.50"}
)

func newTestService(t *testing.T) (*Service, *fakeBlobs) {
	t.Helper()
	blobs := newFakeBlobs()
	svc := NewService(blobs, logger.Discard())
	svc.Load(context.Background())
	return svc, blobs
}

func TestMergeSameKeyIncrementsOneLine(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	const n = 5
	var items []domain.LineItem
	var err error
	for i := 0; i < n; i++ {
		items, err = svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
		require.NoError(t, err)
	}

	require.Len(t, items, 1)
	require.Equal(t, n, items[0].Quantity)
	require.Equal(t, items, blobs.persisted(t))
}

func TestMergeDifferentSizesAreDifferentLines(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	items, err := svc.Merge(ctx, margherita, menu.SizeLarge, "12.00")
	require.NoError(t, err)

	require.Len(t, items, 2)
	require.Equal(t, menu.Amount("12.00"), items[1].Price)
}

func TestMergeKeepsPositionAndCapturedPrice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, bread, menu.SizeSmall, "4.00")
	require.NoError(t, err)

	// The catalog price changed since the line was created.
	items, err := svc.Merge(ctx, margherita, menu.SizeSmall, "9.00")
	require.NoError(t, err)

	require.Equal(t, int64(1), items[0].ID)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, menu.Amount("8.00"), items[0].Price)
	require.Equal(t, int64(2), items[1].ID)
}

func TestMergeToppingsFollowLatestSupplied(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00", WithToppings(olives))
	require.NoError(t, err)

	t.Run("merge without toppings keeps them", func(t *testing.T) {
		items, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
		require.NoError(t, err)
		require.Equal(t, []menu.Topping{olives}, items[0].Toppings)
	})

	t.Run("customized merge replaces them", func(t *testing.T) {
		items, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00", WithToppings(ham, ham))
		require.NoError(t, err)
		require.Equal(t, []menu.Topping{ham}, items[0].Toppings)
		require.Equal(t, 3, items[0].Quantity)
	})

	t.Run("empty customization clears them", func(t *testing.T) {
		items, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00", WithToppings())
		require.NoError(t, err)
		require.Empty(t, items[0].Toppings)
	})
}

func TestMergeValidation(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Merge(ctx, menu.MenuEntry{}, menu.SizeSmall, "8.00")
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Merge(ctx, margherita, "Medium", "8.00")
	require.ErrorIs(t, err, menu.ErrInvalidSize)

	require.Zero(t, blobs.puts)
}

func TestDecrementRemovesAtZero(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)
	key := domain.LineKey{ID: 1, Size: menu.SizeSmall}

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)

	items, err := svc.Decrement(ctx, key)
	require.NoError(t, err)
	require.Equal(t, 1, items[0].Quantity)

	items, err = svc.Decrement(ctx, key)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Empty(t, blobs.persisted(t))

	puts := blobs.puts
	items, err = svc.Decrement(ctx, key)
	require.ErrorIs(t, err, ErrLineNotFound)
	require.Empty(t, items)
	require.Equal(t, puts, blobs.puts)
}

func TestIncrement(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Merge(ctx, bread, menu.SizeLarge, "6.00")
	require.NoError(t, err)

	items, err := svc.Increment(ctx, domain.LineKey{ID: 2, Size: menu.SizeLarge})
	require.NoError(t, err)
	require.Equal(t, 2, items[0].Quantity)
	require.Equal(t, 2, blobs.persisted(t)[0].Quantity)

	t.Run("unknown key is a no-op", func(t *testing.T) {
		items, err := svc.Increment(ctx, domain.LineKey{ID: 2, Size: menu.SizeSmall})
		require.NoError(t, err)
		require.Len(t, items, 1)
		require.Equal(t, 2, items[0].Quantity)
	})
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, bread, menu.SizeSmall, "4.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, margherita, menu.SizeLarge, "12.00")
	require.NoError(t, err)

	items, err := svc.Remove(ctx, domain.LineKey{ID: 2, Size: menu.SizeSmall})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, domain.LineKey{ID: 1, Size: menu.SizeLarge}, items[1].Key())

	// removing again is idempotent
	again, err := svc.Remove(ctx, domain.LineKey{ID: 2, Size: menu.SizeSmall})
	require.NoError(t, err)
	require.Equal(t, items, again)

	// the index follows the shifted positions
	items, err = svc.Increment(ctx, domain.LineKey{ID: 1, Size: menu.SizeLarge})
	require.NoError(t, err)
	require.Equal(t, 2, items[1].Quantity)

	items, err = svc.Clear(ctx)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Empty(t, blobs.persisted(t))
}

func TestClearOnFreshStorePersists(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Clear(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `[]`, string(blobs.data[SnapshotKey]))
}

func TestSaveFailureKeepsPreviousState(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)

	blobs.putErr = errors.New("disk full")
	items, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.Error(t, err)
	require.Equal(t, 1, items[0].Quantity)
	require.Equal(t, 1, svc.Items()[0].Quantity)
	require.Equal(t, 1, blobs.persisted(t)[0].Quantity)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	blobs := newFakeBlobs()
	svc := NewService(blobs, logger.Discard())

	items := []domain.LineItem{
		{ID: 3, Name: "Tiramisu", Size: menu.SizeLarge, Price: "7.50", Quantity: 2, Toppings: []menu.Topping{}},
		{ID: 1, Name: "Margherita", Size: menu.SizeSmall, Price: "8.00", Quantity: 1, Toppings: []menu.Topping{olives, ham}},
	}
	require.NoError(t, svc.Save(ctx, items))
	require.Equal(t, items, svc.Load(ctx))
	require.Equal(t, items, svc.Items())
}

func TestLoadRecoversFromBadSnapshots(t *testing.T) {
	cases := map[string][]byte{
		"not json":       []byte(`{oops`),
		"wrong shape":    []byte(`{"id":1}`),
		"zero quantity":  []byte(`[{"id":1,"size":"Small","price":"8.00","quantity":0}]`),
		"duplicate keys": []byte(`[{"id":1,"size":"Small","price":"8.00","quantity":1},{"id":1,"size":"Small","price":"8.00","quantity":2}]`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			blobs := newFakeBlobs()
			blobs.data[SnapshotKey] = raw
			svc := NewService(blobs, logger.Discard())

			require.Empty(t, svc.Load(context.Background()))
		})
	}

	t.Run("store error", func(t *testing.T) {
		blobs := newFakeBlobs()
		blobs.getErr = errors.New("io error")
		svc := NewService(blobs, logger.Discard())

		require.Empty(t, svc.Load(context.Background()))
	})

	t.Run("missing toppings decode as empty", func(t *testing.T) {
		blobs := newFakeBlobs()
		blobs.data[SnapshotKey] = []byte(`[{"id":1,"size":"Small","price":8,"quantity":2}]`)
		svc := NewService(blobs, logger.Discard())

		items := svc.Load(context.Background())
		require.Len(t, items, 1)
		require.NotNil(t, items[0].Toppings)
		require.Equal(t, menu.Amount("8"), items[0].Price)
	})
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00", WithToppings(olives))
	require.NoError(t, err)

	items := svc.Items()
	items[0].Quantity = 99
	items[0].Toppings[0].Name = "changed"

	require.Equal(t, 1, svc.Items()[0].Quantity)
	require.Equal(t, "Olives", svc.Items()[0].Toppings[0].Name)
}

func TestRemoveChargedKeepsUnitsAddedLater(t *testing.T) {
	ctx := context.Background()
	svc, blobs := newTestService(t)

	_, err := svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, bread, menu.SizeLarge, "6.00")
	require.NoError(t, err)
	charged := svc.Items()

	// more arrives while the charge is in flight
	_, err = svc.Merge(ctx, margherita, menu.SizeSmall, "8.00")
	require.NoError(t, err)
	_, err = svc.Merge(ctx, margherita, menu.SizeLarge, "12.00")
	require.NoError(t, err)

	items, err := svc.RemoveCharged(ctx, charged)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, domain.LineKey{ID: 1, Size: menu.SizeSmall}, items[0].Key())
	require.Equal(t, 1, items[0].Quantity)
	require.Equal(t, domain.LineKey{ID: 1, Size: menu.SizeLarge}, items[1].Key())
	require.Equal(t, items, blobs.persisted(t))

	t.Run("removed lines are ignored", func(t *testing.T) {
		again, err := svc.RemoveCharged(ctx, []domain.LineItem{{ID: 2, Size: menu.SizeLarge, Quantity: 1}})
		require.NoError(t, err)
		require.Equal(t, items, again)
	})

	t.Run("full snapshot empties the cart", func(t *testing.T) {
		left, err := svc.RemoveCharged(ctx, svc.Items())
		require.NoError(t, err)
		require.Empty(t, left)
	})
}
