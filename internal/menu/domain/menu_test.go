package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestAmountDecodesTextAndNumbers(t *testing.T) {
	var entry MenuEntry
	raw := `{"id":1,"name":"Margherita","price_small":"8.00","price_large":12.5,"category":"Pizza"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &entry))

	small, err := entry.PriceSmall.Decimal()
	require.NoError(t, err)
	require.True(t, small.Equal(decimal.RequireFromString("8")))

	large, err := entry.PriceLarge.Decimal()
	require.NoError(t, err)
	require.True(t, large.Equal(decimal.RequireFromString("12.5")))
}

func TestAmountRejectsNonNumeric(t *testing.T) {
	for _, a := range []Amount{"", "abc", "  ", "8,00"} {
		_, err := a.Decimal()
		require.ErrorIs(t, err, ErrInvalidAmount, "amount %q", a)
	}

	var a Amount
	require.Error(t, json.Unmarshal([]byte(`true`), &a))
}

func TestAmountMarshalsAsString(t *testing.T) {
	b, err := json.Marshal(NewAmount(decimal.RequireFromString("1.5")))
	require.NoError(t, err)
	require.JSONEq(t, `"1.50"`, string(b))
}

func TestPriceFor(t *testing.T) {
	m := MenuEntry{PriceSmall: "8.00", PriceLarge: "12.00"}

	p, err := m.PriceFor(SizeSmall)
	require.NoError(t, err)
	require.Equal(t, Amount("8.00"), p)

	p, err = m.PriceFor(SizeLarge)
	require.NoError(t, err)
	require.Equal(t, Amount("12.00"), p)

	_, err = m.PriceFor("Medium")
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestParseSize(t *testing.T) {
	s, err := ParseSize(" large ")
	require.NoError(t, err)
	require.Equal(t, SizeLarge, s)

	_, err = ParseSize("xl")
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestToggleToppingByID(t *testing.T) {
	olives := Topping{ID: 1, Name: "Olives", Price: "1.00"}
	ham := Topping{ID: 2, Name: "Ham", Price: "1.50"}

	sel := ToggleTopping(nil, olives)
	sel = ToggleTopping(sel, ham)
	require.Equal(t, []Topping{olives, ham}, sel)

	// A freshly fetched copy with the same id deselects.
	sel = ToggleTopping(sel, Topping{ID: 1, Name: "Olives", Price: "1.00"})
	require.Equal(t, []Topping{ham}, sel)
}
