package domain

import (
	"fmt"

	cart "github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/shopspring/decimal"
)

// QuoteLine prices one cart line: (UnitPrice + ToppingsTotal) * Quantity
// is LineTotal.
type QuoteLine struct {
	ID            int64           `json:"id"`
	Name          string          `json:"name"`
	Size          string          `json:"size"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Toppings      []menu.Topping  `json:"toppings"`
	ToppingsTotal decimal.Decimal `json:"toppings_total"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

type Quote struct {
	Lines []QuoteLine     `json:"lines"`
	Total decimal.Decimal `json:"total"`

	// Items is the cart snapshot the quote was priced from.
	Items []cart.LineItem `json:"-"`
}

// Receipt is a created charge together with the cart lines it paid for.
type Receipt struct {
	Confirmation Confirmation
	Charged      []cart.LineItem
}

// ChargeRequest is the body posted to the charge endpoint. Amount carries
// exactly two fractional digits.
type ChargeRequest struct {
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ReturnURL   string `json:"return_url"`
}

// ChargeResponse is the raw outcome of a charge call that reached the server.
type ChargeResponse struct {
	StatusCode int
	Body       []byte
}

// Confirmation is the transaction record returned with a 201.
type Confirmation struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	ChargeID    string `json:"stripe_charge_id"`
	Paid        bool   `json:"paid"`
	Timestamp   string `json:"timestamp"`
}

// NetworkError means the charge never produced a usable answer: the request
// failed in transit or the response could not be read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("charge transport failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// PaymentRejectedError is any non-201 answer from the charge endpoint.
type PaymentRejectedError struct {
	StatusCode int
	Detail     string
}

func (e *PaymentRejectedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("payment rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("payment rejected with status %d: %s", e.StatusCode, e.Detail)
}
