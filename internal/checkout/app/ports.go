package app

import (
	"context"

	cart "github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	"github.com/dwikikusuma/pizza-cart/internal/checkout/domain"
)

type CartReader interface {
	Items() []cart.LineItem
}

// ChargeGateway sends a charge request. A returned error is a transport
// failure; any HTTP answer comes back as a ChargeResponse.
type ChargeGateway interface {
	Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResponse, error)
}
