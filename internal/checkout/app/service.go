package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dwikikusuma/pizza-cart/internal/checkout/domain"
	"github.com/dwikikusuma/pizza-cart/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidInput = errors.New("invalid input")
)

type Options struct {
	Description string
	ReturnURL   string
}

// Service prices the cart and submits charges. It never clears the cart;
// callers do that after a successful Submit or Checkout.
type Service struct {
	Cart    CartReader
	Gateway ChargeGateway

	opts Options
	log  *slog.Logger
}

func NewService(cart CartReader, gateway ChargeGateway, opts Options, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		Cart:    cart,
		Gateway: gateway,
		opts:    opts,
		log:     log,
	}
}

// Quote prices the current cart line by line.
func (s *Service) Quote(ctx context.Context) (domain.Quote, error) {
	items := s.Cart.Items()
	if len(items) == 0 {
		return domain.Quote{}, ErrEmptyCart
	}

	lines := make([]domain.QuoteLine, 0, len(items))
	for _, it := range items {
		lineTotal, err := pricing.LineTotal(it)
		if err != nil {
			return domain.Quote{}, err
		}
		unit, err := it.Price.Decimal()
		if err != nil {
			return domain.Quote{}, fmt.Errorf("%w: %w", pricing.ErrInvalidPrice, err)
		}
		toppings, err := pricing.ToppingsTotal(it)
		if err != nil {
			return domain.Quote{}, err
		}
		lines = append(lines, domain.QuoteLine{
			ID:            it.ID,
			Name:          it.Name,
			Size:          string(it.Size),
			Quantity:      it.Quantity,
			UnitPrice:     unit,
			Toppings:      it.Toppings,
			ToppingsTotal: toppings,
			LineTotal:     lineTotal,
		})
	}

	total, err := pricing.CartTotal(items)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{Lines: lines, Total: total, Items: items}, nil
}

// Checkout quotes the cart and submits a charge for its total. The receipt
// names the lines that were priced, so callers remove exactly those.
func (s *Service) Checkout(ctx context.Context, token string) (domain.Receipt, error) {
	q, err := s.Quote(ctx)
	if err != nil {
		return domain.Receipt{}, err
	}
	conf, err := s.Submit(ctx, token, q.Total, s.opts.Description, s.opts.ReturnURL)
	if err != nil {
		return domain.Receipt{}, err
	}
	return domain.Receipt{Confirmation: conf, Charged: q.Items}, nil
}

// Submit posts one charge. Only a 201 counts as success; other statuses
// return *domain.PaymentRejectedError and transport problems return
// *domain.NetworkError. There is no retry.
func (s *Service) Submit(ctx context.Context, token string, total decimal.Decimal, description, returnURL string) (domain.Confirmation, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Confirmation{}, fmt.Errorf("%w: payment token is required", ErrInvalidInput)
	}
	if !total.IsPositive() {
		return domain.Confirmation{}, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidInput, pricing.Format(total))
	}

	req := domain.ChargeRequest{
		Token:       token,
		Amount:      pricing.Format(total),
		Description: description,
		ReturnURL:   returnURL,
	}

	res, err := s.Gateway.Charge(ctx, req)
	if err != nil {
		s.log.Error("charge transport failed", slog.String("amount", req.Amount), slog.Any("err", err))
		return domain.Confirmation{}, &domain.NetworkError{Err: err}
	}

	if res.StatusCode != http.StatusCreated {
		rejected := &domain.PaymentRejectedError{
			StatusCode: res.StatusCode,
			Detail:     errorDetail(res.Body),
		}
		s.log.Warn("charge rejected",
			slog.String("amount", req.Amount),
			slog.Int("status", res.StatusCode),
			slog.String("detail", rejected.Detail),
		)
		return domain.Confirmation{}, rejected
	}

	var conf domain.Confirmation
	if len(bytes.TrimSpace(res.Body)) > 0 {
		if err := json.Unmarshal(res.Body, &conf); err != nil {
			s.log.Error("charge response unreadable", slog.Any("err", err))
			return domain.Confirmation{}, &domain.NetworkError{Err: fmt.Errorf("decode confirmation: %w", err)}
		}
	}

	s.log.Info("charge created", slog.String("amount", req.Amount), slog.Int64("transaction_id", conf.ID))
	return conf, nil
}

func errorDetail(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Error
}
