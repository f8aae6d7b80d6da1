package rest

import (
	"context"
	"log/slog"
	"net/http"

	cart "github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	"github.com/dwikikusuma/pizza-cart/internal/checkout/app"
	"github.com/dwikikusuma/pizza-cart/internal/httperr"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/dwikikusuma/pizza-cart/internal/pricing"
	"github.com/dwikikusuma/pizza-cart/pkg/resp"
	"github.com/gin-gonic/gin"
)

// ChargedRemover takes paid-for quantities out of the cart.
type ChargedRemover interface {
	RemoveCharged(ctx context.Context, charged []cart.LineItem) ([]cart.LineItem, error)
}

type Server struct {
	svc  *app.Service
	cart ChargedRemover
	log  *slog.Logger
}

func NewServer(svc *app.Service, cart ChargedRemover, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, cart: cart, log: log}
}

func (s *Server) Register(r gin.IRouter) {
	r.GET("/checkout/quote", s.Quote)
	r.POST("/checkout", s.Checkout)
}

type quoteLine struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Size          string         `json:"size"`
	Quantity      int            `json:"quantity"`
	UnitPrice     string         `json:"unit_price"`
	Toppings      []menu.Topping `json:"toppings"`
	ToppingsTotal string         `json:"toppings_total"`
	LineTotal     string         `json:"line_total"`
}

func (s *Server) Quote(c *gin.Context) {
	q, err := s.svc.Quote(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}

	lines := make([]quoteLine, 0, len(q.Lines))
	for _, ln := range q.Lines {
		lines = append(lines, quoteLine{
			ID:            ln.ID,
			Name:          ln.Name,
			Size:          ln.Size,
			Quantity:      ln.Quantity,
			UnitPrice:     pricing.Format(ln.UnitPrice),
			Toppings:      ln.Toppings,
			ToppingsTotal: pricing.Format(ln.ToppingsTotal),
			LineTotal:     pricing.Format(ln.LineTotal),
		})
	}
	resp.OK(c, gin.H{"lines": lines, "total": pricing.Format(q.Total)})
}

type checkoutRequest struct {
	Token string `json:"token" binding:"required"`
}

// Checkout charges the cart and, only once the charge is created, removes
// the lines that were paid for. Units added while the charge was in flight
// stay in the cart. Failures leave the cart as it was.
func (s *Server) Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	receipt, err := s.svc.Checkout(ctx, req.Token)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	if _, err := s.cart.RemoveCharged(ctx, receipt.Charged); err != nil {
		// The charge went through; report success and leave the stale cart.
		s.log.Error("remove charged lines failed", slog.Any("err", err))
	}

	c.JSON(http.StatusCreated, gin.H{"confirmation": receipt.Confirmation})
}
