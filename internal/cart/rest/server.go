package rest

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/pizza-cart/internal/cart/app"
	"github.com/dwikikusuma/pizza-cart/internal/cart/domain"
	"github.com/dwikikusuma/pizza-cart/internal/httperr"
	menu "github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/dwikikusuma/pizza-cart/internal/pricing"
	"github.com/dwikikusuma/pizza-cart/pkg/resp"
	"github.com/gin-gonic/gin"
)

// MenuLookup resolves what the client sends by id into menu values.
type MenuLookup interface {
	GetItem(ctx context.Context, id int64) (menu.MenuEntry, error)
	FindToppings(ctx context.Context, ids []int64) ([]menu.Topping, error)
}

type Server struct {
	svc  *app.Service
	menu MenuLookup
}

func NewServer(svc *app.Service, lookup MenuLookup) *Server {
	return &Server{svc: svc, menu: lookup}
}

func (s *Server) Register(r gin.IRouter) {
	g := r.Group("/cart")
	g.GET("", s.GetCart)
	g.DELETE("", s.ClearCart)
	g.POST("/items", s.AddItem)
	g.POST("/items/:id/:size/increment", s.Increment)
	g.POST("/items/:id/:size/decrement", s.Decrement)
	g.DELETE("/items/:id/:size", s.RemoveItem)
}

type cartView struct {
	Items []domain.LineItem `json:"items"`
	Total string            `json:"total"`
}

type addItemRequest struct {
	MenuItemID int64  `json:"menu_item_id" binding:"required"`
	Size       string `json:"size" binding:"required"`
	// nil keeps an existing line's toppings; a list (even empty) replaces them.
	ToppingIDs *[]int64 `json:"topping_ids"`
}

func (s *Server) GetCart(c *gin.Context) {
	s.render(c, http.StatusOK, s.svc.Items())
}

func (s *Server) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	size, err := menu.ParseSize(req.Size)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	ctx := c.Request.Context()
	entry, err := s.menu.GetItem(ctx, req.MenuItemID)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	price, err := entry.PriceFor(size)
	if err != nil {
		httperr.Write(c, err)
		return
	}

	var opts []app.MergeOption
	if req.ToppingIDs != nil {
		toppings, err := s.menu.FindToppings(ctx, *req.ToppingIDs)
		if err != nil {
			httperr.Write(c, err)
			return
		}
		opts = append(opts, app.WithToppings(toppings...))
	}

	items, err := s.svc.Merge(ctx, entry, size, price, opts...)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	s.render(c, http.StatusOK, items)
}

func (s *Server) Increment(c *gin.Context) {
	s.byKey(c, s.svc.Increment)
}

func (s *Server) Decrement(c *gin.Context) {
	s.byKey(c, s.svc.Decrement)
}

func (s *Server) RemoveItem(c *gin.Context) {
	s.byKey(c, s.svc.Remove)
}

func (s *Server) ClearCart(c *gin.Context) {
	items, err := s.svc.Clear(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	s.render(c, http.StatusOK, items)
}

func (s *Server) byKey(c *gin.Context, op func(context.Context, domain.LineKey) ([]domain.LineItem, error)) {
	key, err := parseKey(c)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	items, err := op(c.Request.Context(), key)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	s.render(c, http.StatusOK, items)
}

// render responds with the lines and their total; a price that cannot be
// read fails the response instead of showing a wrong total.
func (s *Server) render(c *gin.Context, status int, items []domain.LineItem) {
	total, err := pricing.CartTotal(items)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	c.JSON(status, cartView{Items: items, Total: pricing.Format(total)})
}

func parseKey(c *gin.Context) (domain.LineKey, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return domain.LineKey{}, fmt.Errorf("%w: bad item id %q", app.ErrInvalidInput, c.Param("id"))
	}
	size, err := menu.ParseSize(c.Param("size"))
	if err != nil {
		return domain.LineKey{}, err
	}
	return domain.LineKey{ID: id, Size: size}, nil
}
