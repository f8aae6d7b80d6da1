package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dwikikusuma/pizza-cart/internal/httperr"
	"github.com/dwikikusuma/pizza-cart/internal/menu/app"
	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
	"github.com/dwikikusuma/pizza-cart/pkg/resp"
	"github.com/gin-gonic/gin"
)

type Server struct {
	svc *app.Service
}

func NewServer(svc *app.Service) *Server {
	return &Server{svc: svc}
}

func (s *Server) Register(r gin.IRouter) {
	r.GET("/menu", s.ListMenu)
	r.GET("/menu/:id", s.GetItem)
	r.GET("/toppings", s.ListToppings)
}

// ListMenu answers a failed upstream fetch with an empty list and an error
// message so the storefront can still render the page.
func (s *Server) ListMenu(c *gin.Context) {
	f := app.Filter{
		Category: domain.Category(c.Query("category")),
		Search:   c.Query("q"),
	}

	items, err := s.svc.ListMenu(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, app.ErrFetch) {
			c.JSON(http.StatusBadGateway, gin.H{"items": []domain.MenuEntry{}, "error": "failed to fetch items"})
			return
		}
		httperr.Write(c, err)
		return
	}
	resp.OK(c, gin.H{"items": items})
}

func (s *Server) GetItem(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		resp.BadRequest(c, "invalid menu item id")
		return
	}

	detail, err := s.svc.ItemDetail(c.Request.Context(), id)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	resp.OK(c, detail)
}

func (s *Server) ListToppings(c *gin.Context) {
	toppings, err := s.svc.ListToppings(c.Request.Context())
	if err != nil {
		httperr.Write(c, err)
		return
	}
	resp.OK(c, gin.H{"toppings": toppings})
}
