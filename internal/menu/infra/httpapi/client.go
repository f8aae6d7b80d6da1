package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dwikikusuma/pizza-cart/internal/menu/app"
	"github.com/dwikikusuma/pizza-cart/internal/menu/domain"
)

// Client reads the menu from the backend REST API.
type Client struct {
	baseURL string
	hc      *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      hc,
	}
}

func (c *Client) ListMenuItems(ctx context.Context) ([]domain.MenuEntry, error) {
	var items []domain.MenuEntry
	if err := c.get(ctx, "/menuitems/", &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) GetMenuItem(ctx context.Context, id int64) (domain.MenuEntry, error) {
	var item domain.MenuEntry
	if err := c.get(ctx, fmt.Sprintf("/menuitems/%d/", id), &item); err != nil {
		return domain.MenuEntry{}, err
	}
	return item, nil
}

func (c *Client) ListToppings(ctx context.Context) ([]domain.Topping, error) {
	var toppings []domain.Topping
	if err := c.get(ctx, "/toppings/", &toppings); err != nil {
		return nil, err
	}
	return toppings, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return app.ErrNotFound
	}
	if res.StatusCode != http.StatusOK {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, res.Body)
		return fmt.Errorf("GET %s: unexpected status %d", path, res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
