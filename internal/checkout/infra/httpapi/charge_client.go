package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dwikikusuma/pizza-cart/internal/checkout/domain"
)

// Responses larger than this are treated as malformed.
const maxBody = 1 << 20

// ChargeClient posts charges to the backend with a bearer token.
type ChargeClient struct {
	baseURL     string
	accessToken string
	hc          *http.Client
}

func NewChargeClient(baseURL, accessToken string, hc *http.Client) *ChargeClient {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &ChargeClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		hc:          hc,
	}
}

func (c *ChargeClient) Charge(ctx context.Context, req domain.ChargeRequest) (domain.ChargeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.ChargeResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charge/", bytes.NewReader(body))
	if err != nil {
		return domain.ChargeResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	res, err := c.hc.Do(httpReq)
	if err != nil {
		return domain.ChargeResponse{}, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBody+1))
	if err != nil {
		return domain.ChargeResponse{}, fmt.Errorf("read charge response: %w", err)
	}
	if len(raw) > maxBody {
		return domain.ChargeResponse{}, fmt.Errorf("charge response exceeds %d bytes", maxBody)
	}

	return domain.ChargeResponse{StatusCode: res.StatusCode, Body: raw}, nil
}
