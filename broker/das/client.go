// Package das is the live execution adapter. It talks to a DAS-style
// order bridge over HTTP; order placement is asynchronous, so results
// usually come back SUBMITTED rather than FILLED and the caller must not
// assume execution.
package das

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/daytrader/broker"
)

type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "das" }

type orderPayload struct {
	Ticker    string  `json:"ticker"`
	Quantity  int64   `json:"quantity"`
	OrderType string  `json:"order_type"`
	Price     float64 `json:"price,omitempty"`
}

type orderResponse struct {
	OrderID       string  `json:"order_id"`
	Status        string  `json:"status"`
	ExecutedPrice float64 `json:"executed_price"`
}

func (c *Client) PlaceOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderResult, error) {
	payload := orderPayload{
		Ticker:    req.Ticker,
		Quantity:  req.Quantity,
		OrderType: string(req.Kind),
		Price:     req.ReferencePrice,
	}

	var resp orderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", payload, &resp); err != nil {
		return broker.OrderResult{}, err
	}

	status := broker.Status(strings.ToUpper(strings.TrimSpace(resp.Status)))
	if status == "" {
		// The bridge acknowledged but reported nothing; treat the fill
		// outcome as unknown.
		status = broker.StatusSubmitted
	}

	return broker.OrderResult{
		OrderID:       resp.OrderID,
		Ticker:        req.Ticker,
		Quantity:      req.Quantity,
		Kind:          req.Kind,
		ExecutedPrice: resp.ExecutedPrice,
		Status:        status,
		Time:          time.Now().UTC(),
	}, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) (bool, error) {
	err := c.do(ctx, http.MethodDelete, "/orders/"+orderID, nil, nil)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) GetPosition(ctx context.Context, ticker string) (broker.Position, error) {
	var resp struct {
		Quantity     int64   `json:"quantity"`
		AveragePrice float64 `json:"average_price"`
	}
	if err := c.do(ctx, http.MethodGet, "/positions/"+ticker, nil, &resp); err != nil {
		return broker.Position{}, err
	}
	return broker.Position{
		Ticker:       ticker,
		Quantity:     resp.Quantity,
		AveragePrice: resp.AveragePrice,
	}, nil
}

func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var resp struct {
		Equity      float64 `json:"equity"`
		BuyingPower float64 `json:"buying_power"`
	}
	if err := c.do(ctx, http.MethodGet, "/account", nil, &resp); err != nil {
		return broker.Account{}, err
	}
	return broker.Account{
		Equity:      resp.Equity,
		BuyingPower: resp.BuyingPower,
		Positions:   map[string]broker.Position{},
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", broker.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		msg := strings.TrimSpace(string(b))
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: bridge http %d: %s", broker.ErrUnavailable, resp.StatusCode, msg)
		}
		return fmt.Errorf("%w: bridge http %d: %s", broker.ErrRejected, resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
