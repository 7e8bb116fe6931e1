package dairyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// APIError covers both transport-level failures and {success:false}
// envelopes. Status is 0 when the request never got a response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("dairy api unreachable: %s", e.Message)
	}
	return fmt.Sprintf("dairy api: %s (status %d)", e.Message, e.Status)
}

// Client bicara ke REST API dairy. Semua response dibungkus envelope
// {success, message, ...}; sukses ditentukan oleh flag itu, bukan
// HTTP status saja.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zap.Logger
}

func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Logger:  logger,
	}
}

type stockEnvelope struct {
	Success       bool         `json:"success"`
	Message       string       `json:"message"`
	ProductStocks []StockBatch `json:"productStocks"`
}

type ordersEnvelope struct {
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Orders  []Order `json:"orders"`
}

type orderEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   *Order `json:"order"`
}

type mutateEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    *Order `json:"data"`
}

func (c *Client) FetchStockBatches(ctx context.Context) ([]StockBatch, error) {
	var env stockEnvelope
	if err := c.do(ctx, http.MethodGet, "/product-stocks", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeErr(env.Message, "fetch stock failed")
	}
	return env.ProductStocks, nil
}

func (c *Client) FetchOrders(ctx context.Context) ([]Order, error) {
	var env ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeErr(env.Message, "fetch orders failed")
	}
	return env.Orders, nil
}

func (c *Client) FetchOrder(ctx context.Context, id int) (*Order, error) {
	var env orderEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &env); err != nil {
		return nil, err
	}
	if !env.Success || env.Order == nil {
		return nil, envelopeErr(env.Message, "order not found")
	}
	return env.Order, nil
}

func (c *Client) CreateOrder(ctx context.Context, p OrderPayload) (*Order, error) {
	var env mutateEnvelope
	if err := c.do(ctx, http.MethodPost, "/orders", p, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeErr(env.Message, "create order failed")
	}
	return env.Data, nil
}

func (c *Client) UpdateOrder(ctx context.Context, id int, p OrderPayload) (*Order, error) {
	var env mutateEnvelope
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), p, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, envelopeErr(env.Message, "update order failed")
	}
	return env.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &APIError{Status: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.Logger.Warn("decode upstream response",
			zap.String("path", path), zap.Int("status", resp.StatusCode), zap.Error(err))
		return &APIError{Status: resp.StatusCode, Message: "malformed response"}
	}
	return nil
}

func envelopeErr(msg, fallback string) error {
	if msg == "" {
		msg = fallback
	}
	return &APIError{Status: http.StatusOK, Message: msg}
}
