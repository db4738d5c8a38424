// Package client is a thin HTTP client for the ledger API, used by the
// ledgerctl command.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// APIError is a non-2xx response carrying the server's error body.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// Stock is a catalog entry.
type Stock struct {
	StockID     int64           `json:"stock_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
}

// Holding is a single (stock, quantity) pair of a user.
type Holding struct {
	StockID  int64           `json:"stock_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// User is a user's balance and holdings.
type User struct {
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Holdings []Holding       `json:"holdings"`
}

// Trade is an executed buy or sell.
type Trade struct {
	TradeID    string          `json:"trade_id"`
	UserID     int64           `json:"user_id"`
	StockID    int64           `json:"stock_id"`
	Side       string          `json:"side"`
	Quantity   decimal.Decimal `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Holding    decimal.Decimal `json:"holding"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// TradePage is one page of a user's trade journal.
type TradePage struct {
	Trades []Trade `json:"trades"`
	Total  int     `json:"total"`
	Page   int     `json:"page"`
	Limit  int     `json:"limit"`
}

// StockValue is the valuation of one holding.
type StockValue struct {
	StockID     int64           `json:"stock_id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Value       decimal.Decimal `json:"value"`
}

// Portfolio is a user's valued holdings.
type Portfolio struct {
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Holdings []StockValue    `json:"holdings"`
	Total    decimal.Decimal `json:"total"`
	Report   []string        `json:"report"`
}

// Client talks to a running ledger server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client for the server at baseURL. A nil httpClient uses a
// client with a 10 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// ListStocks returns the catalog in id order.
func (c *Client) ListStocks(ctx context.Context) ([]Stock, error) {
	var resp struct {
		Stocks []Stock `json:"stocks"`
	}
	if err := c.do(ctx, http.MethodGet, "/stocks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stocks, nil
}

// GetStock returns a single catalog entry.
func (c *Client) GetStock(ctx context.Context, stockID int64) (*Stock, error) {
	var s Stock
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/stocks/%d", stockID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetUser returns a user's balance and holdings.
func (c *Client) GetUser(ctx context.Context, userID int64) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", userID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Buy buys quantity units of stockID for userID.
func (c *Client) Buy(ctx context.Context, userID, stockID int64, quantity decimal.Decimal) (*Trade, error) {
	return c.trade(ctx, "buy", userID, stockID, quantity)
}

// Sell sells quantity units of stockID for userID.
func (c *Client) Sell(ctx context.Context, userID, stockID int64, quantity decimal.Decimal) (*Trade, error) {
	return c.trade(ctx, "sell", userID, stockID, quantity)
}

func (c *Client) trade(ctx context.Context, side string, userID, stockID int64, quantity decimal.Decimal) (*Trade, error) {
	body := struct {
		StockID  int64           `json:"stock_id"`
		Quantity decimal.Decimal `json:"quantity"`
	}{stockID, quantity}

	var t Trade
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/users/%d/%s", userID, side), body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetPortfolio returns the valuation of every holding of userID.
func (c *Client) GetPortfolio(ctx context.Context, userID int64) (*Portfolio, error) {
	var p Portfolio
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/portfolio", userID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListTrades returns a page of userID's trades, newest first. An empty side
// lists both sides.
func (c *Client) ListTrades(ctx context.Context, userID int64, side string, page, limit int) (*TradePage, error) {
	q := url.Values{}
	if side != "" {
		q.Set("side", side)
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var tp TradePage
	path := fmt.Sprintf("/users/%d/trades?%s", userID, q.Encode())
	if err := c.do(ctx, http.MethodGet, path, nil, &tp); err != nil {
		return nil, err
	}
	return &tp, nil
}

// do sends a request and decodes a 2xx body into out. Non-2xx responses are
// returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
