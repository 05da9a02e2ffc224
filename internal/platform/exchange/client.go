// Package exchange is the REST and push-channel client for the prediction
// market API. Every call hits the network; there is no caching, no retry,
// and no backoff — errors propagate to the caller unmodified.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/predictlabs/predictbot/internal/crypto"
	"github.com/predictlabs/predictbot/internal/domain"
)

// Client is the REST client for the market API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *crypto.HMACAuth
}

// NewClient creates a REST client for the given API root. auth may be nil
// for unauthenticated (read-only) use.
func NewClient(baseURL string, auth *crypto.HMACAuth) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		auth: auth,
	}
}

// GetMarkets returns up to limit markets.
func (c *Client) GetMarkets(ctx context.Context, limit int) ([]domain.Market, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := "/markets"
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange: get markets: %w", err)
	}

	var apiMarkets []APIMarket
	if err := json.Unmarshal(body, &apiMarkets); err != nil {
		return nil, fmt.Errorf("exchange: decode markets: %w", err)
	}

	markets := make([]domain.Market, 0, len(apiMarkets))
	for i := range apiMarkets {
		markets = append(markets, apiMarkets[i].ToDomainMarket())
	}
	return markets, nil
}

// GetMarket returns a single market by its ID.
func (c *Client) GetMarket(ctx context.Context, id string) (domain.Market, error) {
	path := fmt.Sprintf("/markets/%s", url.PathEscape(id))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.Market{}, fmt.Errorf("exchange: get market %s: %w", id, err)
	}

	var apiMarket APIMarket
	if err := json.Unmarshal(body, &apiMarket); err != nil {
		return domain.Market{}, fmt.Errorf("exchange: decode market: %w", err)
	}
	return apiMarket.ToDomainMarket(), nil
}

// GetOrderBook returns the full orderbook snapshot for one market outcome.
func (c *Client) GetOrderBook(ctx context.Context, marketID, outcome string) (domain.OrderBook, error) {
	params := url.Values{}
	params.Set("outcome", outcome)
	path := fmt.Sprintf("/markets/%s/orderbook?%s", url.PathEscape(marketID), params.Encode())

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("exchange: get orderbook %s/%s: %w", marketID, outcome, err)
	}

	var apiBook APIOrderBook
	if err := json.Unmarshal(body, &apiBook); err != nil {
		return domain.OrderBook{}, fmt.Errorf("exchange: decode orderbook: %w", err)
	}
	book, err := apiBook.ToDomainOrderBook()
	if err != nil {
		return domain.OrderBook{}, fmt.Errorf("exchange: orderbook %s/%s: %w", marketID, outcome, err)
	}
	return book, nil
}

// GetTrades returns up to limit recent trades for a market, newest first.
func (c *Client) GetTrades(ctx context.Context, marketID string, limit int) ([]domain.Trade, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	path := fmt.Sprintf("/markets/%s/trades", url.PathEscape(marketID))
	if enc := params.Encode(); enc != "" {
		path += "?" + enc
	}

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange: get trades %s: %w", marketID, err)
	}

	var apiTrades []APITrade
	if err := json.Unmarshal(body, &apiTrades); err != nil {
		return nil, fmt.Errorf("exchange: decode trades: %w", err)
	}

	trades := make([]domain.Trade, 0, len(apiTrades))
	for i := range apiTrades {
		tr, err := apiTrades[i].ToDomainTrade()
		if err != nil {
			return nil, fmt.Errorf("exchange: trade %s: %w", apiTrades[i].ID, err)
		}
		trades = append(trades, tr)
	}
	return trades, nil
}

// GetAccount returns the account snapshot for an address.
func (c *Client) GetAccount(ctx context.Context, address string) (domain.Account, error) {
	path := fmt.Sprintf("/accounts/%s", url.PathEscape(address))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.Account{}, fmt.Errorf("exchange: get account %s: %w", address, err)
	}

	var apiAccount APIAccount
	if err := json.Unmarshal(body, &apiAccount); err != nil {
		return domain.Account{}, fmt.Errorf("exchange: decode account: %w", err)
	}
	acct, err := apiAccount.ToDomainAccount()
	if err != nil {
		return domain.Account{}, fmt.Errorf("exchange: account %s: %w", address, err)
	}
	return acct, nil
}

// GetPositions returns every position held by an address.
func (c *Client) GetPositions(ctx context.Context, address string) ([]domain.Position, error) {
	path := fmt.Sprintf("/accounts/%s/positions", url.PathEscape(address))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange: get positions %s: %w", address, err)
	}

	var apiPositions []APIPosition
	if err := json.Unmarshal(body, &apiPositions); err != nil {
		return nil, fmt.Errorf("exchange: decode positions: %w", err)
	}

	positions := make([]domain.Position, 0, len(apiPositions))
	for i := range apiPositions {
		pos, err := apiPositions[i].ToDomainPosition()
		if err != nil {
			return nil, fmt.Errorf("exchange: position %s/%s: %w", apiPositions[i].MarketID, apiPositions[i].Outcome, err)
		}
		positions = append(positions, pos)
	}
	return positions, nil
}

// CreateOrder submits an order and returns the exchange's acknowledgement.
func (c *Client) CreateOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	payload := createOrderRequest{
		MarketID: req.MarketID,
		Outcome:  req.Outcome,
		Side:     string(req.Side),
		Price:    req.Price.String(),
		Size:     req.Size.String(),
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return domain.Order{}, fmt.Errorf("exchange: create order: %w", err)
	}

	var apiOrder APIOrder
	if err := json.Unmarshal(body, &apiOrder); err != nil {
		return domain.Order{}, fmt.Errorf("exchange: decode order: %w", err)
	}
	order, err := apiOrder.ToDomainOrder()
	if err != nil {
		return domain.Order{}, fmt.Errorf("exchange: order %s: %w", apiOrder.ID, err)
	}
	return order, nil
}

// CancelOrder cancels a single order by its ID.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/orders/%s", url.PathEscape(orderID))

	if _, err := c.doRequest(ctx, http.MethodDelete, path, nil); err != nil {
		return fmt.Errorf("exchange: cancel order %s: %w", orderID, err)
	}
	return nil
}

// GetOrder retrieves a single order by ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	path := fmt.Sprintf("/orders/%s", url.PathEscape(orderID))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("exchange: get order %s: %w", orderID, err)
	}

	var apiOrder APIOrder
	if err := json.Unmarshal(body, &apiOrder); err != nil {
		return domain.Order{}, fmt.Errorf("exchange: decode order: %w", err)
	}
	order, err := apiOrder.ToDomainOrder()
	if err != nil {
		return domain.Order{}, fmt.Errorf("exchange: order %s: %w", orderID, err)
	}
	return order, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

// doRequest builds, signs (HMAC), sends, and reads an HTTP request against
// the market API. It returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	var bodyStr string

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyStr = string(jsonBody)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.auth != nil {
		for k, v := range c.auth.Headers(method, path, bodyStr) {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
