package pricehistory

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
)

// Client resolves daily closing prices from the price-history service
// ⭐ SSOT: 주가 이력 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	limiter    *rate.Limiter
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// quoteResponse is the service's single-day payload
type quoteResponse struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Close  *float64 `json:"close"`
}

// NewClient creates a client limited to requestsPerSecond (burst 1).
// A non-positive limit disables client-side throttling.
func NewClient(httpClient *httputil.Client, baseURL, apiKey string, requestsPerSecond int, log *logger.Logger) *Client {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &Client{
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     log.WithComponent("pricehistory"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// GetPriceAt implements contracts.PriceSource. Non-trading days and unknown
// symbols (404, empty close) return nil without an error.
func (c *Client) GetPriceAt(ctx context.Context, dateISO string, symbol string) (*contracts.PriceQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("price rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("date", dateISO)
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	var resp quoteResponse
	err := c.httpClient.GetJSON(ctx, c.baseURL+"/historical?"+params.Encode(), &resp)
	if httputil.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("price lookup %s@%s: %w", symbol, dateISO, err)
	}

	if resp.Close == nil || *resp.Close <= 0 {
		return nil, nil
	}

	date := resp.Date
	if date == "" {
		date = dateISO
	}

	return &contracts.PriceQuote{Date: date, Close: *resp.Close}, nil
}
