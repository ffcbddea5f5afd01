package aggregator

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
	"github.com/wonny/fundscore/pkg/redis"
)

// Client reads quarterly results, key stats and corporate events from the
// market-data aggregator site
// ⭐ SSOT: 애그리게이터 사이트 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new aggregator client. cache may be nil.
func NewClient(httpClient *httputil.Client, cache *redis.Cache, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log.WithComponent("aggregator"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// companyURL builds {base}/company/{symbol}/{page}
func (c *Client) companyURL(symbol, page string, params url.Values) string {
	u := fmt.Sprintf("%s/company/%s/%s", c.baseURL, url.PathEscape(strings.ToUpper(symbol)), page)
	if len(params) > 0 {
		u = u + "?" + params.Encode()
	}
	return u
}

// fetchHTML fetches a page body as a string
func (c *Client) fetchHTML(ctx context.Context, pageURL string) (string, error) {
	body, err := c.httpClient.GetBytes(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("aggregator request failed: %w", err)
	}
	return string(body), nil
}
