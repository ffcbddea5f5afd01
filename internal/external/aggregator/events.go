package aggregator

import (
	"context"
	"net/url"
	"strings"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/pkg/redis"
)

// eventsResponse is the aggregator's corporate events payload
type eventsResponse struct {
	Events []struct {
		Title       string `json:"title"`
		DateTime    string `json:"dateTime"`
		DateTimeISO string `json:"dateTimeISO"`
	} `json:"events"`
}

// GetEvents implements contracts.EventSource
func (c *Client) GetEvents(ctx context.Context, symbol string) ([]contracts.CompanyEvent, error) {
	var events []contracts.CompanyEvent

	load := func() (interface{}, error) {
		return c.fetchEvents(ctx, symbol)
	}

	if c.cache == nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.([]contracts.CompanyEvent), nil
	}

	if err := c.cache.GetOrSet(ctx, redis.EventsKey(symbol), &events, redis.TTLShort, load); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) fetchEvents(ctx context.Context, symbol string) ([]contracts.CompanyEvent, error) {
	u := c.baseURL + "/api/company/" + url.PathEscape(strings.ToUpper(symbol)) + "/events"

	var resp eventsResponse
	if err := c.httpClient.GetJSON(ctx, u, &resp); err != nil {
		return nil, err
	}

	events := make([]contracts.CompanyEvent, 0, len(resp.Events))
	for _, e := range resp.Events {
		ev := contracts.CompanyEvent{Title: strings.TrimSpace(e.Title)}
		if e.DateTime != "" {
			ev.DateTimeRaw = contracts.String(e.DateTime)
		}
		if e.DateTimeISO != "" {
			ev.DateTimeISO = contracts.String(e.DateTimeISO)
		}
		events = append(events, ev)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(events),
	}).Debug("Fetched company events")

	return events, nil
}
