package aggregator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fundscore/pkg/redis"
)

var shareCountPattern = regexp.MustCompile(`(?i)^([\d,]+(?:\.\d+)?)\s*(cr|crore|l|lakh|lac|b|bn|billion|m|mn|million)?\.?$`)

var shareMultipliers = map[string]float64{
	"":        1,
	"cr":      1e7,
	"crore":   1e7,
	"l":       1e5,
	"lakh":    1e5,
	"lac":     1e5,
	"b":       1e9,
	"bn":      1e9,
	"billion": 1e9,
	"m":       1e6,
	"mn":      1e6,
	"million": 1e6,
}

// GetSharesOutstanding implements contracts.ShareCountSource.
// Cached for a day; a page without the figure yields nil.
func (c *Client) GetSharesOutstanding(ctx context.Context, symbol string) (*float64, error) {
	var shares *float64

	load := func() (interface{}, error) {
		html, err := c.fetchHTML(ctx, c.companyURL(symbol, "key-stats", nil))
		if err != nil {
			return nil, err
		}
		return ParseSharesOutstanding(html)
	}

	if c.cache == nil {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return v.(*float64), nil
	}

	if err := c.cache.GetOrSet(ctx, redis.SharesKey(symbol), &shares, redis.TTLDaily, load); err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"found":  shares != nil,
	}).Debug("Resolved shares outstanding")

	return shares, nil
}

// ParseSharesOutstanding finds the "Shares Outstanding" entry of the key
// stats list
func ParseSharesOutstanding(html string) (*float64, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	var shares *float64
	doc.Find("#key-stats li").EachWithBreak(func(_ int, li *goquery.Selection) bool {
		name := strings.ToLower(cleanText(li.Find(".name").Text()))
		if !strings.Contains(name, "shares outstanding") && !strings.Contains(name, "no. of shares") {
			return true
		}

		if v, ok := ParseShareCount(cleanText(li.Find(".value").Text())); ok {
			shares = &v
		}
		return false
	})

	return shares, nil
}

// ParseShareCount parses "362.06 Cr", "45.2 L", "1.2B", "36,20,60,000"
func ParseShareCount(s string) (float64, bool) {
	m := shareCountPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}

	return v * shareMultipliers[strings.ToLower(m[2])], true
}
