package bse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/fundscore/pkg/httputil"
	"github.com/wonny/fundscore/pkg/logger"
)

// maxPages bounds pagination of the announcements API
const maxPages = 20

// Filing is one exchange announcement
type Filing struct {
	ID          string    `json:"id"`
	ScripCode   string    `json:"scrip_code"`
	Company     string    `json:"company"`
	Subject     string    `json:"subject"`
	Category    string    `json:"category"`
	AnnouncedAt time.Time `json:"announced_at"`
	Attachment  string    `json:"attachment,omitempty"`
}

// announcementsResponse mirrors the API payload
type announcementsResponse struct {
	Table []struct {
		NewsID     string      `json:"NEWSID"`
		ScripCode  json.Number `json:"SCRIP_CD"`
		LongName   string      `json:"SLONGNAME"`
		Subject    string      `json:"NEWSSUB"`
		NewsDate   string      `json:"NEWS_DT"`
		Category   string      `json:"CATEGORYNAME"`
		Attachment string      `json:"ATTACHMENTNAME"`
	} `json:"Table"`
}

// Client lists announcements from the exchange filings API
// ⭐ SSOT: BSE 공시 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new filings client
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient.WithHeader("Referer", "https://www.bseindia.com/").WithHeader("Accept", "application/json"),
		logger:     log.WithComponent("bse"),
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// ListResultFilings returns "Result" category filings announced between
// from and to (inclusive dates), following pagination
func (c *Client) ListResultFilings(ctx context.Context, from, to time.Time) ([]Filing, error) {
	var filings []Filing

	for page := 1; page <= maxPages; page++ {
		select {
		case <-ctx.Done():
			return filings, ctx.Err()
		default:
		}

		params := url.Values{}
		params.Set("strCat", "Result")
		params.Set("strPrevDate", from.Format("20060102"))
		params.Set("strToDate", to.Format("20060102"))
		params.Set("strType", "C")
		params.Set("pageno", strconv.Itoa(page))

		var resp announcementsResponse
		if err := c.httpClient.GetJSON(ctx, c.baseURL+"/AnnSubCategoryGetData/w?"+params.Encode(), &resp); err != nil {
			return filings, fmt.Errorf("list filings page %d: %w", page, err)
		}

		if len(resp.Table) == 0 {
			break
		}

		for _, row := range resp.Table {
			filings = append(filings, Filing{
				ID:          strings.TrimSpace(row.NewsID),
				ScripCode:   row.ScripCode.String(),
				Company:     strings.TrimSpace(row.LongName),
				Subject:     strings.TrimSpace(row.Subject),
				Category:    row.Category,
				AnnouncedAt: parseNewsDate(row.NewsDate),
				Attachment:  row.Attachment,
			})
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"from":  from.Format("2006-01-02"),
		"to":    to.Format("2006-01-02"),
		"count": len(filings),
	}).Debug("Listed result filings")

	return filings, nil
}

// parseNewsDate accepts "2023-07-21T19:30:00" (with or without fraction)
func parseNewsDate(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
