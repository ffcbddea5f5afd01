package aggregator

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/fundscore/internal/contracts"
	"github.com/wonny/fundscore/internal/s1_extract"
)

var periodHeaderPattern = regexp.MustCompile(`^\d{1,2}-[A-Za-z]{3}-(\d{2}|\d{4})$`)

// GetQuarterlyStatements implements contracts.StatementSource
func (c *Client) GetQuarterlyStatements(ctx context.Context, symbol string, consolidated bool) ([]contracts.QuarterStatement, error) {
	params := url.Values{}
	params.Set("consolidated", strconv.FormatBool(consolidated))

	html, err := c.fetchHTML(ctx, c.companyURL(symbol, "quarterly-results", params))
	if err != nil {
		return nil, err
	}

	stmts, err := ParseQuarterlyResults(html)
	if err != nil {
		return nil, fmt.Errorf("parse quarterly results for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":       symbol,
		"consolidated": consolidated,
		"quarters":     len(stmts),
	}).Debug("Fetched quarterly statements")

	return stmts, nil
}

// ParseQuarterlyResults reads the results table: the header row carries
// period ends ("31-Mar-20"), every body row is a label followed by one cell
// per period
func ParseQuarterlyResults(html string) ([]contracts.QuarterStatement, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	table := doc.Find("table#quarterly-results")
	if table.Length() == 0 {
		table = doc.Find("section#quarters table.data-table").First()
	}
	if table.Length() == 0 {
		return nil, contracts.ErrNoStatements
	}

	// column index → statement index
	columns := map[int]int{}
	var stmts []contracts.QuarterStatement

	table.Find("thead tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		text := cleanText(th.Text())
		if !periodHeaderPattern.MatchString(text) {
			return
		}
		columns[i] = len(stmts)
		stmts = append(stmts, contracts.QuarterStatement{
			Meta: &contracts.StatementMeta{DateEnd: text},
		})
	})

	if len(stmts) == 0 {
		return nil, contracts.ErrNoStatements
	}

	table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() < 2 {
			return
		}

		label := cleanLabel(cells.Eq(0).Text())
		if label == "" {
			return
		}

		cells.Each(func(i int, td *goquery.Selection) {
			idx, ok := columns[i]
			if !ok {
				return
			}

			rawText := cleanText(td.Text())
			row := contracts.RawLabeledRow{Label: label}
			if rawText != "" {
				row.ValueRaw = contracts.String(rawText)
			}
			if v, ok := s1_extract.ParseNumber(rawText); ok {
				row.ValueNumber = contracts.Float(v)
			}
			stmts[idx].Rows = append(stmts[idx].Rows, row)
		})
	})

	return stmts, nil
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// cleanLabel drops expand markers like "Sales +"
func cleanLabel(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(cleanText(s), "+"))
}
