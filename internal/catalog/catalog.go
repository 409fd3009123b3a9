// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog pages the bioRxiv/medRxiv details API for a date window
// and returns deduplicated, newest-first papers with run-local IDs.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/biorxiv-digest/internal/httputil"
	"github.com/pdiddy/biorxiv-digest/internal/observability"
	"github.com/pdiddy/biorxiv-digest/pkg/types"
)

// PageSize is the number of records the details API returns per full page.
const PageSize = 100

const dateLayout = "2006-01-02"

// Query selects the catalog records for one run.
type Query struct {
	Server   string
	Category string
	From     string
	To       string
}

// Window returns the inclusive calendar-date range ending on the date of
// now (in now's location) and starting lookbackDays earlier.
func Window(now time.Time, lookbackDays int) (from, to string) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return today.AddDate(0, 0, -lookbackDays).Format(dateLayout), today.Format(dateLayout)
}

// Client reads the details API.
type Client struct {
	HTTP    *httputil.Client
	BaseURL string
	Logger  zerolog.Logger
	Metrics *observability.Metrics
}

// NewClient builds a Client from cfg.
func NewClient(cfg types.CatalogConfig, logger zerolog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		HTTP:    httputil.NewClient(cfg.HTTPConfig, cfg.RateLimit),
		BaseURL: cfg.BaseURL,
		Logger:  logger,
		Metrics: metrics,
	}
}

// PageURL builds the request URL for the page starting at cursor.
func (c *Client) PageURL(q Query, cursor int) string {
	u := fmt.Sprintf("%s/%s/%s/%s/%d/json",
		strings.TrimRight(c.BaseURL, "/"), url.PathEscape(q.Server), q.From, q.To, cursor)
	if cat := strings.TrimSpace(q.Category); cat != "" {
		u += "?" + url.Values{"category": {cat}}.Encode()
	}
	return u
}

// Page fetches and decodes one page.
func (c *Client) Page(ctx context.Context, q Query, cursor int) (Page, error) {
	var body any
	if err := c.HTTP.GetJSON(ctx, c.PageURL(q, cursor), &body); err != nil {
		return Page{}, err
	}
	return parsePage(body), nil
}

// Fetch pages through the window and returns the unique papers sorted by
// posting date, newest first, with IDs P01.. assigned in that order. Paging
// stops on an empty page, on a short page, or once the cursor reaches the
// total advertised by the API.
func (c *Client) Fetch(ctx context.Context, q Query) ([]types.Paper, error) {
	var records []Record
	cursor := 0
	total := -1

	for {
		page, err := c.Page(ctx, q, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetching %s page at cursor %d: %w", q.Server, cursor, err)
		}
		c.Metrics.RecordPage(page.Size)
		c.Logger.Debug().
			Int("cursor", cursor).
			Int("rows", page.Size).
			Int("total", page.Total).
			Msg("catalog page")

		if page.Size == 0 {
			break
		}
		records = append(records, page.Records...)
		cursor += page.Size

		if total < 0 && page.HasTotal {
			total = page.Total
		}
		if page.Size < PageSize {
			break
		}
		if total >= 0 && cursor >= total {
			break
		}
	}

	papers := Papers(Dedup(records), q.Server)
	c.Metrics.RecordDedup(len(records), len(papers))
	c.Logger.Info().
		Str("from", q.From).
		Str("to", q.To).
		Str("category", q.Category).
		Int("records", len(records)).
		Int("papers", len(papers)).
		Msg("catalog fetched")

	return papers, nil
}
