// Package elpris fetches day-ahead spot prices from the Elprisenligenu API
// (https://www.elprisenligenu.dk/elpris-api). The API serves one calendar
// day per request, so a range fetch fans out one request per day.
package elpris

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mhandberg/elcost/pkg/models"
)

const defaultBaseURL = "https://www.elprisenligenu.dk/api/v1/prices"

// fetchConcurrency bounds the parallel per-day requests
const fetchConcurrency = 4

// Client talks to the Elprisenligenu price API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new price client
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new price client against a custom base URL
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// priceEntry is one hour in the per-day price document. time_start carries
// a zone offset, so it parses to the right instant year-round.
type priceEntry struct {
	DKKPerKWh float64 `json:"DKK_per_kWh"`
	TimeStart string  `json:"time_start"`
}

// FetchDay fetches the hourly spot prices for a single calendar day and
// zone. DST-transition days legitimately return 23 or 25 entries.
func (c *Client) FetchDay(ctx context.Context, day time.Time, zone string) ([]models.SpotPrice, error) {
	url := fmt.Sprintf("%s/%s_%s.json", c.baseURL, day.Format("2006/01-02"), zone)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating price request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("price API returned status %d: %s", resp.StatusCode, string(body))
	}

	var entries []priceEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	prices := make([]models.SpotPrice, 0, len(entries))
	for _, entry := range entries {
		start, err := time.Parse(time.RFC3339, entry.TimeStart)
		if err != nil {
			return nil, fmt.Errorf("parsing price timestamp %q: %w", entry.TimeStart, err)
		}
		prices = append(prices, models.SpotPrice{Time: start, DKKPerKWh: entry.DKKPerKWh})
	}

	return prices, nil
}

// FetchRange fetches hourly spot prices for an inclusive date range,
// issuing bounded parallel per-day requests. A failed day is logged and
// skipped; the call only fails when nothing at all was fetched. Results
// are re-sorted by timestamp so arrival order never affects output.
func (c *Client) FetchRange(ctx context.Context, from, to time.Time, zone string) ([]models.SpotPrice, error) {
	// Enumerate calendar days rather than dividing elapsed hours: a range
	// spanning a DST transition is not a multiple of 24h, and truncation
	// would silently drop the last day.
	var days []time.Time
	for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("invalid price range: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	perDay := make([][]models.SpotPrice, len(days))
	errs := make([]error, len(days))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)
	for n, day := range days {
		g.Go(func() error {
			prices, err := c.FetchDay(gctx, day, zone)
			if err != nil {
				errs[n] = err
				return nil // a single missing day degrades, it does not abort
			}
			perDay[n] = prices
			return nil
		})
	}
	g.Wait()

	var all []models.SpotPrice
	for n, day := range days {
		if errs[n] != nil {
			fmt.Printf("⚠ Failed fetching prices for %s: %v\n", day.Format("2006-01-02"), errs[n])
			continue
		}
		all = append(all, perDay[n]...)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no prices fetched between %s and %s for zone %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"), zone)
	}

	sort.Slice(all, func(i, j int) bool { return all[i].Time.Before(all[j].Time) })
	return all, nil
}

// midnight truncates t to the start of its calendar day, keeping the location
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
