package elpris

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mhandberg/elcost/internal/timeline"
)

// dayDocument builds a minimal per-day price document with 24 hourly rows
func dayDocument(day time.Time, price float64) string {
	doc := "["
	for h := 0; h < 24; h++ {
		if h > 0 {
			doc += ","
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), h, 0, 0, 0, time.FixedZone("CEST", 2*3600))
		doc += fmt.Sprintf(`{"DKK_per_kWh":%f,"time_start":"%s"}`, price, start.Format(time.RFC3339))
	}
	return doc + "]"
}

func TestFetchDay(t *testing.T) {
	day := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2025/07-01_DK2.json", r.URL.Path)
		fmt.Fprint(w, dayDocument(day, 1.5))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL)
	prices, err := client.FetchDay(context.Background(), day, "DK2")
	require.NoError(t, err)
	require.Len(t, prices, 24)
	assert.InDelta(t, 1.5, prices[0].DKKPerKWh, 0.0001)
	assert.Equal(t, 0, prices[0].Time.Hour())
}

func TestFetchRange(t *testing.T) {
	from := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC)

	t.Run("Concatenates Days In Order", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/2025/07-01_DK2.json":
				fmt.Fprint(w, dayDocument(from, 1.0))
			case "/2025/07-02_DK2.json":
				fmt.Fprint(w, dayDocument(from.AddDate(0, 0, 1), 2.0))
			case "/2025/07-03_DK2.json":
				fmt.Fprint(w, dayDocument(from.AddDate(0, 0, 2), 3.0))
			default:
				http.NotFound(w, r)
			}
		}))
		defer srv.Close()

		client := NewClientWithBaseURL(srv.URL)
		prices, err := client.FetchRange(context.Background(), from, to, "DK2")
		require.NoError(t, err)
		require.Len(t, prices, 72)

		assert.True(t, sort.SliceIsSorted(prices, func(i, j int) bool {
			return prices[i].Time.Before(prices[j].Time)
		}), "output order never depends on arrival order")
		assert.InDelta(t, 1.0, prices[0].DKKPerKWh, 0.0001)
		assert.InDelta(t, 3.0, prices[71].DKKPerKWh, 0.0001)
	})

	t.Run("Failed Day Skipped", func(t *testing.T) {
		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			switch r.URL.Path {
			case "/2025/07-01_DK2.json":
				fmt.Fprint(w, dayDocument(from, 1.0))
			case "/2025/07-03_DK2.json":
				fmt.Fprint(w, dayDocument(from.AddDate(0, 0, 2), 3.0))
			default:
				http.Error(w, "upstream broken", http.StatusInternalServerError)
			}
		}))
		defer srv.Close()

		client := NewClientWithBaseURL(srv.URL)
		prices, err := client.FetchRange(context.Background(), from, to, "DK2")
		require.NoError(t, err, "one bad day degrades, it does not abort")
		assert.Len(t, prices, 48)
		assert.Equal(t, int32(3), requests.Load(), "the failed day does not cancel the others")
	})

	t.Run("Every Day Requested Across Spring Forward", func(t *testing.T) {
		// 03-28 through 03-31 with local midnights is 71 elapsed hours, not
		// 72; each calendar day must still get its own request.
		from := time.Date(2025, 3, 28, 0, 0, 0, 0, timeline.Zone())
		to := time.Date(2025, 3, 31, 0, 0, 0, 0, timeline.Zone())

		var mu sync.Mutex
		requested := map[string]bool{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			requested[r.URL.Path] = true
			mu.Unlock()
			fmt.Fprint(w, dayDocument(from, 1.0))
		}))
		defer srv.Close()

		client := NewClientWithBaseURL(srv.URL)
		_, err := client.FetchRange(context.Background(), from, to, "DK2")
		require.NoError(t, err)

		for _, path := range []string{
			"/2025/03-28_DK2.json",
			"/2025/03-29_DK2.json",
			"/2025/03-30_DK2.json",
			"/2025/03-31_DK2.json",
		} {
			assert.True(t, requested[path], "missing request for %s", path)
		}
	})

	t.Run("Nothing Fetched Is An Error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		client := NewClientWithBaseURL(srv.URL)
		_, err := client.FetchRange(context.Background(), from, to, "DK2")
		assert.ErrorContains(t, err, "no prices fetched")
	})
}
