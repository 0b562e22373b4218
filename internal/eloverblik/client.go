// Package eloverblik is a client for the Eloverblik customer API
// (https://api.eloverblik.dk), the Danish metering data portal. The
// short-lived access token is obtained from the configured refresh token,
// and hourly consumption is fetched per metering point.
package eloverblik

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/mhandberg/elcost/internal/timeline"
	"github.com/mhandberg/elcost/pkg/models"
)

const defaultBaseURL = "https://api.eloverblik.dk/customerapi/api"

// AuthError represents an authentication failure
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Client talks to the Eloverblik customer API
type Client struct {
	baseURL      string
	refreshToken string
	httpClient   *http.Client
}

// NewClient creates a new Eloverblik client with the given refresh token
func NewClient(refreshToken string) *Client {
	return NewClientWithBaseURL(refreshToken, defaultBaseURL)
}

// NewClientWithBaseURL creates a new Eloverblik client against a custom base URL
func NewClientWithBaseURL(refreshToken, baseURL string) *Client {
	return &Client{
		baseURL:      baseURL,
		refreshToken: refreshToken,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// MeteringPoint describes one metering point owned by the token holder
type MeteringPoint struct {
	MeteringPointID string `json:"meteringPointId"`
	TypeOfMP        string `json:"typeOfMP"`
	StreetName      string `json:"streetName"`
	CityName        string `json:"cityName"`
}

// GetAccessToken exchanges the refresh token for a short-lived access token.
// A rejected token is an AuthError: fatal, no retry.
func (c *Client) GetAccessToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/token", nil)
	if err != nil {
		return "", fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.refreshToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting access token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("token exchange failed (status %d): token invalid or expired: %s", resp.StatusCode, string(body)),
		}
	}

	var tokenResp struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decoding token response: %w", err)
	}
	if tokenResp.Result == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	return tokenResp.Result, nil
}

// GetMeteringPoints lists the metering points available to the token holder
func (c *Client) GetMeteringPoints(ctx context.Context, accessToken string) ([]MeteringPoint, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/meteringpoints/meteringpoints", nil)
	if err != nil {
		return nil, fmt.Errorf("creating metering points request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting metering points: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("metering points request returned status %d: %s", resp.StatusCode, string(body))
	}

	var pointsResp struct {
		Result []MeteringPoint `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pointsResp); err != nil {
		return nil, fmt.Errorf("decoding metering points response: %w", err)
	}

	return pointsResp.Result, nil
}

// timeSeriesResponse mirrors the MyEnergyData market document returned by
// the gettimeseries endpoint. Each Period is anchored to a UTC start
// instant; the Nth point inside it is start + N hours.
type timeSeriesResponse struct {
	Result []struct {
		MyEnergyDataMarketDocument struct {
			TimeSeries []struct {
				Period []struct {
					TimeInterval struct {
						Start string `json:"start"`
						End   string `json:"end"`
					} `json:"timeInterval"`
					Point []struct {
						Position string `json:"position"`
						Quantity string `json:"out_Quantity.quantity"`
						Quality  string `json:"out_Quantity.quality"`
					} `json:"Point"`
				} `json:"Period"`
			} `json:"TimeSeries"`
		} `json:"MyEnergyData_MarketDocument"`
	} `json:"result"`
}

// GetTimeSeries fetches hourly consumption for one metering point over an
// inclusive date range. Timestamps in the result are UTC instants as
// reported by the API.
func (c *Client) GetTimeSeries(ctx context.Context, accessToken, pointID string, from, to time.Time) ([]models.HourlyUsage, error) {
	url := fmt.Sprintf("%s/meterdata/gettimeseries/%s/%s/Hour",
		c.baseURL, from.Format("2006-01-02"), to.Format("2006-01-02"))

	payload := map[string]map[string][]string{
		"meteringPoints": {"meteringPoint": {pointID}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding time series payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("creating time series request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting time series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("time series request for %s returned status %d: %s", pointID, resp.StatusCode, string(respBody))
	}

	var tsResp timeSeriesResponse
	if err := json.NewDecoder(resp.Body).Decode(&tsResp); err != nil {
		return nil, fmt.Errorf("decoding time series response: %w", err)
	}

	var records []models.HourlyUsage
	for _, result := range tsResp.Result {
		for _, series := range result.MyEnergyDataMarketDocument.TimeSeries {
			for _, period := range series.Period {
				start, err := time.Parse(time.RFC3339, period.TimeInterval.Start)
				if err != nil {
					return nil, fmt.Errorf("parsing period start %q: %w", period.TimeInterval.Start, err)
				}
				for idx, point := range period.Point {
					qty, err := strconv.ParseFloat(point.Quantity, 64)
					if err != nil {
						// Missing or unreadable quantity counts as zero usage
						qty = 0
					}
					records = append(records, models.HourlyUsage{
						Time: start.Add(time.Duration(idx) * time.Hour),
						KWh:  qty,
					})
				}
			}
		}
	}

	return records, nil
}

// FetchUsage fetches hourly consumption for all points over an inclusive
// date range and merges it into one household-level series keyed by
// canonical local hour, summing across metering points. Points with no
// data in the window are skipped with a warning; zero records across all
// points is an error since there is nothing to reconcile. An empty points
// list means all points available to the token.
func (c *Client) FetchUsage(ctx context.Context, points []string, from, to time.Time) (timeline.Series, error) {
	access, err := c.GetAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		mps, err := c.GetMeteringPoints(ctx, access)
		if err != nil {
			return nil, fmt.Errorf("discovering metering points: %w", err)
		}
		for _, mp := range mps {
			points = append(points, mp.MeteringPointID)
		}
		fmt.Printf("Found %d metering point(s)\n", len(points))
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("no metering points available for this token")
	}

	usage := timeline.Series{}
	dropped := 0
	for _, point := range points {
		records, err := c.GetTimeSeries(ctx, access, point, from, to)
		if err != nil {
			fmt.Printf("⚠ No data for %s: %v\n", point, err)
			continue
		}
		if len(records) == 0 {
			fmt.Printf("⚠ No data for %s in this window, skipping\n", point)
			continue
		}
		for _, record := range records {
			if !usage.Add(record.Time, record.KWh) {
				dropped++
			}
		}
	}

	if dropped > 0 {
		fmt.Printf("⚠ Dropped %d record(s) in the DST-ambiguous hour\n", dropped)
	}
	if len(usage) == 0 {
		return nil, fmt.Errorf("no usage records for any metering point between %s and %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	return usage, nil
}
