// Package yahoo fetches historical closing prices from the Yahoo Finance
// chart API. It is the external data provider behind market.Provider; the
// core never imports it.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/marketsim/fosim/market"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// Client is a Yahoo Finance chart API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client. An empty baseURL selects the public host.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// chartResponse mirrors the v8/finance/chart payload, closes only.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Candles returns the symbol's closing prices over the lookback window,
// chronologically ascending. Null closes (market holidays, halted sessions)
// are skipped, so gaps are simply fewer samples.
//
// A symbol Yahoo does not know, or a response without a usable close
// column, surfaces as market.ErrDataUnavailable.
func (c *Client) Candles(ctx context.Context, symbol string, lookback, interval time.Duration) ([]market.Point, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	params := url.Values{}
	params.Set("range", rangeParam(lookback))
	params.Set("interval", intervalParam(interval))
	params.Set("includePrePost", "false")

	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Yahoo rejects requests without a browser-ish agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (fosim)")

	c.log.Debug().Str("symbol", symbol).Str("url", reqURL).Msg("fetching candles")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", market.ErrDataUnavailable, symbol)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chart API status %d: %s", resp.StatusCode, body)
	}

	var chart chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", market.ErrDataUnavailable, symbol, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s: no close column", market.ErrDataUnavailable, symbol)
	}

	result := chart.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	points := make([]market.Point, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		points = append(points, market.Point{
			Time:  time.Unix(ts, 0).UTC(),
			Price: *closes[i],
		})
	}

	c.log.Debug().Str("symbol", symbol).Int("samples", len(points)).Msg("candles fetched")
	return points, nil
}

func rangeParam(lookback time.Duration) string {
	days := int(lookback.Hours() / 24)
	if days < 1 {
		days = 1
	}
	return fmt.Sprintf("%dd", days)
}

func intervalParam(interval time.Duration) string {
	switch {
	case interval <= time.Minute:
		return "1m"
	case interval <= 5*time.Minute:
		return "5m"
	case interval <= 15*time.Minute:
		return "15m"
	case interval <= time.Hour:
		return "1h"
	default:
		return "1d"
	}
}
