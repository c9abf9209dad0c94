package ratesource

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
)

// DefaultBitstampURL is the public BTC/USD ticker.
const DefaultBitstampURL = "https://www.bitstamp.net/api/ticker/btcusd/"

// bitstampTickerResponse holds the only ticker field we use.
// Bitstamp sends numbers as strings, e.g. {"last": "64123", ...}.
type bitstampTickerResponse struct {
	Last json.Number `json:"last"`
}

// BitstampTicker reads the last BTC/USD trade price from the Bitstamp ticker.
type BitstampTicker struct {
	url    string
	client *http.Client
}

// NewBitstampTicker creates a fetcher. An empty url selects DefaultBitstampURL.
func NewBitstampTicker(url string, client *http.Client) *BitstampTicker {
	if url == "" {
		url = DefaultBitstampURL
	}
	if client == nil {
		client = NewHTTPClient(DefaultTimeout, DefaultMaxRedirects)
	}
	return &BitstampTicker{url: url, client: client}
}

var _ portssvc.RateFetcher = (*BitstampTicker)(nil)

func (b *BitstampTicker) SourceID() domain.RateSourceID {
	return domain.RateBTCUSD
}

func (b *BitstampTicker) Fetch(ctx context.Context) (float64, error) {
	body, status, err := getBody(ctx, b.client, domain.RateBTCUSD, b.url, "application/json")
	if err != nil {
		return 0, err
	}

	var ticker bitstampTickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fetchErr(domain.RateBTCUSD, status, "failed to decode response: %w", err)
	}
	if ticker.Last == "" {
		return 0, fetchErr(domain.RateBTCUSD, status, "response has no last price")
	}

	value, err := strconv.ParseFloat(ticker.Last.String(), 64)
	if err != nil {
		return 0, fetchErr(domain.RateBTCUSD, status, "invalid last price %q: %w", ticker.Last, err)
	}
	if err := checkRate(domain.RateBTCUSD, status, value); err != nil {
		return 0, err
	}
	return value, nil
}
