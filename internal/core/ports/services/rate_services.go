package services

import (
	"context"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RateFetcher performs one outbound lookup for a single rate source.
type RateFetcher interface {
	SourceID() domain.RateSourceID
	// Fetch returns a finite positive value or an error wrapping apperrors.ErrUpstreamFetch.
	Fetch(ctx context.Context) (float64, error)
}

// RateReader serves point-in-time reads of cached rates.
type RateReader interface {
	// Read never blocks and never fetches. It returns apperrors.ErrRateNotReady
	// until the source has been fetched successfully once.
	Read(source domain.RateSourceID) (domain.RateValue, error)
}

// RateCacheSvc owns the background refresh of every configured rate source.
type RateCacheSvc interface {
	RateReader
	Start(ctx context.Context)
	Stop()
}

// RateSvcFacade exposes rates derived from cached sources.
type RateSvcFacade interface {
	// BTCInUAH returns BTC/USD multiplied by USD/UAH, rounded to two decimals.
	BTCInUAH(ctx context.Context) (decimal.Decimal, error)
}
