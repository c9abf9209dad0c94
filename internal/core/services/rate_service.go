package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

type rateService struct {
	BaseService
	rates portssvc.RateReader
}

// NewRateService creates the service deriving BTC/UAH from the cached sources.
func NewRateService(rates portssvc.RateReader, logger *slog.Logger) portssvc.RateSvcFacade {
	return &rateService{
		BaseService: BaseService{Logger: logger},
		rates:       rates,
	}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

func (s *rateService) BTCInUAH(ctx context.Context) (decimal.Decimal, error) {
	btcUSD, err := s.rates.Read(domain.RateBTCUSD)
	if err != nil {
		s.LogWarn(ctx, "BTC/USD rate unavailable", slog.String("error", err.Error()))
		return decimal.Zero, fmt.Errorf("btc/usd: %w", err)
	}
	usdUAH, err := s.rates.Read(domain.RateUSDUAH)
	if err != nil {
		s.LogWarn(ctx, "USD/UAH rate unavailable", slog.String("error", err.Error()))
		return decimal.Zero, fmt.Errorf("usd/uah: %w", err)
	}

	return decimal.NewFromFloat(btcUSD.Value).
		Mul(decimal.NewFromFloat(usdUAH.Value)).
		Round(2), nil
}
