package domain

import "time"

// RateSourceID identifies one externally sourced rate.
type RateSourceID string

const (
	// RateBTCUSD is the price of one bitcoin in US dollars.
	RateBTCUSD RateSourceID = "btc_usd"
	// RateUSDUAH is the price of one US dollar in Ukrainian hryvnia.
	RateUSDUAH RateSourceID = "usd_uah"
)

// RateValue is the last successfully fetched value of a rate source.
type RateValue struct {
	Source    RateSourceID `json:"source"`
	Value     float64      `json:"value"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Age reports how old the value is relative to now.
func (r RateValue) Age(now time.Time) time.Duration {
	return now.Sub(r.UpdatedAt)
}
