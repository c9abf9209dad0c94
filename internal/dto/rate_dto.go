package dto

// BTCRateResponse carries the BTC price in UAH formatted with two decimals.
type BTCRateResponse struct {
	BTCRateUAH string `json:"btcRateUAH"`
}
