package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/dto"
	"github.com/SscSPs/btc_rate_service/internal/middleware"
	"github.com/gin-gonic/gin"
)

type rateHandler struct {
	rates portssvc.RateSvcFacade
}

func newRateHandler(rates portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{rates: rates}
}

func registerRateRoutes(rg *gin.RouterGroup, h *rateHandler) {
	rg.GET("/btcRate", h.GetBTCRate)
}

// GetBTCRate godoc
// @Summary Current BTC price in UAH
// @Description Returns the cached BTC/USD rate multiplied by the cached USD/UAH rate, with two decimals.
// @Tags rates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.BTCRateResponse
// @Failure 401 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /btcRate [get]
func (h *rateHandler) GetBTCRate(c *gin.Context) {
	logger := middleware.GetLoggerFromContext(c)

	rate, err := h.rates.BTCInUAH(c.Request.Context())
	if err != nil {
		if errors.Is(err, apperrors.ErrRateNotReady) || errors.Is(err, apperrors.ErrRateStale) {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: msgRateNotAvailable})
			return
		}
		logger.Error("Failed to compute BTC rate", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msgServerError})
		return
	}

	c.JSON(http.StatusOK, dto.BTCRateResponse{BTCRateUAH: rate.StringFixed(2)})
}
