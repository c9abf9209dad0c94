package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/handlers"
	"github.com/SscSPs/btc_rate_service/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type RateHandlerTestSuite struct {
	suite.Suite
	router   *gin.Engine
	sessions *MockSessionService
	rates    *MockRateService
}

func (s *RateHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.sessions = new(MockSessionService)
	s.rates = new(MockRateService)

	s.router = gin.New()
	err := handlers.RegisterRoutes(s.router, &config.Config{IsProduction: true, LoginRateLimit: "1000-M", CreateRateLimit: "1000-M"}, &portssvc.ServiceContainer{
		Credentials: new(MockCredentialVerifier),
		Sessions:    s.sessions,
		User:        new(MockUserService),
		Rates:       s.rates,
	}, nil)
	s.Require().NoError(err)
}

func (s *RateHandlerTestSuite) TearDownTest() {
	s.sessions.AssertExpectations(s.T())
	s.rates.AssertExpectations(s.T())
}

func TestRateHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(RateHandlerTestSuite))
}

func (s *RateHandlerTestSuite) get(authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/btcRate", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RateHandlerTestSuite) authorize() {
	s.sessions.On("Verify", mock.Anything, "good").Return(&domain.Session{Subject: "a@x.io"}, nil).Once()
}

func (s *RateHandlerTestSuite) TestGetBTCRate_Success() {
	s.authorize()
	s.rates.On("BTCInUAH", mock.Anything).Return(decimal.RequireFromString("1350000"), nil).Once()

	w := s.get("Bearer good")

	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"btcRateUAH":"1350000.00"}`, w.Body.String())
}

func (s *RateHandlerTestSuite) TestGetBTCRate_NotReady() {
	s.authorize()
	s.rates.On("BTCInUAH", mock.Anything).Return(decimal.Zero, apperrors.ErrRateNotReady).Once()

	w := s.get("Bearer good")

	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RateHandlerTestSuite) TestGetBTCRate_Stale() {
	s.authorize()
	s.rates.On("BTCInUAH", mock.Anything).Return(decimal.Zero, apperrors.ErrRateStale).Once()

	w := s.get("Bearer good")

	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RateHandlerTestSuite) TestGetBTCRate_Unauthorized() {
	s.sessions.On("Verify", mock.Anything, "forged").Return(nil, apperrors.ErrUnauthorized).Once()

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer forged"} {
		w := s.get(header)
		s.Equal(http.StatusUnauthorized, w.Code, header)
		s.JSONEq(`{"error":"Unauthorized"}`, w.Body.String())
	}
	s.rates.AssertNotCalled(s.T(), "BTCInUAH", mock.Anything)
}

func (s *RateHandlerTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusOK, w.Code)
	s.Equal("OK", w.Body.String())
}
