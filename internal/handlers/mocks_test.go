package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock CredentialVerifier ---
type MockCredentialVerifier struct {
	mock.Mock
}

var _ portssvc.CredentialVerifierSvc = (*MockCredentialVerifier)(nil)

func (m *MockCredentialVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock SessionService ---
type MockSessionService struct {
	mock.Mock
}

var _ portssvc.SessionSvcFacade = (*MockSessionService)(nil)

func (m *MockSessionService) Issue(ctx context.Context, subject string) (string, *time.Time, error) {
	args := m.Called(ctx, subject)
	var exp *time.Time
	if args.Get(1) != nil {
		exp = args.Get(1).(*time.Time)
	}
	return args.String(0), exp, args.Error(2)
}

func (m *MockSessionService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

// --- Mock UserService ---
type MockUserService struct {
	mock.Mock
}

var _ portssvc.UserSvcFacade = (*MockUserService)(nil)

func (m *MockUserService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// --- Mock RateService ---
type MockRateService struct {
	mock.Mock
}

var _ portssvc.RateSvcFacade = (*MockRateService)(nil)

func (m *MockRateService) BTCInUAH(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// fixedFetcher always returns the same value.
type fixedFetcher struct {
	id    domain.RateSourceID
	value float64
}

func (f fixedFetcher) SourceID() domain.RateSourceID { return f.id }

func (f fixedFetcher) Fetch(context.Context) (float64, error) { return f.value, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
