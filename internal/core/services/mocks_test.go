package services_test

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

// --- Mock EventPublisher ---
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishUserCreated(ctx context.Context, event domain.UserCreatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishRateUpdated(ctx context.Context, event domain.RateUpdatedEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// --- Mock RateSnapshotStore ---
type MockRateSnapshotStore struct {
	MockRateSnapshotWriter
}

func (m *MockRateSnapshotStore) FindRateSnapshot(ctx context.Context, source domain.RateSourceID) (*domain.RateValue, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RateValue), args.Error(1)
}

// --- Mock RateSnapshotWriter ---
type MockRateSnapshotWriter struct {
	mock.Mock
}

func (m *MockRateSnapshotWriter) SaveRateSnapshot(ctx context.Context, rate domain.RateValue) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

// --- Mock RateReader ---
type MockRateReader struct {
	mock.Mock
}

func (m *MockRateReader) Read(source domain.RateSourceID) (domain.RateValue, error) {
	args := m.Called(source)
	return args.Get(0).(domain.RateValue), args.Error(1)
}

// stubFetcher returns queued results in order and repeats the last one.
type stubFetcher struct {
	id domain.RateSourceID

	mu      sync.Mutex
	results []stubResult
	calls   int
}

type stubResult struct {
	value float64
	err   error
}

func newStubFetcher(id domain.RateSourceID, results ...stubResult) *stubFetcher {
	return &stubFetcher{id: id, results: results}
}

func (f *stubFetcher) SourceID() domain.RateSourceID { return f.id }

func (f *stubFetcher) Fetch(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.calls
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	f.calls++
	r := f.results[idx]
	return r.value, r.err
}

func (f *stubFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
