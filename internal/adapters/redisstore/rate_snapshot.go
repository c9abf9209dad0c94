package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

// DefaultRatesKeyPrefix prefixes the per-source hashes, e.g. "rates:btc_usd".
const DefaultRatesKeyPrefix = "rates:"

// RateSnapshotStore mirrors cached rates into Redis hashes with "value" and "updated_at" fields.
type RateSnapshotStore struct {
	client redis.Cmdable
	prefix string
}

// NewRateSnapshotStore creates a store; an empty prefix selects DefaultRatesKeyPrefix.
func NewRateSnapshotStore(client redis.Cmdable, prefix string) *RateSnapshotStore {
	if prefix == "" {
		prefix = DefaultRatesKeyPrefix
	}
	return &RateSnapshotStore{client: client, prefix: prefix}
}

var _ portsrepo.RateSnapshotStore = (*RateSnapshotStore)(nil)

func (s *RateSnapshotStore) key(source domain.RateSourceID) string {
	return s.prefix + string(source)
}

func (s *RateSnapshotStore) SaveRateSnapshot(ctx context.Context, rate domain.RateValue) error {
	err := s.client.HSet(ctx, s.key(rate.Source),
		"value", strconv.FormatFloat(rate.Value, 'f', -1, 64),
		"updated_at", rate.UpdatedAt.UTC().Format(time.RFC3339Nano),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save rate snapshot %s: %w", rate.Source, err)
	}
	return nil
}

func (s *RateSnapshotStore) FindRateSnapshot(ctx context.Context, source domain.RateSourceID) (*domain.RateValue, error) {
	fields, err := s.client.HGetAll(ctx, s.key(source)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read rate snapshot %s: %w", source, err)
	}
	if len(fields) == 0 {
		return nil, apperrors.ErrNotFound
	}
	value, err := strconv.ParseFloat(fields["value"], 64)
	if err != nil {
		return nil, fmt.Errorf("invalid rate snapshot value %q: %w", fields["value"], err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid rate snapshot time %q: %w", fields["updated_at"], err)
	}
	return &domain.RateValue{Source: source, Value: value, UpdatedAt: updatedAt}, nil
}
