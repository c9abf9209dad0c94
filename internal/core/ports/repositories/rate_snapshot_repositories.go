package repositories

import (
	"context"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

// RateSnapshotWriter mirrors freshly fetched rate values to shared storage.
type RateSnapshotWriter interface {
	SaveRateSnapshot(ctx context.Context, rate domain.RateValue) error
}

// RateSnapshotReader loads mirrored rate values.
type RateSnapshotReader interface {
	// FindRateSnapshot returns apperrors.ErrNotFound when the source was never mirrored.
	FindRateSnapshot(ctx context.Context, source domain.RateSourceID) (*domain.RateValue, error)
}

// RateSnapshotStore combines reading and writing rate snapshots
type RateSnapshotStore interface {
	RateSnapshotReader
	RateSnapshotWriter
}
