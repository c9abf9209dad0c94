package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateSnapshotRepository keeps the latest value of every rate source in the rate_snapshots table.
type RateSnapshotRepository struct {
	db *pgxpool.Pool
}

// NewRateSnapshotRepository creates a new RateSnapshotRepository.
func NewRateSnapshotRepository(db *pgxpool.Pool) *RateSnapshotRepository {
	return &RateSnapshotRepository{db: db}
}

var _ portsrepo.RateSnapshotStore = (*RateSnapshotRepository)(nil)

// SaveRateSnapshot upserts the value for its source. An older snapshot never overwrites a newer one.
func (r *RateSnapshotRepository) SaveRateSnapshot(ctx context.Context, rate domain.RateValue) error {
	query := `
		INSERT INTO rate_snapshots (source, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (source) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
		WHERE rate_snapshots.updated_at < EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query, string(rate.Source), rate.Value, rate.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error saving rate snapshot: %w", err)
	}
	return nil
}

// FindRateSnapshot retrieves the stored value of a source.
func (r *RateSnapshotRepository) FindRateSnapshot(ctx context.Context, source domain.RateSourceID) (*domain.RateValue, error) {
	query := `
		SELECT source, value, updated_at
		FROM rate_snapshots
		WHERE source = $1
	`
	var (
		rate domain.RateValue
		id   string
	)
	err := r.db.QueryRow(ctx, query, string(source)).Scan(&id, &rate.Value, &rate.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("error finding rate snapshot: %w", err)
	}
	rate.Source = domain.RateSourceID(id)
	return &rate, nil
}
