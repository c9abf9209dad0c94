package pgsql

import (
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UserRepo:     NewUserRepository(dbPool),
		RateSnapshot: NewRateSnapshotRepository(dbPool),
	}
}
