package repositories

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	UserRepo     UserRepositoryFacade
	RateSnapshot RateSnapshotStore // optional, nil when no shared store is configured
}
