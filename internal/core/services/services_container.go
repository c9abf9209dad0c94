package services

import (
	"fmt"
	"log/slog"

	"github.com/SscSPs/btc_rate_service/internal/core/ports"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// publisher may be nil.
func NewServiceContainer(
	cfg *config.Config,
	repos portsrepo.RepositoryProvider,
	fetchers []RateSourceConfig,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) (*portssvc.ServiceContainer, error) {
	container := &portssvc.ServiceContainer{}

	cacheOpts := []RateCacheOption{WithMaxStaleness(cfg.RateMaxStaleness)}
	if repos.RateSnapshot != nil {
		cacheOpts = append(cacheOpts, WithSnapshotWriter(repos.RateSnapshot), WithSnapshotReader(repos.RateSnapshot))
	}
	userOpts := []UserServiceOption{WithMinPasswordLength(cfg.PasswordMinLength)}
	if publisher != nil {
		cacheOpts = append(cacheOpts, WithRateEventPublisher(publisher))
		userOpts = append(userOpts, WithUserEventPublisher(publisher))
	}

	cache, err := NewRateCache(logger, fetchers, cacheOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate cache: %w", err)
	}
	container.RateCache = cache
	container.Rates = NewRateService(cache, logger)

	container.Credentials = NewCredentialVerifier(repos.UserRepo, cfg.BcryptCost, logger, WithPasswordRehash(repos.UserRepo))
	container.Sessions = NewSessionService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiryDuration, logger)
	container.User = NewUserService(repos.UserRepo, cfg.BcryptCost, logger, userOpts...)

	return container, nil
}
