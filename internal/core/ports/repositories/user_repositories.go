package repositories

import (
	"context"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUsers returns every stored user.
	FindUsers(ctx context.Context) ([]domain.User, error)

	// FindUserByEmail returns apperrors.ErrNotFound when no user has that email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser appends a new user. It returns apperrors.ErrDuplicate if the email is taken.
	SaveUser(ctx context.Context, user domain.User) error

	// UpdatePasswordHash replaces the stored hash. It returns apperrors.ErrNotFound if no user has that email.
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
}
