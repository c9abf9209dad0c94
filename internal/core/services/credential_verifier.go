package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

// PasswordComparer compares a bcrypt hash with a plaintext password.
// It has the signature of bcrypt.CompareHashAndPassword.
type PasswordComparer func(hashedPassword, password []byte) error

// PlaceholderHasher returns a bcrypt-shaped hash of the given cost that matches no password.
type PlaceholderHasher func(cost int) (string, error)

type credentialVerifier struct {
	BaseService
	users       portsrepo.UserReader
	cost        int
	compare     PasswordComparer
	placeholder PlaceholderHasher
	rehashTo    portsrepo.UserWriter
}

// CredentialVerifierOption configures the credential verifier
type CredentialVerifierOption func(*credentialVerifier)

// WithPasswordComparer replaces bcrypt.CompareHashAndPassword.
func WithPasswordComparer(cmp PasswordComparer) CredentialVerifierOption {
	return func(v *credentialVerifier) {
		v.compare = cmp
	}
}

// WithPlaceholderHasher replaces utils.PlaceholderPasswordHash.
func WithPlaceholderHasher(h PlaceholderHasher) CredentialVerifierOption {
	return func(v *credentialVerifier) {
		v.placeholder = h
	}
}

// WithPasswordRehash replaces a stored hash made at another cost with one at
// the configured cost after a successful login.
func WithPasswordRehash(users portsrepo.UserWriter) CredentialVerifierOption {
	return func(v *credentialVerifier) {
		v.rehashTo = users
	}
}

// NewCredentialVerifier creates a verifier that runs exactly one bcrypt comparison per call.
// cost must match the cost used for stored hashes.
func NewCredentialVerifier(users portsrepo.UserReader, cost int, logger *slog.Logger, options ...CredentialVerifierOption) portssvc.CredentialVerifierSvc {
	v := &credentialVerifier{
		BaseService: BaseService{Logger: logger},
		users:       users,
		cost:        cost,
		compare:     bcrypt.CompareHashAndPassword,
		placeholder: utils.PlaceholderPasswordHash,
	}
	for _, option := range options {
		option(v)
	}
	return v
}

var _ portssvc.CredentialVerifierSvc = (*credentialVerifier)(nil)

func (v *credentialVerifier) Verify(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := v.users.FindUserByEmail(ctx, email)
	found := err == nil && user != nil
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		v.LogError(ctx, err, "Failed to read user store during login")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrStorageUnavailable, err)
	}

	var hash string
	if found {
		hash = user.PasswordHash
	} else {
		// Unknown email: compare against a random hash of the same cost.
		hash, err = v.placeholder(v.cost)
		if err != nil {
			v.LogError(ctx, err, "Failed to build placeholder hash")
			return nil, fmt.Errorf("failed to build placeholder hash: %w", err)
		}
	}

	cmpErr := v.compare([]byte(hash), []byte(password))
	if !found {
		return nil, apperrors.ErrInvalidCredentials
	}
	if cmpErr != nil {
		if !errors.Is(cmpErr, bcrypt.ErrMismatchedHashAndPassword) {
			v.LogWarn(ctx, "Stored password hash could not be compared", slog.String("error", cmpErr.Error()))
		}
		return nil, apperrors.ErrInvalidCredentials
	}
	v.rehashIfNeeded(ctx, user, password)
	return user, nil
}

func (v *credentialVerifier) rehashIfNeeded(ctx context.Context, user *domain.User, password string) {
	if v.rehashTo == nil {
		return
	}
	cost, err := bcrypt.Cost([]byte(user.PasswordHash))
	if err != nil || cost == v.cost {
		return
	}
	hash, err := utils.HashPassword(password, v.cost)
	if err != nil {
		v.LogWarn(ctx, "Failed to rehash password", slog.String("error", err.Error()))
		return
	}
	if err := v.rehashTo.UpdatePasswordHash(ctx, user.Email, hash); err != nil {
		v.LogWarn(ctx, "Failed to store rehashed password", slog.String("error", err.Error()))
		return
	}
	user.PasswordHash = hash
	v.LogInfo(ctx, "Password rehashed", slog.Int("from_cost", cost), slog.Int("to_cost", v.cost))
}
