package services

import (
	"context"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

// CredentialVerifierSvc decides whether an email/password pair matches a stored user.
type CredentialVerifierSvc interface {
	// Verify returns the matching user, apperrors.ErrInvalidCredentials on any mismatch,
	// or an error wrapping apperrors.ErrStorageUnavailable when the store cannot be read.
	Verify(ctx context.Context, email, password string) (*domain.User, error)
}

// SessionIssuerSvc turns a verified identity into a signed session token.
type SessionIssuerSvc interface {
	Issue(ctx context.Context, subject string) (token string, expiresAt *time.Time, err error)
}

// SessionVerifierSvc validates previously issued session tokens.
type SessionVerifierSvc interface {
	// Verify returns apperrors.ErrUnauthorized for every kind of invalid token.
	Verify(ctx context.Context, token string) (*domain.Session, error)
}

// SessionSvcFacade combines issuing and verifying sessions.
type SessionSvcFacade interface {
	SessionIssuerSvc
	SessionVerifierSvc
}
