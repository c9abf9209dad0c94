package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
	"github.com/SscSPs/btc_rate_service/internal/utils"
)

// sessionService issues and verifies HS256 session tokens.
type sessionService struct {
	BaseService
	secret string
	issuer string
	expiry time.Duration
	now    func() time.Time
}

// SessionOption configures the session service
type SessionOption func(*sessionService)

// WithSessionClock overrides time.Now, mainly for expiry tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *sessionService) {
		s.now = now
	}
}

// NewSessionService creates a session service. A zero expiry issues tokens without exp.
func NewSessionService(secret, issuer string, expiry time.Duration, logger *slog.Logger, options ...SessionOption) portssvc.SessionSvcFacade {
	s := &sessionService{
		BaseService: BaseService{Logger: logger},
		secret:      secret,
		issuer:      issuer,
		expiry:      expiry,
		now:         time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.SessionSvcFacade = (*sessionService)(nil)

func (s *sessionService) Issue(ctx context.Context, subject string) (string, *time.Time, error) {
	if subject == "" {
		return "", nil, fmt.Errorf("%w: session subject is empty", apperrors.ErrValidation)
	}
	token, expiresAt, err := utils.GenerateJWT(subject, s.secret, s.expiry, s.issuer, s.now())
	if err != nil {
		s.LogError(ctx, err, "Failed to sign session token")
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, expiresAt, nil
}

func (s *sessionService) Verify(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthorized
	}
	claims, err := utils.ParseAndValidateJWT(token, s.secret, s.issuer, s.now())
	if err != nil {
		s.LogDebug(ctx, "Session token rejected", slog.String("error", err.Error()))
		return nil, apperrors.ErrUnauthorized
	}

	session := &domain.Session{
		TokenID: claims.ID,
		Subject: claims.Subject,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		session.ExpiresAt = &exp
	}
	return session, nil
}
