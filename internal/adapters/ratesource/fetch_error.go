package ratesource

import (
	"fmt"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

// FetchError describes a failed lookup of one rate source.
// It matches apperrors.ErrUpstreamFetch with errors.Is.
type FetchError struct {
	Source     domain.RateSourceID
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Source, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() []error {
	return []error{apperrors.ErrUpstreamFetch, e.Err}
}

func fetchErr(source domain.RateSourceID, status int, format string, args ...any) *FetchError {
	return &FetchError{Source: source, StatusCode: status, Err: fmt.Errorf(format, args...)}
}
