package ratesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/core/domain"
)

const (
	// DefaultTimeout bounds one fetch including redirects and body read.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxRedirects is how many redirects a fetch follows.
	DefaultMaxRedirects = 10

	maxBodyBytes = 4 << 20
	userAgent    = "btc-rate-service/1.0"
)

// NewHTTPClient returns a client with a total timeout that stops after maxRedirects redirects.
func NewHTTPClient(timeout time.Duration, maxRedirects int) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxRedirects < 0 {
		maxRedirects = DefaultMaxRedirects
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// getBody performs a GET and returns the body and status code of a 2xx response.
func getBody(ctx context.Context, client *http.Client, source domain.RateSourceID, url, accept string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fetchErr(source, 0, "failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fetchErr(source, 0, "failed to make request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, 0, fetchErr(source, resp.StatusCode, "unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, 0, fetchErr(source, resp.StatusCode, "failed to read response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, 0, fetchErr(source, resp.StatusCode, "response larger than %d bytes", maxBodyBytes)
	}
	return body, resp.StatusCode, nil
}

var errNotPositive = errors.New("rate must be a finite positive number")

func checkRate(source domain.RateSourceID, status int, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return &FetchError{Source: source, StatusCode: status, Err: fmt.Errorf("%w, got %v", errNotPositive, v)}
	}
	return nil
}
