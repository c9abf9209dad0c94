package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SscSPs/btc_rate_service/internal/apperrors"
	"github.com/SscSPs/btc_rate_service/internal/core/domain"
	"github.com/SscSPs/btc_rate_service/internal/core/ports"
	portsrepo "github.com/SscSPs/btc_rate_service/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/btc_rate_service/internal/core/ports/services"
)

// RateSourceConfig binds a fetcher to its refresh interval.
type RateSourceConfig struct {
	Fetcher  portssvc.RateFetcher
	Interval time.Duration
}

// FetchResult is the outcome of one fetch of one source.
type FetchResult struct {
	Source    domain.RateSourceID
	Value     float64
	Err       error
	FetchedAt time.Time
}

type rateSource struct {
	fetcher  portssvc.RateFetcher
	interval time.Duration
	current  atomic.Pointer[domain.RateValue] // nil until the first successful fetch or seed
}

// RateCache keeps the last good value of every rate source and refreshes
// each source on its own ticker. Reads are lock-free and never fetch.
type RateCache struct {
	BaseService
	sources      map[domain.RateSourceID]*rateSource
	order        []domain.RateSourceID
	maxStaleness time.Duration
	snapshots    portsrepo.RateSnapshotWriter
	seeds        portsrepo.RateSnapshotReader
	events       ports.EventPublisher
	now          func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// RateCacheOption configures the rate cache
type RateCacheOption func(*RateCache)

// WithMaxStaleness makes Read fail with apperrors.ErrRateStale for values older than d.
// Zero disables the check.
func WithMaxStaleness(d time.Duration) RateCacheOption {
	return func(c *RateCache) {
		c.maxStaleness = d
	}
}

// WithSnapshotWriter mirrors every accepted value to shared storage.
func WithSnapshotWriter(w portsrepo.RateSnapshotWriter) RateCacheOption {
	return func(c *RateCache) {
		c.snapshots = w
	}
}

// WithSnapshotReader fills each empty source from its stored snapshot before
// the first fetch. The snapshot keeps its own update time.
func WithSnapshotReader(r portsrepo.RateSnapshotReader) RateCacheOption {
	return func(c *RateCache) {
		c.seeds = r
	}
}

// WithRateEventPublisher publishes rates.updated for every accepted value.
func WithRateEventPublisher(p ports.EventPublisher) RateCacheOption {
	return func(c *RateCache) {
		c.events = p
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) RateCacheOption {
	return func(c *RateCache) {
		c.now = now
	}
}

// NewRateCache creates a cache for the given sources. Source ids must be unique
// and intervals positive.
func NewRateCache(logger *slog.Logger, sources []RateSourceConfig, options ...RateCacheOption) (*RateCache, error) {
	c := &RateCache{
		BaseService: BaseService{Logger: logger},
		sources:     make(map[domain.RateSourceID]*rateSource, len(sources)),
		now:         time.Now,
	}
	for _, src := range sources {
		if src.Fetcher == nil {
			return nil, errors.New("rate source has no fetcher")
		}
		id := src.Fetcher.SourceID()
		if src.Interval <= 0 {
			return nil, fmt.Errorf("rate source %s: interval must be positive", id)
		}
		if _, dup := c.sources[id]; dup {
			return nil, fmt.Errorf("rate source %s configured twice", id)
		}
		c.sources[id] = &rateSource{fetcher: src.Fetcher, interval: src.Interval}
		c.order = append(c.order, id)
	}
	for _, option := range options {
		option(c)
	}
	return c, nil
}

var _ portssvc.RateCacheSvc = (*RateCache)(nil)

// Start fetches every source immediately and then on its own interval until
// ctx is cancelled or Stop is called. Calling Start on a running cache does nothing.
func (c *RateCache) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	for _, id := range c.order {
		src := c.sources[id]
		c.wg.Add(1)
		go c.refreshLoop(ctx, src)
	}
	c.LogInfo(ctx, "Rate cache started", slog.Int("sources", len(c.order)))
}

// Stop cancels all refresh loops and waits for in-flight fetches to return.
func (c *RateCache) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.cancel()
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
	c.LogInfo(context.Background(), "Rate cache stopped")
}

func (c *RateCache) refreshLoop(ctx context.Context, src *rateSource) {
	defer c.wg.Done()

	c.seed(ctx, src)
	c.refresh(ctx, src)

	ticker := time.NewTicker(src.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx, src)
		}
	}
}

// seed loads the stored snapshot of an empty source. It never mirrors or publishes.
func (c *RateCache) seed(ctx context.Context, src *rateSource) {
	if c.seeds == nil || src.current.Load() != nil {
		return
	}
	id := src.fetcher.SourceID()
	snap, err := c.seeds.FindRateSnapshot(ctx, id)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			c.LogWarn(ctx, "Failed to load rate snapshot", slog.String("source", string(id)), slog.String("error", err.Error()))
		}
		return
	}
	if snap == nil || snap.Source != id || math.IsNaN(snap.Value) || math.IsInf(snap.Value, 0) || snap.Value <= 0 {
		c.LogWarn(ctx, "Ignoring invalid rate snapshot", slog.String("source", string(id)))
		return
	}
	seeded := *snap
	if src.current.CompareAndSwap(nil, &seeded) {
		c.LogInfo(ctx, "Rate seeded from snapshot", slog.String("source", string(id)), slog.Time("updated_at", seeded.UpdatedAt))
	}
}

func (c *RateCache) refresh(ctx context.Context, src *rateSource) {
	value, err := src.fetcher.Fetch(ctx)
	if ctx.Err() != nil {
		// Shutting down; a cancelled fetch is not a source failure.
		return
	}
	c.OnFetchComplete(ctx, FetchResult{
		Source:    src.fetcher.SourceID(),
		Value:     value,
		Err:       err,
		FetchedAt: c.now(),
	})
}

// OnFetchComplete is the only write path into the cache. A failed or invalid
// result leaves the stored value untouched. A successful result replaces the
// stored value only if it is strictly newer. It reports whether the value was stored.
func (c *RateCache) OnFetchComplete(ctx context.Context, res FetchResult) bool {
	src, ok := c.sources[res.Source]
	if !ok {
		c.LogWarn(ctx, "Fetch result for unknown rate source", slog.String("source", string(res.Source)))
		return false
	}

	if res.Err == nil && (math.IsNaN(res.Value) || math.IsInf(res.Value, 0) || res.Value <= 0) {
		res.Err = fmt.Errorf("%w: non-positive or non-finite value %v", apperrors.ErrUpstreamFetch, res.Value)
	}
	if res.Err != nil {
		c.LogError(ctx, res.Err, "Rate refresh failed, keeping previous value",
			slog.String("source", string(res.Source)))
		return false
	}

	next := &domain.RateValue{Source: res.Source, Value: res.Value, UpdatedAt: res.FetchedAt}
	for {
		cur := src.current.Load()
		if cur != nil && !next.UpdatedAt.After(cur.UpdatedAt) {
			c.LogDebug(ctx, "Discarding out-of-order rate result", slog.String("source", string(res.Source)))
			return false
		}
		if src.current.CompareAndSwap(cur, next) {
			break
		}
	}

	c.LogDebug(ctx, "Rate updated", slog.String("source", string(res.Source)), slog.Float64("value", res.Value))
	c.mirror(ctx, *next)
	return true
}

func (c *RateCache) mirror(ctx context.Context, v domain.RateValue) {
	if c.snapshots != nil {
		if err := c.snapshots.SaveRateSnapshot(ctx, v); err != nil {
			c.LogWarn(ctx, "Failed to mirror rate snapshot", slog.String("source", string(v.Source)), slog.String("error", err.Error()))
		}
	}
	if c.events != nil {
		evt := domain.RateUpdatedEvent{Source: v.Source, Value: v.Value, UpdatedAt: v.UpdatedAt}
		if err := c.events.PublishRateUpdated(ctx, evt); err != nil {
			c.LogWarn(ctx, "Failed to publish rate update", slog.String("source", string(v.Source)), slog.String("error", err.Error()))
		}
	}
}

// Read returns the last good value of the source. It returns
// apperrors.ErrRateNotReady before the first success, and the value together
// with apperrors.ErrRateStale when a max staleness is set and exceeded.
func (c *RateCache) Read(id domain.RateSourceID) (domain.RateValue, error) {
	src, ok := c.sources[id]
	if !ok {
		return domain.RateValue{}, fmt.Errorf("%w: unknown source %s", apperrors.ErrRateNotReady, id)
	}
	cur := src.current.Load()
	if cur == nil {
		return domain.RateValue{}, fmt.Errorf("%w: %s", apperrors.ErrRateNotReady, id)
	}
	if c.maxStaleness > 0 && cur.Age(c.now()) > c.maxStaleness {
		return *cur, fmt.Errorf("%w: %s updated %s ago", apperrors.ErrRateStale, id, cur.Age(c.now()).Round(time.Second))
	}
	return *cur, nil
}
