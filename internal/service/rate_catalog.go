package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"pharmapos/internal/port"
	"pharmapos/internal/tax"
)

// RateCatalog serves a tax.Resolver built from the HSN master. The master is
// reloaded lazily once the cached copy is older than the refresh interval.
type RateCatalog struct {
	repo     port.HSNRepository
	defaults tax.Defaults
	refresh  time.Duration
	log      *zap.Logger
	now      func() time.Time

	group    singleflight.Group
	mu       sync.RWMutex
	resolver *tax.Resolver
	loadedAt time.Time
}

// NewRateCatalog creates a RateCatalog. A zero refresh interval caches forever.
func NewRateCatalog(repo port.HSNRepository, defaults tax.Defaults, refresh time.Duration, log *zap.Logger) *RateCatalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &RateCatalog{
		repo:     repo,
		defaults: defaults,
		refresh:  refresh,
		log:      log,
		now:      time.Now,
	}
}

// Resolver returns the current resolver, loading the HSN master on first use
// or when the cache is stale. A failed refresh keeps serving the stale copy.
func (c *RateCatalog) Resolver(ctx context.Context) (*tax.Resolver, error) {
	c.mu.RLock()
	r, loadedAt := c.resolver, c.loadedAt
	c.mu.RUnlock()

	if r != nil && (c.refresh <= 0 || c.now().Sub(loadedAt) < c.refresh) {
		return r, nil
	}

	// one reload per stale copy, however many callers see it stale
	_, err, _ := c.group.Do("hsn", func() (interface{}, error) {
		c.mu.RLock()
		reloaded := c.loadedAt.After(loadedAt)
		c.mu.RUnlock()
		if reloaded {
			return nil, nil
		}
		return nil, c.Reload(ctx)
	})
	if err != nil {
		if r != nil {
			c.log.Warn("HSN master refresh failed, serving cached rates", zap.Error(err))
			return r, nil
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resolver, nil
}

// Reload rebuilds the resolver from the repository.
func (c *RateCatalog) Reload(ctx context.Context) error {
	entries, err := c.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading HSN master: %w", err)
	}
	lookup := tax.NewHSNLookup(entries)
	r := tax.NewResolver(lookup, c.defaults)

	c.mu.Lock()
	c.resolver = r
	c.loadedAt = c.now()
	c.mu.Unlock()

	chain := make([]string, 0, 6)
	for _, src := range r.Chain() {
		chain = append(chain, string(src))
	}
	c.log.Info("HSN master loaded", zap.Int("codes", lookup.Len()), zap.Strings("rate_chain", chain))
	return nil
}
