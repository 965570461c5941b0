// Package query caches API reads by key. Concurrent reads of the same key
// share one request, fresh entries are served without a request, and failed
// reads are retried with backoff unless the server rejected the request.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tw-accounting/twacc/pkg/client"
)

// Keys used by the pages. Per-record keys append "/<id>".
const (
	KeyAccounts       = "accounts"
	KeyTransactions   = "transactions"
	KeyProjects       = "projects"
	KeyCategories     = "categories"
	KeyCounterparties = "counterparties"
	KeyCryptoRates    = "crypto-rates"
	KeyCurrencies     = "crypto-currencies"
	KeyProfile        = "profile"
)

// Default tuning.
const (
	DefaultStaleTime  = 30 * time.Second
	DefaultRetries    = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxBackoff = 30 * time.Second
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Cache is a keyed result cache. The zero value is not usable; call New.
type Cache struct {
	staleTime  time.Duration
	attempts   int
	baseDelay  time.Duration
	maxBackoff time.Duration
	now        func() time.Time
	logger     *slog.Logger

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	// gen is bumped by Invalidate and Clear so a fetch that started before
	// does not repopulate the cache with pre-mutation data.
	gen uint64
}

// Option configures a Cache.
type Option func(*Cache)

func WithStaleTime(d time.Duration) Option { return func(c *Cache) { c.staleTime = d } }

// WithRetry sets the total number of attempts and the first backoff delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(c *Cache) {
		c.attempts = attempts
		c.baseDelay = baseDelay
	}
}

func WithLogger(l *slog.Logger) Option { return func(c *Cache) { c.logger = l } }

func withClock(now func() time.Time) Option { return func(c *Cache) { c.now = now } }

func New(opts ...Option) *Cache {
	c := &Cache{
		staleTime:  DefaultStaleTime,
		attempts:   DefaultRetries,
		baseDelay:  DefaultBaseDelay,
		maxBackoff: DefaultMaxBackoff,
		now:        time.Now,
		logger:     slog.Default(),
		entries:    make(map[string]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.attempts < 1 {
		c.attempts = 1
	}
	return c
}

// Fetch returns the cached value for key if it is fresh, and otherwise calls
// fn (retrying as configured) and caches the result.
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (T, error) {
	if v, ok := Peek[T](c, key); ok {
		return v, nil
	}

	c.mu.Lock()
	gen := c.gen
	c.mu.Unlock()

	// Calls started before an Invalidate or Clear must not be joined by
	// calls made after it.
	flight := strconv.FormatUint(gen, 10) + "\x00" + key
	res, err, _ := c.group.Do(flight, func() (any, error) {
		v, err := c.retry(ctx, key, func(ctx context.Context) (any, error) { return fn(ctx) })
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = entry{value: v, fetchedAt: c.now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	v, ok := res.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query.Fetch: key %q holds %T", key, res)
	}
	return v, nil
}

// Peek returns the cached value for key if present and fresh.
func Peek[T any](c *Cache, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero T
	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.staleTime {
		return zero, false
	}
	v, ok := e.value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Invalidate drops every entry whose key equals prefix or starts with
// prefix + "/".
func (c *Cache) Invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			delete(c.entries, k)
		}
	}
	c.gen++
}

// Clear drops everything. Called on logout so the next user never sees the
// previous user's records.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.gen++
}

func (c *Cache) retry(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	delay := c.baseDelay
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if !retryable(err) || attempt == c.attempts {
			break
		}
		c.logger.Debug("query retry", "component", "query", "key", key, "attempt", attempt, "error", err)

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, c.maxBackoff)
	}
	return nil, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !client.IsClientError(err)
}
