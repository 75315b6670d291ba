package cache

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// Resource families. "All jobs", "jobs filtered by customer X" and "job
// detail Y" get distinct keys inside a family so they can be cached and
// invalidated independently.
const (
	FamilyJobs            = "jobs"
	FamilyJobDetail       = "job"
	FamilyJobResponses    = "job-responses"
	FamilyWorkerResponses = "worker-responses"
	FamilyAssignments     = "assignments"
	FamilyRatings         = "ratings"
	FamilyProfile         = "profile"
	FamilyEarnings        = "earnings"
	FamilyTransactions    = "transactions"
	FamilyEarningsSummary = "earnings-summary"
)

// Staleness windows per resource volatility. A stale entry is refetched on
// next access, never on a timer.
var familyTTL = map[string]time.Duration{
	FamilyJobs:            30 * time.Second,
	FamilyJobDetail:       30 * time.Second,
	FamilyJobResponses:    30 * time.Second,
	FamilyWorkerResponses: 2 * time.Minute,
	FamilyAssignments:     30 * time.Second,
	FamilyRatings:         2 * time.Minute,
	FamilyProfile:         5 * time.Minute,
	FamilyEarnings:        time.Minute,
	FamilyTransactions:    time.Minute,
	FamilyEarningsSummary: time.Minute,
}

func TTL(family string) time.Duration {
	if ttl, ok := familyTTL[family]; ok {
		return ttl
	}
	return 30 * time.Second
}

// Key builds a cache key scoped to one session: `sid|family|k=v&k=v`.
// Filters are canonicalized so equal filter sets always map to one key.
func Key(sessionID, family string, filters map[string]string) string {
	var b strings.Builder
	b.WriteString(sessionID)
	b.WriteByte('|')
	b.WriteString(family)
	b.WriteByte('|')
	keys := make([]string, 0, len(filters))
	for k, v := range filters {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(filters[k])
	}
	return b.String()
}

const maxFetchAttempts = 3

// isAuthError matches authentication-class failures by their message
// marker; those are never retried to avoid hammering a logged-out session.
func isAuthError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Authentication") || strings.Contains(msg, "credentials")
}

type entry struct {
	mu        sync.Mutex
	value     any
	hasValue  bool
	expiresAt time.Time
}

// Cache is a request-deduplicating read cache over upstream fetches.
// Concurrent callers for one key share a single in-flight fetch; mutations
// drop dependent keys so the next read refetches. Construct one per process
// and inject it.
type Cache struct {
	log     *slog.Logger
	mu      sync.Mutex
	entries map[string]*entry
}

func New(log *slog.Logger) *Cache {
	return &Cache{log: log, entries: make(map[string]*entry)}
}

func (c *Cache) entryFor(key string) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// GetOrFetch returns the cached value when fresh, otherwise runs fetch and
// stores the result. Fetch failures retry up to 3 attempts unless the
// error is authentication-class.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (any, error)) (any, error) {
	e := c.entryFor(key)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasValue && time.Now().Before(e.expiresAt) {
		return e.value, nil
	}

	var lastErr error
	for attempt := 0; attempt < maxFetchAttempts; attempt++ {
		value, err := fetch(ctx)
		if err == nil {
			e.value = value
			e.hasValue = true
			e.expiresAt = time.Now().Add(ttl)
			return value, nil
		}
		lastErr = err
		if isAuthError(err) {
			break
		}
	}
	return nil, lastErr
}

// Put overwrites a key directly, used when a mutation response already
// carries the fresh detail record.
func (c *Cache) Put(key string, ttl time.Duration, value any) {
	e := c.entryFor(key)
	e.mu.Lock()
	e.value = value
	e.hasValue = true
	e.expiresAt = time.Now().Add(ttl)
	e.mu.Unlock()
}

// Invalidate drops every key of the given families for one session.
func (c *Cache) Invalidate(sessionID string, families ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, family := range families {
		prefix := sessionID + "|" + family + "|"
		for key := range c.entries {
			if strings.HasPrefix(key, prefix) {
				delete(c.entries, key)
			}
		}
	}
}

// InvalidateKey drops one exact key.
func (c *Cache) InvalidateKey(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// DropSession clears everything cached for a session, used on logout.
func (c *Cache) DropSession(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := sessionID + "|"
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Fetch is the typed wrapper around Cache.GetOrFetch.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	value, err := c.GetOrFetch(ctx, key, ttl, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		var zero T
		return zero, nil
	}
	return typed, nil
}
