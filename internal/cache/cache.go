// Package cache is a keyed store of server data with staleness, in-flight
// deduplication, and optimistic mutation with snapshot rollback. It is the
// request cache the TUI reads through instead of calling the API directly.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// FetchFunc loads fresh data for a key from the network.
type FetchFunc func(ctx context.Context) (any, error)

// OptimisticFunc rewrites the cached value ahead of a mutation's network
// call. It receives the current value (nil when the key is empty) and must
// return a new value rather than mutate in place: cached values are shared
// with readers.
type OptimisticFunc func(current any) any

// CommitFunc performs a mutation's network call.
type CommitFunc func(ctx context.Context) error

type entry struct {
	data      any
	hasData   bool
	fetchedAt time.Time
	fetchErr  error

	// inflight is non-nil while a fetch is running and closed when it
	// settles; joiners wait on it instead of issuing duplicates.
	inflight chan struct{}

	// seq identifies the latest operation on this key. A fetch that
	// settles with a stale seq is discarded, so a slow response can never
	// overwrite newer data or a newer optimistic write.
	seq uint64
}

// Cache is the process-wide query cache. Safe for concurrent use; entries
// live for the life of the process.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

func (c *Cache) ensureLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Query returns the cached value for key, fetching when the entry is absent
// or older than staleTime. Concurrent callers share one fetch per key. When a
// stale entry's refetch fails, the stale value is returned along with the
// error so the caller can keep rendering it.
func (c *Cache) Query(ctx context.Context, key string, staleTime time.Duration, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	e := c.ensureLocked(key)

	if e.hasData && !e.fetchedAt.IsZero() && time.Since(e.fetchedAt) <= staleTime {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}

	if e.inflight != nil {
		ch := e.inflight
		c.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
		c.mu.Lock()
		data, err := e.data, e.fetchErr
		c.mu.Unlock()
		return data, err
	}

	e.seq++
	mySeq := e.seq
	ch := make(chan struct{})
	e.inflight = ch
	staleData, hadData := e.data, e.hasData
	c.mu.Unlock()

	data, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if e.inflight == ch {
		close(ch)
		e.inflight = nil
	}
	if e.seq != mySeq {
		// A newer fetch or a mutation superseded this request; its
		// result is discarded and the current cache value stands.
		e.fetchErr = nil
		return e.data, nil
	}
	e.fetchErr = err
	if err != nil {
		if hadData {
			return staleData, err
		}
		return nil, err
	}
	e.data = data
	e.hasData = true
	e.fetchedAt = time.Now()
	return data, nil
}

// Mutate runs an optimistic mutation against one key. The optimistic rewrite
// is applied, and visible to readers, before commit is called. On commit
// failure the entry is restored verbatim from the snapshot taken beforehand.
// Exactly one optimistic write and at most one rollback happen per call.
//
// Concurrent mutations on the same key are not serialized: each carries its
// own snapshot and last-settled-wins, so overlapping mutations on one key
// can produce an inconsistent entry. Known limitation.
func (c *Cache) Mutate(ctx context.Context, key string, optimistic OptimisticFunc, commit CommitFunc) error {
	c.mu.Lock()
	e := c.ensureLocked(key)
	snapData, snapHas, snapAt := e.data, e.hasData, e.fetchedAt
	e.seq++ // supersede in-flight fetches so their late results are dropped
	if optimistic != nil {
		next := optimistic(e.data)
		e.data = next
		e.hasData = next != nil
	}
	c.mu.Unlock()

	err := commit(ctx)
	if err == nil {
		// Optimistic state is kept as authoritative; callers may
		// Invalidate to force an eventual re-sync.
		return nil
	}

	c.mu.Lock()
	e.data, e.hasData, e.fetchedAt = snapData, snapHas, snapAt
	e.seq++
	c.mu.Unlock()
	return err
}

// Invalidate marks key stale so the next Query refetches. The cached value
// stays readable until then.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.fetchedAt = time.Time{}
	}
}

// InvalidatePrefix marks every key with the given prefix stale. Used after
// create/delete mutations to reconcile whole key families, e.g. every cached
// project list regardless of search term.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if strings.HasPrefix(key, prefix) {
			e.fetchedAt = time.Time{}
		}
	}
}

// Put stores a value directly, as if just fetched.
func (c *Cache) Put(key string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensureLocked(key)
	e.data = data
	e.hasData = true
	e.fetchedAt = time.Now()
	e.seq++
}

// Peek returns the cached value without triggering a fetch.
func (c *Cache) Peek(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || !e.hasData {
		return nil, false
	}
	return e.data, true
}
