package schedule

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"shutdowns-bot/internal/logger"
)

// DefaultFreshness is how long a fetched table is served without refetching.
const DefaultFreshness = 10 * time.Minute

// Source returns the raw schedule page for a variant.
type Source interface {
	Fetch(ctx context.Context, v Variant) (string, error)
}

// Recorder receives cache and fetch observations.
type Recorder interface {
	ObserveFetch(variant string, d time.Duration, err error)
	CacheLookup(hit bool)
}

// Options controls a GetTable call.
type Options struct {
	// Force skips the freshness check and refetches today's table.
	Force bool
	// Next fetches tomorrow's table. It is never cached.
	Next bool
}

// Cache holds the latest current-day table. The stored snapshot is replaced
// as a whole, so readers never see a partial table.
type Cache struct {
	source    Source
	freshness time.Duration
	now       func() time.Time
	log       logger.Logger
	rec       Recorder

	current atomic.Pointer[Snapshot]
	flight  singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the cache logger.
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cache) { c.log = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) CacheOption {
	return func(c *Cache) { c.rec = r }
}

// NewCache creates a cache over src. A non-positive freshness falls back to
// DefaultFreshness.
func NewCache(src Source, freshness time.Duration, opts ...CacheOption) *Cache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	c := &Cache{
		source:    src,
		freshness: freshness,
		now:       time.Now,
		log:       logger.Nop{},
		rec:       nopRecorder{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetTable returns a schedule table according to opts. The caller gets its
// own copy and may not affect the cached one.
func (c *Cache) GetTable(ctx context.Context, opts Options) (Table, error) {
	if opts.Next {
		return c.fetchNext(ctx)
	}

	if !opts.Force {
		if snap := c.current.Load(); snap != nil && c.now().Sub(snap.FetchedAt) < c.freshness {
			c.rec.CacheLookup(true)
			return snap.Table.Clone(), nil
		}
	}
	c.rec.CacheLookup(false)

	snap, err := c.refresh(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Table.Clone(), nil
}

// Snapshot returns the stored current-day snapshot, if any.
func (c *Cache) Snapshot() (Snapshot, bool) {
	snap := c.current.Load()
	if snap == nil {
		return Snapshot{}, false
	}
	return Snapshot{Table: snap.Table.Clone(), FetchedAt: snap.FetchedAt}, true
}

// refresh fetches today's table and swaps it in. Concurrent callers share one
// fetch. A failed refresh leaves the previous snapshot untouched.
func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	v, err := c.do(ctx, Current, func(fctx context.Context) (any, error) {
		table, err := c.load(fctx, Current)
		if err != nil {
			return nil, err
		}
		snap := &Snapshot{Table: table, FetchedAt: c.now()}
		c.current.Store(snap)
		c.log.Infof("schedule refreshed: %d groups", len(table))
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// fetchNext loads tomorrow's table. It has no access to the stored snapshot.
func (c *Cache) fetchNext(ctx context.Context) (Table, error) {
	v, err := c.do(ctx, Next, func(fctx context.Context) (any, error) {
		return c.load(fctx, Next)
	})
	if err != nil {
		return nil, err
	}
	return v.(Table).Clone(), nil
}

// do runs fn once per variant for all concurrent callers. The shared fetch is
// detached from any single caller's cancellation; each caller still stops
// waiting when its own ctx ends.
func (c *Cache) do(ctx context.Context, v Variant, fn func(context.Context) (any, error)) (any, error) {
	ch := c.flight.DoChan(v.String(), func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (c *Cache) load(ctx context.Context, v Variant) (Table, error) {
	started := time.Now()
	table, err := c.fetchAndParse(ctx, v)
	c.rec.ObserveFetch(v.String(), time.Since(started), err)
	if err != nil {
		c.log.Errorf("failed to load %s schedule: %v", v, err)
		return nil, err
	}
	return table, nil
}

func (c *Cache) fetchAndParse(ctx context.Context, v Variant) (Table, error) {
	raw, err := c.source.Fetch(ctx, v)
	if err != nil {
		return nil, err
	}
	return ParseTable(raw)
}

type nopRecorder struct{}

func (nopRecorder) ObserveFetch(string, time.Duration, error) {}
func (nopRecorder) CacheLookup(bool)                          {}
