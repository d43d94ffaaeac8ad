// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package lineage

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/dustin/go-humanize"
)

// Compile-time check that the decorator still satisfies the provider
// contract.
var _ Provider = (*CachedProvider)(nil)

// CachedProvider wraps another Provider with an in-memory ristretto cache.
// Neighboring taxa share most of their ancestor chain, so chain, name and
// rank lookups repeat heavily across a batch of related ids; the cache keeps
// those off the wire. Only successful lookups are cached. Failures stay
// uncached so a transient provider error does not stick.
type CachedProvider struct {
	inner Provider
	cache *ristretto.Cache
	ttl   time.Duration
}

type cacheOptions struct {
	sizeSpec    string
	numCounters int64
	ttl         time.Duration
}

// CacheOption adjusts a CachedProvider.
type CacheOption func(*cacheOptions)

// WithCacheSize sets the cache budget from a human-readable byte size such
// as "64 MiB" or "1GB". The default is 64 MiB.
func WithCacheSize(size string) CacheOption {
	return func(o *cacheOptions) { o.sizeSpec = size }
}

// WithCacheTTL expires entries after the given duration. Zero, the default,
// keeps entries until they are evicted.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(o *cacheOptions) { o.ttl = ttl }
}

// NewCachedProvider decorates inner with an in-memory cache.
func NewCachedProvider(inner Provider, opts ...CacheOption) (*CachedProvider, error) {
	o := cacheOptions{
		sizeSpec:    "64 MiB",
		numCounters: 1e6,
	}
	for _, opt := range opts {
		opt(&o)
	}

	maxCost, err := humanize.ParseBytes(o.sizeSpec)
	if err != nil {
		return nil, fmt.Errorf("cache size %q: %w", o.sizeSpec, err)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: o.numCounters,
		MaxCost:     int64(maxCost),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &CachedProvider{inner: inner, cache: cache, ttl: o.ttl}, nil
}

// Close releases the cache goroutines. The inner provider is untouched.
func (cp *CachedProvider) Close() {
	cp.cache.Close()
}

// Lineage implements Provider.
func (cp *CachedProvider) Lineage(ctx context.Context, id TaxID) ([]TaxID, error) {
	key := fmt.Sprintf("l:%d", id)
	if v, ok := cp.cache.Get(key); ok {
		if chain, ok := v.([]TaxID); ok {
			return chain, nil
		}
	}
	chain, err := cp.inner.Lineage(ctx, id)
	if err != nil {
		return nil, err
	}
	cp.set(key, chain, int64(8*len(chain)))
	return chain, nil
}

// Names implements Provider. Cached ids are served locally and only the
// misses travel to the inner provider.
func (cp *CachedProvider) Names(ctx context.Context, ids []TaxID) (map[TaxID]string, error) {
	return cp.lookup(ctx, ids, "n:", cp.inner.Names)
}

// Ranks implements Provider.
func (cp *CachedProvider) Ranks(ctx context.Context, ids []TaxID) (map[TaxID]string, error) {
	return cp.lookup(ctx, ids, "r:", cp.inner.Ranks)
}

// SearchNames passes through to the inner provider when it supports search.
func (cp *CachedProvider) SearchNames(ctx context.Context, name string) ([]TaxID, error) {
	s, ok := cp.inner.(Searcher)
	if !ok {
		return nil, ErrNoSearchSupport
	}
	return s.SearchNames(ctx, name)
}

type batchFn func(context.Context, []TaxID) (map[TaxID]string, error)

func (cp *CachedProvider) lookup(ctx context.Context, ids []TaxID, prefix string, fetch batchFn) (map[TaxID]string, error) {
	out := make(map[TaxID]string, len(ids))
	missing := make([]TaxID, 0, len(ids))
	for _, id := range ids {
		if v, ok := cp.cache.Get(prefix + fmt.Sprint(id)); ok {
			if s, ok := v.(string); ok {
				out[id] = s
				continue
			}
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return out, nil
	}

	fetched, err := fetch(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, value := range fetched {
		out[id] = value
		cp.set(prefix+fmt.Sprint(id), value, int64(len(value)))
	}
	return out, nil
}

func (cp *CachedProvider) set(key string, value any, cost int64) {
	if cp.ttl > 0 {
		cp.cache.SetWithTTL(key, value, cost, cp.ttl)
	} else {
		cp.cache.Set(key, value, cost)
	}
	// Ristretto admits writes through an async buffer; Wait makes the entry
	// visible to the next lookup.
	cp.cache.Wait()
}
