// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package lineage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/apex/log"
)

// TaxID is an NCBI taxonomy identifier.
type TaxID int

// Sentinel errors returned (wrapped) by providers and the Builder. Callers
// should test with errors.Is.
var (
	// ErrTaxonNotFound means the provider has no record of the taxid. Deleted
	// and never-assigned ids both land here.
	ErrTaxonNotFound = errors.New("taxon not found")

	// ErrNoSearchSupport means the provider cannot resolve names to taxids.
	ErrNoSearchSupport = errors.New("provider does not support name search")
)

// Provider supplies the raw taxonomy facts a Builder needs. Implementations
// decide where the facts come from; pkg/taxdump reads local NCBI dump files
// and pkg/entrez asks the live E-utilities endpoints.
type Provider interface {
	// Lineage returns the ancestor chain of id ordered root first and
	// including id itself as the last element.
	Lineage(ctx context.Context, id TaxID) ([]TaxID, error)

	// Names returns scientific names for the given ids. Unknown ids are
	// simply absent from the result map.
	Names(ctx context.Context, ids []TaxID) (map[TaxID]string, error)

	// Ranks returns rank labels ("phylum", "genus", ...) for the given ids.
	// Unknown ids are absent; unranked nodes map to "no rank".
	Ranks(ctx context.Context, ids []TaxID) (map[TaxID]string, error)
}

// Searcher is an optional Provider extension that resolves an organism name
// to candidate taxids.
type Searcher interface {
	SearchNames(ctx context.Context, name string) ([]TaxID, error)
}

// Result is one entry of a BuildMap call. Lineage always holds something
// printable; when Err is non-nil it holds the sentinel value instead of a
// real lineage.
type Result struct {
	Lineage string
	Err     error
}

// OK reports whether the lookup behind this result succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Builder turns taxids into delimited lineage strings. A Builder is cheap,
// immutable after construction and safe for concurrent use when its Provider
// is.
type Builder struct {
	provider Provider
	opts     options
}

// NewBuilder wires a Provider to a set of formatting options.
func NewBuilder(p Provider, opts ...Option) (*Builder, error) {
	if p == nil {
		return nil, errors.New("lineage: nil provider")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.sentinel == "" {
		return nil, errors.New("lineage: sentinel must be non-empty")
	}
	return &Builder{provider: p, opts: o}, nil
}

// Sentinel returns the placeholder emitted for failed lookups.
func (b *Builder) Sentinel() string { return b.opts.sentinel }

// Build resolves one taxid into its lineage string. On any provider failure
// it returns the sentinel together with the wrapped error, so the string
// result is always printable. A taxon whose chain survives rank filtering
// with zero nodes yields ("", nil); that is a successful lookup.
func (b *Builder) Build(ctx context.Context, id TaxID) (string, error) {
	chain, err := b.provider.Lineage(ctx, id)
	if err != nil {
		return b.opts.sentinel, fmt.Errorf("lineage of taxon %d: %w", id, err)
	}

	names, err := b.provider.Names(ctx, chain)
	if err != nil {
		return b.opts.sentinel, fmt.Errorf("names for taxon %d: %w", id, err)
	}
	ranks, err := b.provider.Ranks(ctx, chain)
	if err != nil {
		return b.opts.sentinel, fmt.Errorf("ranks for taxon %d: %w", id, err)
	}

	segments := make([]string, 0, len(chain))
	for _, node := range chain {
		name, ok := names[node]
		if !ok {
			// Nameless nodes cannot be rendered.
			continue
		}
		rank := CanonicalRank(ranks[node])
		if !b.opts.keep(rank) {
			continue
		}
		segments = append(segments, b.opts.decorate(rank, name))
	}

	if b.opts.order == OrderLeafToRoot {
		slices.Reverse(segments)
	}

	return strings.Join(segments, b.opts.separator), nil
}

// BuildMap resolves a batch of taxids. Each distinct id is resolved against
// the provider exactly once per call; repeats are served from a memo that
// lives only for the duration of the call. Failed lookups are memoized too,
// so a bad id costs one provider round trip no matter how often it repeats.
// The returned map holds exactly one Result per distinct input id and the
// batch never aborts early.
func (b *Builder) BuildMap(ctx context.Context, ids []TaxID) map[TaxID]Result {
	results := make(map[TaxID]Result, len(ids))
	for _, id := range ids {
		if _, seen := results[id]; seen {
			continue
		}
		lin, err := b.Build(ctx, id)
		if err != nil {
			log.Debugf("taxon %d unresolved: %v", id, err)
		}
		results[id] = Result{Lineage: lin, Err: err}
	}
	return results
}
