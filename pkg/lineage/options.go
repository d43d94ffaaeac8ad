// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package lineage

// Order controls which end of the lineage comes first.
type Order int

const (
	// OrderRootToLeaf prints the root-most rank first: "Bacteria; ...; Escherichia coli".
	OrderRootToLeaf Order = iota
	// OrderLeafToRoot prints the queried taxon first.
	OrderLeafToRoot
)

type options struct {
	separator    string
	order        Order
	ranks        map[string]bool // nil keeps every node
	rankPrefixes bool
	sentinel     string
}

func defaultOptions() options {
	return options{
		separator: "; ",
		order:     OrderRootToLeaf,
		ranks:     rankSet(DefaultRanks...),
		sentinel:  "NA",
	}
}

// Option adjusts how a Builder renders lineages.
type Option func(*options)

// WithSeparator sets the string joined between lineage segments.
// The default is "; ".
func WithSeparator(sep string) Option {
	return func(o *options) { o.separator = sep }
}

// WithOrder sets the direction of the rendered lineage.
func WithOrder(order Order) Option {
	return func(o *options) { o.order = order }
}

// WithRanks restricts the lineage to nodes whose rank is in the given set.
// Rank names are matched after canonicalization, so "superkingdom" and
// "domain" select the same nodes.
func WithRanks(ranks ...string) Option {
	return func(o *options) { o.ranks = rankSet(ranks...) }
}

// WithAllRanks keeps every named node of the chain, including unranked ones.
func WithAllRanks() Option {
	return func(o *options) { o.ranks = nil }
}

// WithRankPrefixes renders each segment in GTDB style: a one-letter rank
// code, a double underscore, and the name with spaces replaced by
// underscores ("s__Homo_sapiens").
func WithRankPrefixes() Option {
	return func(o *options) { o.rankPrefixes = true }
}

// WithSentinel sets the placeholder emitted for failed lookups.
// The default is "NA".
func WithSentinel(s string) Option {
	return func(o *options) { o.sentinel = s }
}
