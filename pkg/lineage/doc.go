// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

// Package lineage builds taxonomic lineage strings from NCBI taxids.
//
// A Builder asks a Provider for a taxon's ancestor chain plus the names and
// ranks of the chain nodes, filters the chain to the ranks of interest and
// joins the names with a separator:
//
//	p, err := taxdump.Open("/data/taxdump")
//	if err != nil { ... }
//	b, err := lineage.NewBuilder(p)
//	if err != nil { ... }
//	lin, err := b.Build(ctx, 9606)
//	// "Eukaryota; Chordata; Mammalia; Primates; Hominidae; Homo; Homo sapiens"
//
// Build never leaves the caller without a printable value: lookups that fail
// return a sentinel string ("NA" by default) alongside the error. BuildMap
// applies the same contract to a whole batch, resolving each distinct id
// once and tagging per-id failures instead of aborting:
//
//	results := b.BuildMap(ctx, []lineage.TaxID{9606, 562, 9606})
//	// len(results) == 2, one provider resolution per distinct id
//
// The memo behind BuildMap lives only for the duration of the call. For
// caching that survives across calls, wrap the provider with
// NewCachedProvider.
package lineage
