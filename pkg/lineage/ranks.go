// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package lineage

import "strings"

// DefaultRanks are the seven canonical ranks a Builder keeps unless told
// otherwise, ordered root to leaf.
var DefaultRanks = []string{
	"domain",
	"phylum",
	"class",
	"order",
	"family",
	"genus",
	"species",
}

// gtdbCodes maps canonical ranks to their GTDB one-letter codes.
var gtdbCodes = map[string]string{
	"domain":  "d",
	"phylum":  "p",
	"class":   "c",
	"order":   "o",
	"family":  "f",
	"genus":   "g",
	"species": "s",
}

// CanonicalRank normalizes a rank label for matching. NCBI renamed
// superkingdom to domain in 2025 and dumps in the wild carry either
// spelling.
func CanonicalRank(rank string) string {
	rank = strings.ToLower(strings.TrimSpace(rank))
	if rank == "superkingdom" {
		return "domain"
	}
	return rank
}

func rankSet(ranks ...string) map[string]bool {
	set := make(map[string]bool, len(ranks))
	for _, r := range ranks {
		set[CanonicalRank(r)] = true
	}
	return set
}

func (o *options) keep(rank string) bool {
	if o.ranks == nil {
		return true
	}
	return o.ranks[rank]
}

// decorate renders one lineage segment. GTDB codes exist only for the seven
// canonical ranks; other nodes keep their plain name apart from the
// underscore substitution.
func (o *options) decorate(rank, name string) string {
	if !o.rankPrefixes {
		return name
	}
	underscored := strings.ReplaceAll(name, " ", "_")
	code, ok := gtdbCodes[rank]
	if !ok {
		return underscored
	}
	return code + "__" + underscored
}
