// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package output

import (
	"sort"
	"strings"
)

// SortDataset sorts the result set in place per the --sort spec: a comma
// separated list of output keys, each optionally prefixed with "-" for
// descending order and/or "!" for case-sensitive string comparison. An empty
// spec leaves the dataset untouched.
func SortDataset(dataset []map[string]interface{}, spec string) {
	if spec == "" {
		return
	}

	type sortKey struct {
		key           string
		descending    bool
		caseSensitive bool
	}

	var keys []sortKey
	for _, raw := range strings.Split(spec, ",") {
		raw = strings.TrimSpace(raw)
		k := sortKey{}
		if strings.HasPrefix(raw, "-") {
			k.descending = true
			raw = raw[1:]
		}
		if strings.HasPrefix(raw, "!") {
			k.caseSensitive = true
			raw = raw[1:]
		}
		if raw == "" {
			continue
		}
		k.key = raw
		keys = append(keys, k)
	}

	sort.SliceStable(dataset, func(i, j int) bool {
		for _, k := range keys {
			cmp := compareValues(dataset[i][k.key], dataset[j][k.key], k.caseSensitive)
			if cmp == 0 {
				continue
			}
			if k.descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// compareValues orders two row values. Numbers compare numerically, strings
// lexically (case-insensitive unless told otherwise), everything else falls
// back to its string rendering. Missing values sort first.
func compareValues(a, b interface{}, caseSensitive bool) int {
	an, aNum := toFloat(a)
	bn, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}

	as := InterfaceToString(a)
	bs := InterfaceToString(b)
	if !caseSensitive {
		as = strings.ToLower(as)
		bs = strings.ToLower(bs)
	}
	return strings.Compare(as, bs)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
