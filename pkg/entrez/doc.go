// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

// Package entrez implements lineage.Provider against the live NCBI
// E-utilities endpoints: efetch for ancestor chains, esummary for names and
// ranks, esearch for name lookups. Responses are cached on disk (see
// internal/cacheutil), so repeated queries for the same ids stay off the
// wire until the cache is purged.
//
// NCBI asks clients to identify themselves and throttles anonymous traffic;
// pass WithAPIKey and WithTool where it matters. Timeouts and proxies belong
// to the injected http.Client, the package adds no retry logic of its own.
package entrez
