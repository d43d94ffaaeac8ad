// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package entrez

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
)

const efetchHuman = `<?xml version="1.0" ?>
<TaxaSet>
  <Taxon>
    <TaxId>9606</TaxId>
    <ScientificName>Homo sapiens</ScientificName>
    <Rank>species</Rank>
    <LineageEx>
      <Taxon><TaxId>131567</TaxId><ScientificName>cellular organisms</ScientificName><Rank>no rank</Rank></Taxon>
      <Taxon><TaxId>2759</TaxId><ScientificName>Eukaryota</ScientificName><Rank>domain</Rank></Taxon>
      <Taxon><TaxId>9605</TaxId><ScientificName>Homo</ScientificName><Rank>genus</Rank></Taxon>
    </LineageEx>
  </Taxon>
</TaxaSet>`

const esummaryHuman = `{"header":{"type":"esummary","version":"0.3"},"result":{
  "uids":["9606","9605"],
  "9606":{"uid":"9606","scientificname":"Homo sapiens","rank":"species","division":"primates"},
  "9605":{"uid":"9605","scientificname":"Homo","rank":"genus","division":"primates"},
  "12345678":{"uid":"12345678","error":"cannot get document summary"}}}`

const esearchColi = `{"header":{"type":"esearch","version":"0.3"},"esearchresult":{
  "count":"2","retmax":"2","retstart":"0","idlist":["562","622"]}}`

// newTestServer returns a server faking the three E-utilities endpoints and
// a counter of requests it saw per endpoint.
func newTestServer(t *testing.T) (*httptest.Server, map[string]int) {
	t.Helper()
	hits := make(map[string]int)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/efetch.fcgi"):
			hits["efetch"]++
			if r.URL.Query().Get("id") == "9606" {
				w.Write([]byte(efetchHuman))
				return
			}
			// NCBI answers unknown ids with an empty set, not an error.
			w.Write([]byte(`<?xml version="1.0" ?><TaxaSet/>`))
		case strings.HasSuffix(r.URL.Path, "/esummary.fcgi"):
			hits["esummary"]++
			w.Write([]byte(esummaryHuman))
		case strings.HasSuffix(r.URL.Path, "/esearch.fcgi"):
			hits["esearch"]++
			w.Write([]byte(esearchColi))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}

func TestClient_Lineage(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	chain, err := c.Lineage(context.Background(), 9606)
	require.NoError(t, err)
	assert.Equal(t, []lineage.TaxID{131567, 2759, 9605, 9606}, chain,
		"LineageEx ancestors root first, then the taxon itself")
}

func TestClient_Lineage_Unknown(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	_, err := c.Lineage(context.Background(), 12345678)
	assert.ErrorIs(t, err, lineage.ErrTaxonNotFound)
}

func TestClient_NamesAndRanks(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	names, err := c.Names(context.Background(), []lineage.TaxID{9606, 9605, 12345678})
	require.NoError(t, err)
	assert.Equal(t, map[lineage.TaxID]string{
		9606: "Homo sapiens",
		9605: "Homo",
	}, names, "the errored uid is omitted")

	ranks, err := c.Ranks(context.Background(), []lineage.TaxID{9606, 9605})
	require.NoError(t, err)
	assert.Equal(t, "species", ranks[9606])
	assert.Equal(t, "genus", ranks[9605])
}

func TestClient_Names_EmptyBatch(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv, hits := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	names, err := c.Names(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.Zero(t, hits["esummary"], "no request for an empty batch")
}

func TestClient_SearchNames(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv, _ := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	hits, err := c.SearchNames(context.Background(), "Escherichia coli")
	require.NoError(t, err)
	assert.Equal(t, []lineage.TaxID{562, 622}, hits)

	hits, err = c.SearchNames(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, hits, "blank terms never hit the wire")
}

func TestClient_DiskCache(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "1")
	t.Setenv("TAXACTL_CACHE_DIR", t.TempDir())
	srv, hits := newTestServer(t)
	c := NewClient(WithBaseURL(srv.URL))

	ctx := context.Background()
	_, err := c.Lineage(ctx, 9606)
	require.NoError(t, err)
	_, err = c.Lineage(ctx, 9606)
	require.NoError(t, err)
	assert.Equal(t, 1, hits["efetch"], "second fetch is served from disk")

	// Names and Ranks share one esummary document.
	_, err = c.Names(ctx, []lineage.TaxID{9606, 9605})
	require.NoError(t, err)
	_, err = c.Ranks(ctx, []lineage.TaxID{9606, 9605})
	require.NoError(t, err)
	assert.Equal(t, 1, hits["esummary"])
}

func TestClient_Etiquette(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")

	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		w.Write([]byte(efetchHuman))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("secret"),
		WithTool("taxactl-test", "dev@example.org"),
	)

	_, err := c.Lineage(context.Background(), 9606)
	require.NoError(t, err)
	assert.Contains(t, got, "api_key=secret")
	assert.Contains(t, got, "tool=taxactl-test")
	assert.Contains(t, got, "email=dev%40example.org")
}

func TestClient_ServerError(t *testing.T) {
	t.Setenv("TAXACTL_CACHE", "0")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Lineage(context.Background(), 9606)
	assert.ErrorContains(t, err, "429")
}
