// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package entrez

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/cacheutil"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

var (
	_ lineage.Provider = (*Client)(nil)
	_ lineage.Searcher = (*Client)(nil)
)

// Client talks to the NCBI E-utilities taxonomy database. It is safe for
// concurrent use. Construct one with NewClient.
type Client struct {
	baseURL string
	apiKey  string
	tool    string
	email   string
	http    *http.Client
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL points the client somewhere other than the public NCBI
// endpoint. Tests use this with httptest servers.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIKey attaches an NCBI api key to every request, which raises the
// server-side rate limit from 3 to 10 requests per second.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithTool sets the etiquette parameters NCBI asks every client to send.
func WithTool(tool, email string) Option {
	return func(c *Client) {
		c.tool = tool
		c.email = email
	}
}

// WithHTTPClient injects the http.Client used for all requests. Timeouts
// belong here.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient builds a Client against the public E-utilities endpoint unless
// told otherwise.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		tool:    "taxactl",
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// efetch taxonomy XML, reduced to the fields the provider needs.
type taxonXML struct {
	TaxID          int        `xml:"TaxId"`
	ScientificName string     `xml:"ScientificName"`
	Rank           string     `xml:"Rank"`
	LineageEx      []taxonRef `xml:"LineageEx>Taxon"`
}

type taxonRef struct {
	TaxID int `xml:"TaxId"`
}

type taxaSetXML struct {
	Taxa []taxonXML `xml:"Taxon"`
}

// Lineage implements lineage.Provider via efetch. The chain is the LineageEx
// ancestors in document order (NCBI emits them root first) followed by the
// queried taxon itself. An empty TaxaSet means NCBI has never heard of the
// id.
func (c *Client) Lineage(ctx context.Context, id lineage.TaxID) ([]lineage.TaxID, error) {
	params := url.Values{}
	params.Set("db", "taxonomy")
	params.Set("id", strconv.Itoa(int(id)))

	doc, err := c.fetch(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var set taxaSetXML
	if err := xml.Unmarshal(doc, &set); err != nil {
		return nil, fmt.Errorf("efetch taxid %d: %w", id, err)
	}
	if len(set.Taxa) == 0 {
		return nil, fmt.Errorf("taxid %d: %w", id, lineage.ErrTaxonNotFound)
	}

	taxon := set.Taxa[0]
	chain := make([]lineage.TaxID, 0, len(taxon.LineageEx)+1)
	for _, anc := range taxon.LineageEx {
		chain = append(chain, lineage.TaxID(anc.TaxID))
	}
	// The record's own TaxId, not the requested id: merged ids come back
	// under their current identity.
	chain = append(chain, lineage.TaxID(taxon.TaxID))
	return chain, nil
}

// Names implements lineage.Provider via esummary. Ids NCBI reports an error
// for are left out of the map.
func (c *Client) Names(ctx context.Context, ids []lineage.TaxID) (map[lineage.TaxID]string, error) {
	return c.summaryField(ctx, ids, "scientificname")
}

// Ranks implements lineage.Provider.
func (c *Client) Ranks(ctx context.Context, ids []lineage.TaxID) (map[lineage.TaxID]string, error) {
	return c.summaryField(ctx, ids, "rank")
}

// SearchNames implements lineage.Searcher via esearch. The term is matched
// by NCBI's own query engine, so synonyms and common names resolve too.
func (c *Client) SearchNames(ctx context.Context, name string) ([]lineage.TaxID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("db", "taxonomy")
	params.Set("term", name)
	params.Set("retmode", "json")

	doc, err := c.fetch(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var hits []lineage.TaxID
	for _, uid := range gjson.GetBytes(doc, "esearchresult.idlist").Array() {
		hits = append(hits, lineage.TaxID(uid.Int()))
	}
	return hits, nil
}

// summaryField fetches one esummary document for the batch and plucks a
// single field per uid out of it. Names and Ranks share the same document,
// so with the disk cache enabled the second call never leaves the machine.
func (c *Client) summaryField(ctx context.Context, ids []lineage.TaxID, field string) (map[lineage.TaxID]string, error) {
	out := make(map[lineage.TaxID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	joined := make([]string, 0, len(ids))
	for _, id := range ids {
		joined = append(joined, strconv.Itoa(int(id)))
	}

	params := url.Values{}
	params.Set("db", "taxonomy")
	params.Set("id", strings.Join(joined, ","))
	params.Set("retmode", "json")

	doc, err := c.fetch(ctx, "esummary.fcgi", params)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(doc, "result")
	for _, id := range ids {
		entry := result.Get(strconv.Itoa(int(id)))
		if !entry.Exists() || entry.Get("error").Exists() {
			continue
		}
		if v := entry.Get(field); v.Exists() {
			out[id] = v.String()
		}
	}
	return out, nil
}

// fetch runs one GET against the E-utilities, consulting the disk cache
// first. The full request URL minus the credentials is the cache key.
func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	target := c.baseURL + "/" + endpoint + "?" + params.Encode()

	if entry, ok := cacheutil.Read([]string{"entrez"}, target); ok {
		log.Debugf("cache hit: %s", entry.Path)
		return entry.Data, nil
	}

	if c.tool != "" {
		params.Set("tool", c.tool)
	}
	if c.email != "" {
		params.Set("email", c.email)
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", endpoint, resp.Status)
	}

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if err := cacheutil.Write([]string{"entrez"}, target, doc.Bytes()); err != nil {
		log.Warnf("failed to write response to cache: %v", err)
	}

	return doc.Bytes(), nil
}
