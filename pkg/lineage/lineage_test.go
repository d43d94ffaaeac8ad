// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package lineage

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider serves a small fixed slice of the NCBI taxonomy and counts
// every round trip, so tests can assert how often the provider was hit.
type fakeProvider struct {
	chains map[TaxID][]TaxID
	names  map[TaxID]string
	ranks  map[TaxID]string

	lineageCalls int
	nameCalls    int
	rankCalls    int
	nameBatches  [][]TaxID

	failWith error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		chains: map[TaxID][]TaxID{
			9606:   {1, 131567, 2759, 7711, 40674, 9443, 9604, 9605, 9606},
			562:    {1, 131567, 2, 1224, 1236, 91347, 543, 561, 562},
			131567: {1, 131567},
		},
		names: map[TaxID]string{
			1:      "root",
			131567: "cellular organisms",
			2759:   "Eukaryota",
			7711:   "Chordata",
			40674:  "Mammalia",
			9443:   "Primates",
			9604:   "Hominidae",
			9605:   "Homo",
			9606:   "Homo sapiens",
			2:      "Bacteria",
			1224:   "Proteobacteria",
			1236:   "Gammaproteobacteria",
			91347:  "Enterobacterales",
			543:    "Enterobacteriaceae",
			561:    "Escherichia",
			562:    "Escherichia coli",
		},
		ranks: map[TaxID]string{
			1:      "no rank",
			131567: "no rank",
			2759:   "domain",
			7711:   "phylum",
			40674:  "class",
			9443:   "order",
			9604:   "family",
			9605:   "genus",
			9606:   "species",
			2:      "superkingdom", // pre-2025 spelling still in circulation
			1224:   "phylum",
			1236:   "class",
			91347:  "order",
			543:    "family",
			561:    "genus",
			562:    "species",
		},
	}
}

func (f *fakeProvider) Lineage(_ context.Context, id TaxID) ([]TaxID, error) {
	f.lineageCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	chain, ok := f.chains[id]
	if !ok {
		return nil, fmt.Errorf("taxid %d: %w", id, ErrTaxonNotFound)
	}
	return chain, nil
}

func (f *fakeProvider) Names(_ context.Context, ids []TaxID) (map[TaxID]string, error) {
	f.nameCalls++
	f.nameBatches = append(f.nameBatches, slices.Clone(ids))
	out := make(map[TaxID]string, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (f *fakeProvider) Ranks(_ context.Context, ids []TaxID) (map[TaxID]string, error) {
	f.rankCalls++
	out := make(map[TaxID]string, len(ids))
	for _, id := range ids {
		if rank, ok := f.ranks[id]; ok {
			out[id] = rank
		}
	}
	return out, nil
}

func TestBuilder_Build(t *testing.T) {
	ctx := context.Background()

	b, err := NewBuilder(newFakeProvider())
	require.NoError(t, err)

	lin, err := b.Build(ctx, 9606)
	require.NoError(t, err)
	assert.Equal(t, "Eukaryota; Chordata; Mammalia; Primates; Hominidae; Homo; Homo sapiens", lin)

	// "superkingdom" on the Bacteria node matches the domain rank filter
	lin, err = b.Build(ctx, 562)
	require.NoError(t, err)
	assert.Equal(t, "Bacteria; Proteobacteria; Gammaproteobacteria; Enterobacterales; Enterobacteriaceae; Escherichia; Escherichia coli", lin)
}

func TestBuilder_Build_NotFound(t *testing.T) {
	b, err := NewBuilder(newFakeProvider())
	require.NoError(t, err)

	lin, err := b.Build(context.Background(), 12345678)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrTaxonNotFound)
	assert.Equal(t, "NA", lin, "failed lookups still return something printable")
}

func TestBuilder_Build_Options(t *testing.T) {
	tests := []struct {
		name string
		id   TaxID
		opts []Option
		want string
	}{
		{
			name: "custom separator",
			id:   9606,
			opts: []Option{WithSeparator(" > ")},
			want: "Eukaryota > Chordata > Mammalia > Primates > Hominidae > Homo > Homo sapiens",
		},
		{
			name: "leaf to root",
			id:   9606,
			opts: []Option{WithOrder(OrderLeafToRoot), WithRanks("genus", "species")},
			want: "Homo sapiens; Homo",
		},
		{
			name: "rank subset",
			id:   562,
			opts: []Option{WithRanks("phylum", "species")},
			want: "Proteobacteria; Escherichia coli",
		},
		{
			name: "superkingdom selects domain nodes",
			id:   9606,
			opts: []Option{WithRanks("superkingdom")},
			want: "Eukaryota",
		},
		{
			name: "all ranks keeps unranked nodes",
			id:   562,
			opts: []Option{WithAllRanks()},
			want: "root; cellular organisms; Bacteria; Proteobacteria; Gammaproteobacteria; Enterobacterales; Enterobacteriaceae; Escherichia; Escherichia coli",
		},
		{
			name: "gtdb style",
			id:   9606,
			opts: []Option{WithRankPrefixes(), WithSeparator("|")},
			want: "d__Eukaryota|p__Chordata|c__Mammalia|o__Primates|f__Hominidae|g__Homo|s__Homo_sapiens",
		},
		{
			name: "gtdb style leaves uncoded ranks plain",
			id:   131567,
			opts: []Option{WithRankPrefixes(), WithAllRanks()},
			want: "root; cellular_organisms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBuilder(newFakeProvider(), tt.opts...)
			require.NoError(t, err)

			got, err := b.Build(context.Background(), tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuilder_Build_EmptyAfterFilter(t *testing.T) {
	b, err := NewBuilder(newFakeProvider())
	require.NoError(t, err)

	// 131567 has no canonically ranked ancestors, so the default rank filter
	// leaves nothing. That is a successful lookup, not a failure.
	lin, err := b.Build(context.Background(), 131567)
	assert.NoError(t, err)
	assert.Equal(t, "", lin)
}

func TestBuilder_CustomSentinel(t *testing.T) {
	b, err := NewBuilder(newFakeProvider(), WithSentinel("unknown"))
	require.NoError(t, err)
	assert.Equal(t, "unknown", b.Sentinel())

	lin, err := b.Build(context.Background(), 404404)
	assert.Error(t, err)
	assert.Equal(t, "unknown", lin)
}

func TestNewBuilder_Validation(t *testing.T) {
	_, err := NewBuilder(nil)
	assert.Error(t, err, "nil provider is rejected")

	_, err = NewBuilder(newFakeProvider(), WithSentinel(""))
	assert.Error(t, err, "empty sentinel is rejected")
}

func TestBuilder_BuildMap_ResolvesDistinctOnce(t *testing.T) {
	p := newFakeProvider()
	b, err := NewBuilder(p)
	require.NoError(t, err)

	results := b.BuildMap(context.Background(), []TaxID{9606, 9606, 562, 9606})

	assert.Len(t, results, 2, "one entry per distinct id")
	assert.Equal(t, 2, p.lineageCalls, "one chain resolution per distinct id")
	assert.Equal(t, 2, p.nameCalls)
	assert.Equal(t, 2, p.rankCalls)

	assert.True(t, results[9606].OK())
	assert.True(t, results[562].OK())
	assert.Equal(t, "Eukaryota; Chordata; Mammalia; Primates; Hominidae; Homo; Homo sapiens", results[9606].Lineage)
}

func TestBuilder_BuildMap_MemoizesFailures(t *testing.T) {
	p := newFakeProvider()
	b, err := NewBuilder(p)
	require.NoError(t, err)

	results := b.BuildMap(context.Background(), []TaxID{42, 42, 42})

	assert.Len(t, results, 1)
	assert.Equal(t, 1, p.lineageCalls, "a failing id costs one round trip per batch")

	r := results[42]
	assert.False(t, r.OK())
	assert.ErrorIs(t, r.Err, ErrTaxonNotFound)
	assert.Equal(t, "NA", r.Lineage)
}

func TestBuilder_BuildMap_MixedBatchNeverAborts(t *testing.T) {
	p := newFakeProvider()
	b, err := NewBuilder(p)
	require.NoError(t, err)

	results := b.BuildMap(context.Background(), []TaxID{562, 12345678, 9606})

	require.Len(t, results, 3)
	assert.True(t, results[562].OK())
	assert.True(t, results[9606].OK())
	assert.False(t, results[12345678].OK())
	assert.Equal(t, "NA", results[12345678].Lineage)
	assert.Equal(t, 3, p.lineageCalls)
}

func TestBuilder_BuildMap_MemoIsPerCall(t *testing.T) {
	p := newFakeProvider()
	b, err := NewBuilder(p)
	require.NoError(t, err)

	ctx := context.Background()
	first := b.BuildMap(ctx, []TaxID{9606})
	second := b.BuildMap(ctx, []TaxID{9606})

	assert.Equal(t, first[9606].Lineage, second[9606].Lineage)
	assert.Equal(t, 2, p.lineageCalls, "nothing carries over between calls")
}

func TestBuilder_BuildMap_EmptyInput(t *testing.T) {
	p := newFakeProvider()
	b, err := NewBuilder(p)
	require.NoError(t, err)

	results := b.BuildMap(context.Background(), nil)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Zero(t, p.lineageCalls)
}

func TestBuilder_BuildMap_ProviderDown(t *testing.T) {
	p := newFakeProvider()
	p.failWith = fmt.Errorf("connect: connection refused")
	b, err := NewBuilder(p)
	require.NoError(t, err)

	results := b.BuildMap(context.Background(), []TaxID{9606, 562})

	require.Len(t, results, 2)
	for id, r := range results {
		assert.False(t, r.OK(), "taxid %d", id)
		assert.Equal(t, "NA", r.Lineage, "taxid %d", id)
	}
}

func BenchmarkBuilder_BuildMap(b *testing.B) {
	p := newFakeProvider()
	builder, err := NewBuilder(p)
	if err != nil {
		b.Fatal(err)
	}

	// Heavy repetition, the shape of a real sample sheet
	ids := make([]TaxID, 0, 1000)
	for i := 0; i < 500; i++ {
		ids = append(ids, 9606, 562)
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = builder.BuildMap(ctx, ids)
	}
}
