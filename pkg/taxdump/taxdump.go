// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package taxdump

import (
	"archive/tar"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/pgzip"

	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
)

// The chain walk refuses to follow more ancestors than this. Real chains
// top out around 60 nodes; anything deeper is a corrupt dump.
const maxDepth = 512

var (
	_ lineage.Provider = (*Taxonomy)(nil)
	_ lineage.Searcher = (*Taxonomy)(nil)
)

type node struct {
	parent int
	rank   string
}

// Taxonomy is an in-memory index over one NCBI taxdump snapshot. It is
// immutable after Open and safe for concurrent use.
type Taxonomy struct {
	nodes   map[int]node
	names   map[int]string
	merged  map[int]int
	deleted map[int]bool
}

// Open loads a taxdump from a directory of .dmp files or from a
// taxdump.tar.gz archive, detected by what the path points at. nodes.dmp and
// names.dmp are required; merged.dmp and delnodes.dmp are picked up when
// present so retired ids resolve the way the live taxonomy resolves them.
func Open(path string) (*Taxonomy, error) {
	t := &Taxonomy{
		nodes:   make(map[int]node),
		names:   make(map[int]string),
		merged:  make(map[int]int),
		deleted: make(map[int]bool),
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("taxdump: %w", err)
	}

	start := time.Now()
	if info.IsDir() {
		err = t.loadDir(path)
	} else {
		err = t.loadArchive(path)
	}
	if err != nil {
		return nil, fmt.Errorf("taxdump: %w", err)
	}

	log.Debugf("taxdump: loaded %s taxa from %s in %s",
		humanize.Comma(int64(len(t.nodes))), path, time.Since(start).Round(time.Millisecond))
	return t, nil
}

// Lineage implements lineage.Provider by walking the parent pointers from id
// up to the root. The returned chain is ordered root first and ends with id
// itself.
func (t *Taxonomy) Lineage(ctx context.Context, id lineage.TaxID) ([]lineage.TaxID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tid := t.resolve(int(id))
	if t.deleted[tid] {
		return nil, fmt.Errorf("taxid %d deleted from the taxonomy: %w", id, lineage.ErrTaxonNotFound)
	}
	if _, ok := t.nodes[tid]; !ok {
		return nil, fmt.Errorf("taxid %d: %w", id, lineage.ErrTaxonNotFound)
	}

	chain := make([]lineage.TaxID, 0, 32)
	for curr := tid; ; {
		chain = append(chain, lineage.TaxID(curr))
		if len(chain) > maxDepth {
			return nil, fmt.Errorf("taxid %d: ancestor chain exceeds %d nodes", id, maxDepth)
		}
		n, ok := t.nodes[curr]
		if !ok || n.parent == curr {
			// The root node is its own parent.
			break
		}
		curr = n.parent
	}

	slices.Reverse(chain)
	return chain, nil
}

// Names implements lineage.Provider. Only scientific names are indexed;
// ids without one are absent from the result.
func (t *Taxonomy) Names(ctx context.Context, ids []lineage.TaxID) (map[lineage.TaxID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[lineage.TaxID]string, len(ids))
	for _, id := range ids {
		if name, ok := t.names[t.resolve(int(id))]; ok {
			out[id] = name
		}
	}
	return out, nil
}

// Ranks implements lineage.Provider.
func (t *Taxonomy) Ranks(ctx context.Context, ids []lineage.TaxID) (map[lineage.TaxID]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[lineage.TaxID]string, len(ids))
	for _, id := range ids {
		if n, ok := t.nodes[t.resolve(int(id))]; ok {
			out[id] = n.rank
		}
	}
	return out, nil
}

// SearchNames implements lineage.Searcher with an exact, case-insensitive
// match over the scientific names. Hits come back in ascending taxid order.
func (t *Taxonomy) SearchNames(ctx context.Context, name string) ([]lineage.TaxID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil, nil
	}

	var hits []lineage.TaxID
	for id, n := range t.names {
		if strings.ToLower(n) == needle {
			hits = append(hits, lineage.TaxID(id))
		}
	}
	slices.Sort(hits)
	return hits, nil
}

// resolve follows the merged.dmp remapping for ids that were folded into
// another taxon.
func (t *Taxonomy) resolve(id int) int {
	if current, ok := t.merged[id]; ok {
		return current
	}
	return id
}

func (t *Taxonomy) loadDir(dir string) error {
	if err := t.loadFile(filepath.Join(dir, "nodes.dmp"), t.parseNodes); err != nil {
		return err
	}
	if err := t.loadFile(filepath.Join(dir, "names.dmp"), t.parseNames); err != nil {
		return err
	}

	// Not every dump ships these two.
	optional := []struct {
		name  string
		parse parseFn
	}{
		{"merged.dmp", t.parseMerged},
		{"delnodes.dmp", t.parseDelnodes},
	}
	for _, opt := range optional {
		if err := t.loadFile(filepath.Join(dir, opt.name), opt.parse); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (t *Taxonomy) loadFile(path string, parse parseFn) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := parse(f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func (t *Taxonomy) loadArchive(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%s is neither a directory nor a gzipped archive: %w", path, err)
	}
	defer gz.Close()

	seen := make(map[string]bool)
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read archive: %w", err)
		}

		var parse parseFn
		base := filepath.Base(hdr.Name)
		switch base {
		case "nodes.dmp":
			parse = t.parseNodes
		case "names.dmp":
			parse = t.parseNames
		case "merged.dmp":
			parse = t.parseMerged
		case "delnodes.dmp":
			parse = t.parseDelnodes
		default:
			continue
		}

		if err := parse(tr); err != nil {
			return fmt.Errorf("%s: %w", hdr.Name, err)
		}
		seen[base] = true
	}

	if !seen["nodes.dmp"] || !seen["names.dmp"] {
		return fmt.Errorf("archive is missing nodes.dmp or names.dmp")
	}
	return nil
}
