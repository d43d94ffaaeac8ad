// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package taxdump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type parseFn func(io.Reader) error

// Dump files delimit fields with "\t|\t" and close each line with "\t|", so
// after a plain tab split the data sits at the even indices. Both the
// classic taxdump and the wider new_taxdump layouts keep taxid, parent and
// rank in the first three data columns, which is all we index.

func (t *Taxonomy) parseNodes(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 5 {
			return fmt.Errorf("malformed nodes.dmp line: %q", line)
		}
		id, err := strconv.Atoi(cols[0])
		if err != nil {
			return fmt.Errorf("bad taxid %q in nodes.dmp", cols[0])
		}
		parent, err := strconv.Atoi(cols[2])
		if err != nil {
			return fmt.Errorf("bad parent %q for taxid %d in nodes.dmp", cols[2], id)
		}
		t.nodes[id] = node{parent: parent, rank: cols[4]}
	}
	return scanner.Err()
}

// parseNames indexes scientific names only. Synonyms, common names and the
// rest of the name classes are noise for lineage rendering.
func (t *Taxonomy) parseNames(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 7 {
			return fmt.Errorf("malformed names.dmp line: %q", line)
		}
		if cols[6] != "scientific name" {
			continue
		}
		id, err := strconv.Atoi(cols[0])
		if err != nil {
			return fmt.Errorf("bad taxid %q in names.dmp", cols[0])
		}
		t.names[id] = cols[2]
	}
	return scanner.Err()
}

func (t *Taxonomy) parseMerged(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 3 {
			return fmt.Errorf("malformed merged.dmp line: %q", line)
		}
		old, err := strconv.Atoi(cols[0])
		if err != nil {
			return fmt.Errorf("bad taxid %q in merged.dmp", cols[0])
		}
		current, err := strconv.Atoi(cols[2])
		if err != nil {
			return fmt.Errorf("bad taxid %q in merged.dmp", cols[2])
		}
		t.merged[old] = current
	}
	return scanner.Err()
}

func (t *Taxonomy) parseDelnodes(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		id, err := strconv.Atoi(cols[0])
		if err != nil {
			return fmt.Errorf("bad taxid %q in delnodes.dmp", cols[0])
		}
		t.deleted[id] = true
	}
	return scanner.Err()
}
