// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
)

// NameRow is one nq result row: a taxid candidate for a queried name.
type NameRow struct {
	Query string `json:"query"`
	TaxID int64  `json:"taxid"`
	Name  string `json:"name"`
	Rank  string `json:"rank"`
}

// NqCommandAction is the action handler for the "nq" subcommand. It resolves
// organism names to taxid candidates through the provider's search
// capability. A name with no hits yields a single row with taxid 0, so the
// output always accounts for every query.
func NqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[NameRow]{
		CommandName:  "nq",
		SchemaType:   reflect.TypeOf(NameRow{}),
		DefaultAttrs: []string{"query", "taxid", "name", "rank"},
		FetchFn:      fetchNameRows,
	}
	return runner.Run(ctx, cmd)
}

func fetchNameRows(ctx context.Context, cmd *cli.Command) ([]NameRow, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, errors.New("at least one name is required")
	}

	provider, closer, err := NewProvider(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer closer()

	searcher, ok := provider.(lineage.Searcher)
	if !ok {
		return nil, lineage.ErrNoSearchSupport
	}

	var rows []NameRow
	for _, query := range args {
		hits, err := searcher.SearchNames(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to search %q: %w", query, err)
		}
		log.Debugf("query %q: %d hits", query, len(hits))

		if len(hits) == 0 {
			rows = append(rows, NameRow{Query: query})
			continue
		}

		names, err := provider.Names(ctx, hits)
		if err != nil {
			return nil, err
		}
		ranks, err := provider.Ranks(ctx, hits)
		if err != nil {
			return nil, err
		}

		for _, id := range hits {
			rows = append(rows, NameRow{
				Query: query,
				TaxID: int64(id),
				Name:  names[id],
				Rank:  ranks[id],
			})
		}
	}
	return rows, nil
}

// NqCommandBuilder constructs the cli.Command for "nq", wiring metadata,
// flags, and action/validator handlers.
func NqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "nq",
		Usage:     "name query",
		UsageText: `taxactl nq <name>... [options]`,
		Flags: []cli.Flag{
			NewTaxdumpFlag("nq", meta.Config.Source),
			NewAPIKeyFlag("nq", meta.Config.Source),
		},
		Action: NqCommandAction,
		Meta:   meta,
	}).Build()
}
