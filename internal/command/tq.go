// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
)

// TaxonRow is one tq result row: a single node of the ancestor chain.
type TaxonRow struct {
	Depth int64  `json:"depth"`
	TaxID int64  `json:"taxid"`
	Name  string `json:"name"`
	Rank  string `json:"rank"`
}

// TqCommandAction is the action handler for the "tq" subcommand. It walks one
// taxon's full ancestor chain and emits a row per node, root first, with no
// rank filtering. Use lq for the joined one-line rendering.
func TqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[TaxonRow]{
		CommandName:  "tq",
		SchemaType:   reflect.TypeOf(TaxonRow{}),
		DefaultAttrs: []string{"depth", "taxid", "name", "rank"},
		FetchFn:      fetchTaxonRows,
	}
	return runner.Run(ctx, cmd)
}

func fetchTaxonRows(ctx context.Context, cmd *cli.Command) ([]TaxonRow, error) {
	args := cmd.Args().Slice()
	if len(args) != 1 {
		return nil, errors.New("exactly one taxid is required")
	}

	ids, bad := ParseTaxIDs(args)
	if len(bad) > 0 || len(ids) != 1 {
		return nil, fmt.Errorf("not a taxid: %s", args[0])
	}

	provider, closer, err := NewProvider(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer closer()

	chain, err := provider.Lineage(ctx, ids[0])
	if err != nil {
		return nil, fmt.Errorf("failed to resolve taxon %d: %w", ids[0], err)
	}

	names, err := provider.Names(ctx, chain)
	if err != nil {
		return nil, err
	}
	ranks, err := provider.Ranks(ctx, chain)
	if err != nil {
		return nil, err
	}

	rows := make([]TaxonRow, 0, len(chain))
	for depth, id := range chain {
		rows = append(rows, TaxonRow{
			Depth: int64(depth),
			TaxID: int64(id),
			Name:  names[id],
			Rank:  ranks[id],
		})
	}
	return rows, nil
}

// TqCommandBuilder constructs the cli.Command for "tq", wiring metadata,
// flags, and action/validator handlers.
func TqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "tq",
		Usage:     "taxon query",
		UsageText: `taxactl tq <taxid> [options]`,
		Flags: []cli.Flag{
			NewTaxdumpFlag("tq", meta.Config.Source),
			NewAPIKeyFlag("tq", meta.Config.Source),
		},
		Action: TqCommandAction,
		Meta:   meta,
	}).Build()
}
