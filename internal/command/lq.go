// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"errors"
	"reflect"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
)

// LineageRow is one lq result row.
type LineageRow struct {
	TaxID   int64  `json:"taxid"`
	Name    string `json:"name"`
	Rank    string `json:"rank"`
	Lineage string `json:"lineage"`
	Status  string `json:"status"`
}

// LqCommandAction is the action handler for the "lq" subcommand. It resolves
// every taxid given on the command line into a lineage row, supports
// --tldr/--schema short-circuits, and emits results per common flags. Bad
// taxids become sentinel rows; they never abort the run.
func LqCommandAction(ctx context.Context, cmd *cli.Command) error {
	runner := &QueryActionRunner[LineageRow]{
		CommandName:  "lq",
		SchemaType:   reflect.TypeOf(LineageRow{}),
		DefaultAttrs: []string{"taxid", "name", "lineage", "status"},
		FetchFn:      fetchLineageRows,
	}
	return runner.Run(ctx, cmd)
}

func fetchLineageRows(ctx context.Context, cmd *cli.Command) ([]LineageRow, error) {
	args := cmd.Args().Slice()
	if len(args) == 0 {
		return nil, errors.New("at least one taxid is required")
	}

	ids, bad := ParseTaxIDs(args)
	log.Debugf("ids: %v, bad tokens: %v", ids, bad)

	provider, closer, err := NewProvider(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer closer()

	builder, err := NewBuilderFromFlags(provider, cmd)
	if err != nil {
		return nil, err
	}

	results := builder.BuildMap(ctx, ids)

	// One more provider round trip decorates the rows with the taxon's own
	// name and rank. Failed ids are simply absent from these maps.
	names, err := provider.Names(ctx, ids)
	if err != nil {
		log.Debugf("name decoration skipped: %v", err)
	}
	ranks, err := provider.Ranks(ctx, ids)
	if err != nil {
		log.Debugf("rank decoration skipped: %v", err)
	}

	rows := make([]LineageRow, 0, len(ids)+len(bad))
	for _, id := range ids {
		r := results[id]
		rows = append(rows, LineageRow{
			TaxID:   int64(id),
			Name:    names[id],
			Rank:    ranks[id],
			Lineage: r.Lineage,
			Status:  RowStatus(r.Err),
		})
	}
	for _, tok := range bad {
		rows = append(rows, LineageRow{
			Name:    tok,
			Lineage: builder.Sentinel(),
			Status:  "invalid",
		})
	}
	return rows, nil
}

// LqCommandBuilder constructs the cli.Command for "lq", wiring metadata,
// flags, and action/validator handlers.
func LqCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return (&QueryCommandBuilder{
		Name:      "lq",
		Usage:     "lineage query",
		UsageText: `taxactl lq <taxid>... [options]`,
		Flags: append([]cli.Flag{
			NewTaxdumpFlag("lq", meta.Config.Source),
			NewAPIKeyFlag("lq", meta.Config.Source),
		}, NewLineageFlags("lq")...),
		Action: LqCommandAction,
		Meta:   meta,
	}).Build()
}
