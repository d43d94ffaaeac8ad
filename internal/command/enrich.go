// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/apex/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
)

// EnrichCommandAction is the action handler for the "enrich" subcommand. It
// reads a delimited file, resolves the taxid column through the lineage
// builder (each distinct id once) and writes the same file back out with a
// lineage column appended. Cells that are not taxids, and taxids the
// provider rejects, get the sentinel; the run never aborts on bad data.
func EnrichCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, "enrich") {
		return nil
	}

	args := cmd.Args().Slice()
	if len(args) != 1 {
		return errors.New("exactly one input file is required ('-' for stdin)")
	}

	in := os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	out := os.Stdout
	if target := cmd.String("out"); target != "" && target != "-" {
		f, err := os.Create(target)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}

	delim, err := delimiterRune(cmd.String("delimiter"))
	if err != nil {
		return err
	}

	provider, closer, err := NewProvider(ctx, cmd)
	if err != nil {
		return err
	}
	defer closer()

	builder, err := NewBuilderFromFlags(provider, cmd)
	if err != nil {
		return err
	}

	return enrich(ctx, builder, in, out, enrichSpec{
		column:        cmd.String("column"),
		lineageColumn: cmd.String("lineage-column"),
		delimiter:     delim,
		header:        cmd.Bool("header"),
	})
}

type enrichSpec struct {
	column        string
	lineageColumn string
	delimiter     rune
	header        bool
}

func enrich(ctx context.Context, builder *lineage.Builder, in io.Reader, out io.Writer, spec enrichSpec) error {
	r := csv.NewReader(in)
	r.Comma = spec.delimiter

	records, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(records) == 0 {
		return errors.New("input is empty")
	}

	var header []string
	rows := records
	if spec.header {
		header = records[0]
		rows = records[1:]
	}

	col, err := ResolveColumn(header, spec.column)
	if err != nil {
		return err
	}

	// One pass to collect the ids, one BuildMap for the whole file. Repeated
	// ids cost a single provider resolution.
	ids := make([]lineage.TaxID, 0, len(rows))
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		if id, ok := parseTaxID(row[col]); ok {
			ids = append(ids, id)
		}
	}
	results := builder.BuildMap(ctx, ids)
	log.Debugf("%d rows, %d distinct taxids", len(rows), len(results))

	w := csv.NewWriter(out)
	w.Comma = spec.delimiter

	if spec.header {
		if err := w.Write(append(header, spec.lineageColumn)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	for _, row := range rows {
		value := builder.Sentinel()
		if col < len(row) {
			if id, ok := parseTaxID(row[col]); ok {
				value = results[id].Lineage
			}
		}
		if err := w.Write(append(row, value)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// ResolveColumn turns a --column spec into a zero-based index. A numeric
// spec is taken as a 1-based position; anything else is matched against the
// header, case-insensitively. Without a header the spec must be numeric.
func ResolveColumn(header []string, spec string) (int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, errors.New("column spec must not be empty")
	}

	if n, err := strconv.Atoi(spec); err == nil {
		if n < 1 {
			return 0, fmt.Errorf("column index %d out of range", n)
		}
		if header != nil && n > len(header) {
			return 0, fmt.Errorf("column index %d out of range", n)
		}
		return n - 1, nil
	}

	if header == nil {
		return 0, fmt.Errorf("column %q needs a header row; use an index with --no-header", spec)
	}
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), spec) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q not found in header %v", spec, header)
}

func parseTaxID(cell string) (lineage.TaxID, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(cell))
	if err != nil || n <= 0 {
		return 0, false
	}
	return lineage.TaxID(n), true
}

// delimiterRune accepts a literal delimiter or the spelling "tab".
func delimiterRune(s string) (rune, error) {
	if s == "tab" || s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

// EnrichCommandBuilder constructs the cli.Command for "enrich", wiring
// metadata, flags, and the action handler.
func EnrichCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "enrich",
		Usage:     "append a lineage column to a delimited file",
		UsageText: `taxactl enrich <file.csv> [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "column",
				Aliases: []string{"C"},
				Usage:   "taxid column, by header name or 1-based index",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("enrich.column", altsrc.StringSourcer(meta.Config.Source)),
					yaml.YAML("column", altsrc.StringSourcer(meta.Config.Source)),
				),
				Value: "taxid",
			},
			&cli.StringFlag{
				Name:  "lineage-column",
				Usage: "name of the appended column",
				Value: "lineage",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"O"},
				Usage:   "output file ('-' for stdout)",
			},
			&cli.StringFlag{
				Name:  "delimiter",
				Usage: "field delimiter ('tab' for TSV)",
				Sources: cli.NewValueSourceChain(
					yaml.YAML("enrich.delimiter", altsrc.StringSourcer(meta.Config.Source)),
				),
				Value: ",",
			},
			&cli.BoolWithInverseFlag{
				Name:  "header",
				Usage: "treat the first row as a header",
				Value: true,
			},
			NewTaxdumpFlag("enrich", meta.Config.Source),
			NewAPIKeyFlag("enrich", meta.Config.Source),
			tldrFlag,
		}, NewLineageFlags("enrich")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return EnrichCommandAction(ctx, c)
		},
	}
}
