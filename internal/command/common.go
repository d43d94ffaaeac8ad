// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"reflect"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/attrs"
	"github.com/vidyasagar0405/build-taxa-lineage/internal/config"
	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
	"github.com/vidyasagar0405/build-taxa-lineage/internal/output"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/entrez"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/lineage"
	"github.com/vidyasagar0405/build-taxa-lineage/pkg/taxdump"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr taxactl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "taxactl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// DumpSchemaIfRequested prints the attribute schema for the provided row type
// when --schema is set, and returns true if it handled the request.
func DumpSchemaIfRequested(cmd *cli.Command, t reflect.Type) bool {
	if cmd.Bool("schema") {
		output.DumpSchema("", t)
		return true
	}
	return false
}

// BuildAttrs constructs an AttrList with defaults and optional extras from
// --attrs, then applies the global transform spec.
func BuildAttrs(cmd *cli.Command, defaults ...string) (al attrs.AttrList) {
	//nolint:errcheck
	{
		for _, d := range defaults {
			al.Set(d)
		}
		if extras := cmd.String("attrs"); extras != "" {
			al.Set(extras)
		}
		al.SetGlobalTransformSpec()
	}
	return
}

// EmitJSONSlice marshals a slice of row structs and passes it to the common
// output routine.
func EmitJSONSlice(results any, al attrs.AttrList, cmd *cli.Command) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	output.SliceDiceSpit(*bytes.NewBuffer(raw), al, cmd, "", os.Stdout)
	return nil
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// QueryCommandBuilder is a helper that constructs a cli.Command for query
// subcommands (lq, tq, nq) using a consistent pattern. It accepts the command
// name, usage text, optional UsageText, custom flags, the action handler, and
// meta. The builder automatically wires metadata, adds tldr/schema flags,
// applies global flags, and sets up validators.
type QueryCommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Meta      meta.Meta
}

// Build returns a configured cli.Command from the builder.
func (qcb *QueryCommandBuilder) Build() *cli.Command {
	return &cli.Command{
		Name:      qcb.Name,
		Usage:     qcb.Usage,
		UsageText: qcb.UsageText,
		Metadata: map[string]any{
			"meta": qcb.Meta,
		},
		Flags: append(qcb.Flags, append([]cli.Flag{
			tldrFlag,
			schemaFlag,
		}, NewGlobalFlags(qcb.Name)...)...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, GlobalFlagsValidator(ctx, c)
		},
		Action: qcb.Action,
	}
}

// QueryActionRunner[T] encapsulates the common query action pattern for all
// query subcommands. It handles GetMeta, the tldr/schema short-circuits,
// BuildAttrs and output emission, with the data fetching provided by FetchFn.
type QueryActionRunner[T any] struct {
	CommandName  string
	SchemaType   reflect.Type
	DefaultAttrs []string
	FetchFn      func(context.Context, *cli.Command) ([]T, error)
}

// Run executes the query action with the provided context and command.
func (qar *QueryActionRunner[T]) Run(
	ctx context.Context,
	cmd *cli.Command,
) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	if ShortCircuitTLDR(ctx, cmd, qar.CommandName) {
		return nil
	}
	if DumpSchemaIfRequested(cmd, qar.SchemaType) {
		return nil
	}

	attrs := BuildAttrs(cmd, qar.DefaultAttrs...)
	log.Debugf("attrs: %v", attrs)

	results, err := qar.FetchFn(ctx, cmd)
	if err != nil {
		return err
	}

	if err := EmitJSONSlice(results, attrs, cmd); err != nil {
		return err
	}
	return nil
}

// NewProvider selects the taxonomy provider from the command flags: a local
// taxdump when --taxdump is set, the live E-utilities otherwise. The remote
// provider is wrapped in an in-memory cache on top of its disk cache, since
// one invocation tends to revisit the same ancestor ids over and over. The
// returned closer must be called when the provider is no longer needed.
func NewProvider(ctx context.Context, cmd *cli.Command) (lineage.Provider, func(), error) {
	if path := cmd.String("taxdump"); path != "" {
		t, err := taxdump.Open(path)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("provider: taxdump %s", path)
		return t, func() {}, nil
	}

	client := entrez.NewClient(entrez.WithAPIKey(cmd.String("api-key")))
	log.Debugf("provider: entrez %s", entrez.DefaultBaseURL)

	size, _ := config.GetString("cache.size", "64 MiB")
	cached, err := lineage.NewCachedProvider(client, lineage.WithCacheSize(size))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to wrap provider cache: %w", err)
	}
	return cached, cached.Close, nil
}

// NewBuilderFromFlags wires a provider to the lineage formatting flags.
func NewBuilderFromFlags(p lineage.Provider, cmd *cli.Command) (*lineage.Builder, error) {
	opts := []lineage.Option{
		lineage.WithSeparator(cmd.String("separator")),
		lineage.WithSentinel(cmd.String("sentinel")),
	}

	if cmd.String("order") == "leaf" {
		opts = append(opts, lineage.WithOrder(lineage.OrderLeafToRoot))
	}

	if ranks := strings.TrimSpace(cmd.String("ranks")); ranks != "" {
		if strings.EqualFold(ranks, "all") {
			opts = append(opts, lineage.WithAllRanks())
		} else {
			opts = append(opts, lineage.WithRanks(strings.Split(ranks, ",")...))
		}
	}

	if cmd.Bool("gtdb") {
		opts = append(opts, lineage.WithRankPrefixes())
	}

	return lineage.NewBuilder(p, opts...)
}

// ParseTaxIDs splits the positional args into taxids and the tokens that are
// not integers. Args may carry several comma-separated ids each. Repeats are
// collapsed to the first occurrence so every row shows up exactly once.
func ParseTaxIDs(args []string) (ids []lineage.TaxID, invalid []string) {
	seen := make(map[lineage.TaxID]bool)
	for _, arg := range args {
		for _, tok := range strings.Split(arg, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			n, err := strconv.Atoi(tok)
			if err != nil || n <= 0 {
				invalid = append(invalid, tok)
				continue
			}
			id := lineage.TaxID(n)
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, invalid
}

// RowStatus renders a Build error into the status column.
func RowStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, lineage.ErrTaxonNotFound):
		return "not found"
	default:
		return "error"
	}
}
