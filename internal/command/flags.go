// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/config"
)

func init() {
	cfg, _ = config.Load()
}

var (
	cfg config.Type

	schemaFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "schema",
		Usage:       "dump the schema",
		HideDefault: true,
	}

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "attrs",
			Aliases: []string{"a"},
			Usage:   "comma-separated list of attributes to include in results",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "comma-separated list of attributes to sort the results by",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sort", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}

	return
}

// NewTaxdumpFlag constructs a cli.StringFlag for the "taxdump" flag,
// optionally namespaced to a command and config file. params[1] is the
// config file. When the flag ends up empty the command talks to the live
// E-utilities instead.
func NewTaxdumpFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "taxdump",
		Aliases: []string{"d"},
		Usage:   "local NCBI taxdump directory or taxdump.tar.gz. Overrides the live provider",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TAXACTL_TAXDUMP"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewAPIKeyFlag constructs a cli.StringFlag for the "api-key" flag,
// optionally namespaced to a command and config file. params[1] is the
// config file. NCBI_API_KEY is honored because the wider E-utilities
// tooling ecosystem uses it.
func NewAPIKeyFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "api-key",
		Usage: "NCBI api key for the live provider. Raises the rate limit",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("TAXACTL_API_KEY"),
			cli.EnvVar("NCBI_API_KEY"),
		),
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewLineageFlags returns the formatting flags shared by every command that
// renders lineage strings. params[0] is the command namespace.
func NewLineageFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "separator",
			Usage: "string placed between lineage segments",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"separator", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("separator", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "; ",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "lineage direction",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"order", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("order", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "root",
			Validator: func(value string) error {
				return FlagValidators(value, OrderValidator)
			},
		},
		&cli.StringFlag{
			Name:  "ranks",
			Usage: "comma-separated ranks to keep, or 'all' for every named node",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"ranks", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("ranks", altsrc.StringSourcer(cfg.Source)),
			),
		},
		&cli.BoolFlag{
			Name:  "gtdb",
			Usage: "GTDB-style rank prefixes (d__Bacteria|...)",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"gtdb", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("gtdb", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:  "sentinel",
			Usage: "placeholder emitted for taxids that fail to resolve",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"sentinel", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("sentinel", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "NA",
		},
	}

	return
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given executable exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
