// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/vidyasagar0405/build-taxa-lineage/internal/meta"
)

const bashCompletionScript = `# bash completion for taxactl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_taxactl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "lq nq tq enrich completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
  local common="--attrs -a --color -c --filter -f --output -o --sort -s --titles -t --tldr"
  local provider="--taxdump -d --api-key"
  local fmt="--separator --order --ranks --gtdb --sentinel"

    case "$cmd" in
    lq)
      local opts="$common --schema $provider $fmt"
            ;;
        tq)
      local opts="$common --schema $provider"
            ;;
        nq)
      local opts="$common --schema $provider"
            ;;
        enrich)
      local opts="--column -C --lineage-column --out -O --delimiter --header --no-header --tldr $provider $fmt"
            ;;
        completion)
            local opts="bash zsh"
            COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$common"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json raw yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--order" ]]; then
        COMPREPLY=( $(compgen -W "root leaf" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--taxdump" || "$prev" == "-d" ]]; then
        COMPREPLY=( $(compgen -o default -- "$cur") )
        return 0
    fi

  COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
  return 0
}

complete -F _taxactl taxactl
`

const zshCompletionScript = `#compdef taxactl

_taxactl() {
  local -a cmds
  cmds=(
    'lq:lineage query'
    'nq:name query'
    'tq:taxon query'
    'enrich:append a lineage column to a delimited file'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-a --attrs)'{-a,--attrs}'[attributes to include]:attrs'
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-f --filter)'{-f,--filter}'[filters to apply]:filters'
  '(-o --output)'{-o,--output}'[output format]:format:(text json raw yaml)'
  '(-s --sort)'{-s,--sort}'[sort attributes]:attrs'
  '(-t --titles)'{-t,--titles}'[show titles]'
  '--tldr[show tldr page]'
  )

  local -a provider
  provider=(
  '(-d --taxdump)'{-d,--taxdump}'[local taxdump path]:path:_files'
  '--api-key[NCBI api key]:key'
  )

  local -a fmt
  fmt=(
  '--separator[lineage segment separator]:sep'
  '--order[lineage direction]:order:(root leaf)'
  '--ranks[ranks to keep]:ranks'
  '--gtdb[GTDB-style rank prefixes]'
  '--sentinel[placeholder for failed lookups]:sentinel'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'taxactl commands' cmds
    return
  fi

  local curcontext="$curcontext" state line
  case $words[2] in
    lq)
      _arguments -C \
        $common \
        $provider \
        $fmt \
        '--schema[dump schema]' \
        '*:taxid'
      ;;
    tq)
      _arguments -C \
        $common \
        $provider \
        '--schema[dump schema]' \
        ':taxid'
      ;;
    nq)
      _arguments -C \
        $common \
        $provider \
        '--schema[dump schema]' \
        '*:name'
      ;;
    enrich)
      _arguments -C \
        $provider \
        $fmt \
        '(-C --column)'{-C,--column}'[taxid column]:column' \
        '--lineage-column[name of the appended column]:name' \
        '(-O --out)'{-O,--out}'[output file]:file:_files' \
        '--delimiter[field delimiter]:delim' \
        '--header[treat the first row as a header]' \
        '--no-header[no header row]' \
        '--tldr[show tldr page]' \
        ':file:_files'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _taxactl taxactl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: taxactl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "taxactl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
