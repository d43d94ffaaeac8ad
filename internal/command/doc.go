// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

// Package command defines the CLI command set for taxactl. It wires flags,
// validators, actions, and shell completion for subcommands.
package command
