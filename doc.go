// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

// taxactl is the main package for the taxactl command line tool. It wires the
// CLI, delegates to internal packages and the lineage/taxdump/entrez
// libraries under pkg/, and serves as the entry point.
package main
