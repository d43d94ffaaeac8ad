// Copyright (c) 2025-present vidyasagar0405 <vidyasagar0405@gmail.com>.
// SPDX-License-Identifier: MIT

// Package taxdump implements lineage.Provider on top of a local NCBI
// taxonomy dump, either an unpacked directory or the taxdump.tar.gz as
// downloaded from the NCBI FTP site. Everything is held in memory, so
// lookups never touch the network.
package taxdump
