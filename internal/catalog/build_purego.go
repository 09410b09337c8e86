//go:build !cgo_sqlite
// +build !cgo_sqlite

package catalog

// This file is compiled by default and uses a pure Go SQLite
// implementation.
//
// Build command:
//   CGO_ENABLED=0 go build ./...
//
// The pure Go driver needs no C compiler and cross-compiles cleanly,
// which is the right default for a tool installed with `go install`.
//
// Driver used: modernc.org/sqlite

import (
	_ "modernc.org/sqlite"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite"

	// BuildMode describes the current build configuration
	BuildMode = "purego"
)
