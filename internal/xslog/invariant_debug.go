//go:build zceqdebug

// Package xslog carries the solver's debug-only invariant check
// (spec.md §7 InternalInvariant: "checked only in debug builds").
package xslog

import "fmt"

// Invariant panics with msg if cond is false. Only compiled into
// binaries built with the zceqdebug tag; release builds use the no-op
// variant in invariant_release.go.
func Invariant(cond bool, msg string) {
	if !cond {
		panic(fmt.Sprintf("zceq: invariant violated: %s", msg))
	}
}
