//go:build !zceqdebug

package xslog

// Invariant is a no-op in release builds; see invariant_debug.go.
func Invariant(cond bool, msg string) {}
