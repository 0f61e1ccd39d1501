// Package solverabi is a Go-native stand-in for the C ABI entry point
// spec.md §6 describes: a flat function taking a block header and the
// Equihash parameter pair, invoking a callback per solution found. The
// real C export shim and its calling convention are external
// collaborators (spec.md §1 non-goals); this package only gives that
// contract a body callable from Go.
package solverabi

import (
	"fmt"

	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/solver"
	"golang.org/x/sync/errgroup"
)

// ErrUnsupportedParams is returned when (n,k) isn't (200,9) — the only
// parameter pair this module implements (spec.md §1).
var ErrUnsupportedParams = fmt.Errorf("solverabi: only n=%d k=%d is supported", params.N, params.K)

// Solve runs one solve over header and invokes onSolution once per
// accepted solution, in the order Solver.Run produced them. onSolution
// may return false to stop iterating early; Solve itself always
// completes the underlying Run.
func Solve(header []byte, n, k int, onSolution func([params.SolutionSize]uint32) bool) error {
	if n != params.N || k != params.K {
		return ErrUnsupportedParams
	}

	s := solver.New(solver.DefaultConfig())
	if err := s.Reset(header); err != nil {
		return fmt.Errorf("solverabi: reset: %w", err)
	}
	if err := s.Run(); err != nil {
		return fmt.Errorf("solverabi: run: %w", err)
	}

	for _, sol := range s.Solutions() {
		var fixed [params.SolutionSize]uint32
		copy(fixed[:], sol)
		if !onSolution(fixed) {
			break
		}
	}
	return nil
}

// SolveMany runs one solver per header, concurrently, each single-
// threaded per §5's per-Run concurrency model. onSolution is called
// from whichever goroutine finished that header's solve; it must be
// safe for concurrent use. Every solve runs to completion; once all have
// finished, the first error any of them returned is returned (errgroup's
// Wait, the pattern the teacher's indexing tools use for concurrent
// fan-out). A failing solve does not cancel the others.
func SolveMany(headers [][]byte, n, k int, onSolution func(headerIndex int, solution [params.SolutionSize]uint32) bool) error {
	if n != params.N || k != params.K {
		return ErrUnsupportedParams
	}

	var g errgroup.Group
	for i, header := range headers {
		i, header := i, header
		g.Go(func() error {
			return Solve(header, n, k, func(sol [params.SolutionSize]uint32) bool {
				return onSolution(i, sol)
			})
		})
	}
	return g.Wait()
}
