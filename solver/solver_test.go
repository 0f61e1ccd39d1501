package solver_test

import (
	"testing"

	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/solver"
	"github.com/stretchr/testify/require"
)

func testHeader(seed byte) []byte {
	h := make([]byte, params.HeaderSize)
	for i := range h {
		h[i] = byte(i) ^ seed
	}
	return h
}

func TestRunProducesWellFormedSolutions(t *testing.T) {
	s := solver.New(solver.DefaultConfig())
	require.NoError(t, s.Reset(testHeader(0x11)))
	require.NoError(t, s.Run())

	// A known header must yield at least one solution; a solver that only
	// ever scans bucket 0 of the final step (or otherwise mis-scopes its
	// search) would silently return zero here instead of erroring, so this
	// guards the search breadth rather than just solution well-formedness.
	require.NotEmpty(t, s.Solutions(), "a known header must produce at least one solution")

	for _, sol := range s.Solutions() {
		require.Len(t, sol, params.SolutionSize)

		seen := make(map[uint32]bool, len(sol))
		for _, idx := range sol {
			require.Less(t, idx, uint32(params.S))
			require.False(t, seen[idx], "solution must not repeat an original index")
			seen[idx] = true
		}

		require.True(t, s.ValidateSolution(sol), "every returned solution must independently validate")
	}
}

func TestRunIsDeterministicForTheSameHeader(t *testing.T) {
	s := solver.New(solver.DefaultConfig())

	require.NoError(t, s.Reset(testHeader(0x22)))
	require.NoError(t, s.Run())
	first := s.Solutions()
	firstCount := len(first)

	require.NoError(t, s.Reset(testHeader(0x22)))
	require.NoError(t, s.Run())
	second := s.Solutions()

	require.Equal(t, firstCount, len(second))
	for i := range first {
		require.Equal(t, first[i], second[i])
	}
}

func TestResetClearsPreviousSolutions(t *testing.T) {
	s := solver.New(solver.DefaultConfig())
	require.NoError(t, s.Reset(testHeader(0x33)))
	require.NoError(t, s.Run())

	require.NoError(t, s.Reset(testHeader(0x44)))
	require.Empty(t, s.Solutions())
	require.Zero(t, s.InvalidSolutions())
}

func TestValidateSolutionRejectsWrongLength(t *testing.T) {
	s := solver.New(solver.DefaultConfig())
	require.NoError(t, s.Reset(testHeader(0x55)))
	require.False(t, s.ValidateSolution(make([]uint32, 4)))
}
