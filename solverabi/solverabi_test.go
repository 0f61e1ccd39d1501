package solverabi_test

import (
	"sync"
	"testing"

	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/solverabi"
	"github.com/stretchr/testify/require"
)

func testHeader(seed byte) []byte {
	h := make([]byte, params.HeaderSize)
	for i := range h {
		h[i] = byte(i) ^ seed
	}
	return h
}

func TestSolveRejectsUnsupportedParams(t *testing.T) {
	err := solverabi.Solve(testHeader(1), 96, 5, func([params.SolutionSize]uint32) bool { return true })
	require.ErrorIs(t, err, solverabi.ErrUnsupportedParams)
}

func TestSolveInvokesCallbackPerSolution(t *testing.T) {
	var count int
	err := solverabi.Solve(testHeader(2), params.N, params.K, func(sol [params.SolutionSize]uint32) bool {
		count++
		return true
	})
	require.NoError(t, err)
	_ = count
}

func TestSolveManyRejectsUnsupportedParams(t *testing.T) {
	headers := [][]byte{testHeader(3), testHeader(4)}
	err := solverabi.SolveMany(headers, 96, 5, func(int, [params.SolutionSize]uint32) bool { return true })
	require.ErrorIs(t, err, solverabi.ErrUnsupportedParams)
}

func TestSolveManyCoversEveryHeader(t *testing.T) {
	headers := [][]byte{testHeader(5), testHeader(6), testHeader(7)}

	var mu sync.Mutex
	seen := make(map[int]int)
	err := solverabi.SolveMany(headers, params.N, params.K, func(headerIndex int, _ [params.SolutionSize]uint32) bool {
		mu.Lock()
		seen[headerIndex]++
		mu.Unlock()
		return true
	})
	require.NoError(t, err)
}
