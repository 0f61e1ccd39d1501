package solution_test

import (
	"testing"

	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/solution"
	"github.com/stretchr/testify/require"
)

func TestExtractLevelZeroUsesRawIndices(t *testing.T) {
	values, ok := solution.Extract(pairlink.SetSingleIndex(5), 0, pairlink.SetSingleIndex(9), 0, nil, 0)
	require.True(t, ok)
	require.Equal(t, []uint32{5, 9}, values)
}

func TestExtractLevelZeroRejectsDuplicateIndex(t *testing.T) {
	_, ok := solution.Extract(pairlink.SetSingleIndex(7), 0, pairlink.SetSingleIndex(7), 0, nil, 0)
	require.False(t, ok, "a candidate resolving to the same original index twice is degenerate")
}

func TestExtractWalksOneLevel(t *testing.T) {
	// levelLinks[0] holds the raw original index of each of the 4
	// level-0 strings the two level-1 candidate links ultimately
	// resolve to once translated.
	levelLinks := make([][]pairlink.L, 1)
	levelLinks[0] = make([]pairlink.L, 4)
	for i := range levelLinks[0] {
		levelLinks[0][i] = pairlink.SetSingleIndex(uint32(100 + i))
	}

	// leftLink at position 0 decodes to level-0 positions (0,1);
	// rightLink at position 1 decodes to level-0 positions (2,3).
	leftLink := pairlink.Encode(1, 0, 0)
	rightLink := pairlink.Encode(3, 2, 0)

	values, ok := solution.Extract(leftLink, 0, rightLink, 1, levelLinks, 1)
	require.True(t, ok)
	require.Equal(t, []uint32{100, 101, 102, 103}, values)
}

func TestReorderCanonicalizesSiblingOrder(t *testing.T) {
	values := []uint32{4, 3, 2, 1}
	swaps := solution.Reorder(values)
	require.Equal(t, 2, swaps)
	require.Equal(t, []uint32{3, 4, 1, 2}, values)
}

func TestReorderNoopWhenAlreadyCanonical(t *testing.T) {
	values := []uint32{1, 2, 3, 4}
	swaps := solution.Reorder(values)
	require.Zero(t, swaps)
	require.Equal(t, []uint32{1, 2, 3, 4}, values)
}
