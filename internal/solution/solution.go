// Package solution reconstructs, canonicalizes and verifies Equihash
// solutions from a final-step collision candidate, per spec.md §4.8.
package solution

import (
	"sort"

	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
)

// Extract walks a final-step candidate's two pair-links back through
// every reduction level to the 512 original string indices it was built
// from. levelLinks[l] holds each level-l string's pair-link at that
// string's position, as copied out by the reduction step that consumed
// level l (levelLinks[0] holds raw original indices, the links initial
// generation gave the level-0 strings). level is the reduction depth the
// candidate was produced at (8 for a full solution).
//
// The returned slice is NOT yet canonicalized — call Reorder on it. ok
// is false if any two resolved original indices collide, which makes
// the candidate degenerate rather than a genuine solution.
func Extract(leftLink pairlink.L, leftPos uint32, rightLink pairlink.L, rightPos uint32, levelLinks [][]pairlink.L, level int) (result []uint32, ok bool) {
	if level == 0 {
		a := uint32(leftLink)
		b := uint32(rightLink)
		return []uint32{a, b}, a != b
	}

	l1 := pairlink.Translate(leftLink, uint64(leftPos))
	l2 := pairlink.Translate(rightLink, uint64(rightPos))
	current := []uint32{l1.Smaller, l1.Larger, l2.Smaller, l2.Larger}

	for lvl := level - 1; lvl > 0; lvl-- {
		table := levelLinks[lvl]
		next := make([]uint32, 0, len(current)*2)
		for _, ref := range current {
			link := table[ref]
			tr := pairlink.Translate(link, uint64(ref))
			next = append(next, tr.Smaller, tr.Larger)
		}
		current = next
	}

	table0 := levelLinks[0]
	result = make([]uint32, len(current))
	for i, ref := range current {
		result[i] = uint32(table0[ref])
	}

	return result, uniqueValues(result)
}

func uniqueValues(values []uint32) bool {
	sorted := append([]uint32(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return false
		}
	}
	return true
}

// Reorder canonicalizes solution in place by swapping sibling halves at
// every power-of-two span so the lower half always starts with the
// smaller original index, matching the reference solution ordering
// every Equihash verifier expects. Returns the number of swaps made.
func Reorder(values []uint32) int {
	swaps := 0
	n := len(values)
	for length := 1; length <= n/2; length *= 2 {
		step := length * 2
		for start := 0; start+step <= n; start += step {
			if values[start] >= values[start+length] {
				for i := 0; i < length; i++ {
					values[start+i], values[start+length+i] = values[start+length+i], values[start+i]
				}
				swaps++
			}
		}
	}
	return swaps
}

// WireSize is the number of original indices in a full solution.
const WireSize = params.SolutionSize

// FinalLevel is the reduction depth (K-1) the final step's candidates are
// produced at and Extract/RecomputeAt are called with for a full solution.
const FinalLevel = params.Segs - 2
