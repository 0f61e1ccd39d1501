package solution

import (
	"github.com/morpav/zceq-solver/internal/blake2bpow"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/xstring"
)

// RecomputeAt independently regenerates every original string named by
// values straight from the hash engine and verifies the solution's
// binary-tree XOR structure cancels to zero at every level — the
// from-scratch check that doesn't trust any bookkeeping done during
// reduction (spec.md §4.8 RecomputeSolution). level is the same
// reduction depth passed to Extract (8 for a full solution); callers
// checking an intermediate, non-final candidate (ValidatePartialSolution
// in the original) pass a smaller level and typically checkOrdering=false.
func RecomputeAt(engine *blake2bpow.Engine, values []uint32, level int, checkOrdering bool) bool {
	size := 2 * (1 << uint(level))
	if len(values) != size {
		return false
	}

	segs := make([][params.Segs]uint32, size)
	var st blake2bpow.State
	for i, idx := range values {
		if idx >= params.S {
			return false
		}
		g := idx / 2
		engine.FinalizeInto(&st, g)
		raw := st.Bytes()
		half := raw[0:32]
		if idx%2 == 1 {
			half = raw[params.HalfHashLength : params.HalfHashLength+32]
		}
		for seg := 0; seg < params.Segs; seg++ {
			segs[i][seg] = xstring.ReadRawSegment(half, seg)
		}
	}

	for segment := 0; segment <= level; segment++ {
		pairDistance := 1 << uint(segment)
		nextPair := pairDistance * 2
		for first := 0; first < size; first += nextPair {
			if checkOrdering && values[first] >= values[first+pairDistance] {
				return false
			}
			for s := segment; s < params.Segs; s++ {
				segs[first][s] ^= segs[first+pairDistance][s]
			}
			if segs[first][segment] != 0 {
				return false
			}
		}
	}

	if level == FinalLevel && segs[0][params.Segs-1] != 0 {
		return false
	}

	return true
}
