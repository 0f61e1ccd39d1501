package reduction

import (
	"github.com/morpav/zceq-solver/internal/bucketindex"
	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/xslog"
	"github.com/morpav/zceq-solver/internal/xstring"
	"k8s.io/klog/v2"
)

const bucketsPerPartition = params.B / params.P
const bucketLowBitsMask = uint32(1)<<(params.BucketBits-params.PartBits) - 1

// Step runs reduction step s (0..7): it consumes in (strings at level s,
// summarized by inIdx) and produces out (strings at level s+1, tracked
// by outIdx), recording every input string's own provenance link into
// levelLinks (the solver's per-level slice for level s) at its absolute
// position (spec.md §4.6).
//
// Collision grouping here is a three-pass counting sort (count, then
// bucket, then emit) rather than the original's single branchless
// cum_sum pass with a scratch sink at index 0 — functionally identical,
// simpler to read, and not a place where the extra pass matters for
// correctness.
func Step(in, out *StringSet, inIdx, outIdx *bucketindex.Index, levelLinks []pairlink.L, cfg Config) {
	outIdx.Reset()

	for op := uint32(0); op < params.P; op++ {
		for b := op * bucketsPerPartition; b < (op+1)*bucketsPerPartition; b++ {
			processBucket(in, out, inIdx, outIdx, levelLinks, b, cfg)
		}
		outIdx.ClosePartition(op)
	}

	klog.V(2).Infof("reduction: step %d produced %d strings", in.Desc.Step, outIdx.CountUsedPositions())
}

func bucketPositions(inIdx *bucketindex.Index, bucket uint32) []uint32 {
	base := bucket * params.ItemsPerBucket
	positions := make([]uint32, 0, params.ItemsPerOutPartition*params.P)
	for p := uint32(0); p < params.P; p++ {
		start := base + p*params.ItemsPerOutPartition
		n := inIdx.PartitionSizes[bucket][p]
		for i := uint16(0); i < n; i++ {
			positions = append(positions, start+uint32(i))
		}
	}
	return positions
}

// collisionGroups scans bucket's live positions, records each one's
// provenance link into levelLinks, and groups positions that share a
// collision-table slot (spec.md §4.6 GroupByHash). The result is indexed
// by slot, so callers visit groups in ascending slot order, each group's
// positions ascending. Groups smaller than 2 or at/above
// cfg.TooManyBasicCollisions are left empty. Shared by Step and
// FinalStep, which differ only in what they do with a pair once grouped.
func collisionGroups(in *StringSet, inIdx *bucketindex.Index, levelLinks []pairlink.L, bucket uint32, cfg Config) [][]uint32 {
	positions := bucketPositions(inIdx, bucket)

	htMask := params.HTMask()
	count := make([]int, params.HTSize)
	hashOf := make([]uint32, len(positions))

	for i, pos := range positions {
		rec := in.Record(pos)
		h := (rec.FirstSegmentRaw() >> params.BucketBits) & htMask
		hashOf[i] = h
		count[h]++
		levelLinks[pos] = rec.Link()
	}

	groups := make([][]uint32, params.HTSize)
	for i, pos := range positions {
		h := hashOf[i]
		c := count[h]
		if c < 2 || c >= cfg.TooManyBasicCollisions {
			continue
		}
		groups[h] = append(groups[h], pos)
	}
	return groups
}

func processBucket(in, out *StringSet, inIdx, outIdx *bucketindex.Index, levelLinks []pairlink.L, bucket uint32, cfg Config) {
	groups := collisionGroups(in, inIdx, levelLinks, bucket, cfg)

	for _, members := range groups {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				outputString(in, out, outIdx, bucket, members[i], members[j], cfg)
			}
		}
	}
}

// outputString XORs the two colliding strings at posA/posB
// (members of inBucket) into the next free slot of their XOR-determined
// output bucket, per spec.md §4.6 OutputString.
func outputString(in, out *StringSet, outIdx *bucketindex.Index, inBucket, posA, posB uint32, cfg Config) bool {
	recA := in.Record(posA)
	recB := in.Record(posB)

	outBucket := (recA.SecondSegmentRaw() ^ recB.SecondSegmentRaw()) & params.BucketMask()

	if cfg.CheckBucketOverflow && outIdx.Overflowed(outBucket) {
		return false
	}
	outPos := outIdx.Next(outBucket)
	dst := out.Record(outPos)

	xstring.XORInto(dst, recA, recB)

	if cfg.FilterZeroQWord && firstQWordZero(dst) {
		outIdx.Counter[outBucket]--
		return false
	}

	larger, smaller := posA, posB
	if posA < posB {
		larger, smaller = posB, posA
	}
	largerIdx := larger % params.ItemsPerBucket
	smallerIdx := smaller % params.ItemsPerBucket
	link := pairlink.Encode(largerIdx, smallerIdx, inBucket&bucketLowBitsMask)
	dst.SetLink(link)
	xslog.Invariant(pairlink.Validate(link, uint64(outPos)), "pair-link does not translate back to its own parents")

	return true
}

func firstQWordZero(r xstring.Record) bool {
	buf := r.Buf[4:]
	if len(buf) < 8 {
		return false
	}
	for i := 0; i < 8; i++ {
		if buf[i] != 0 {
			return false
		}
	}
	return true
}
