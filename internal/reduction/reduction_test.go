package reduction_test

import (
	"testing"

	"github.com/morpav/zceq-solver/internal/arena"
	"github.com/morpav/zceq-solver/internal/bucketindex"
	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/reduction"
	"github.com/morpav/zceq-solver/internal/xstring"
	"github.com/stretchr/testify/require"
)

func newAllocatedStringSet(t *testing.T, a *arena.Arena, name string, desc xstring.Descriptor) *reduction.StringSet {
	t.Helper()
	ss := reduction.NewStringSet(a, name, desc)
	require.NoError(t, ss.Allocate())
	return ss
}

func newLinks(steps int) [][]pairlink.L {
	links := make([][]pairlink.L, steps)
	for i := range links {
		links[i] = make([]pairlink.L, params.MaximumStringSetSize)
	}
	return links
}

func TestStepGroupsMatchingSegmentsAndRecordsProvenance(t *testing.T) {
	a := arena.New(16, 1<<31)

	inDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: 0}
	outDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: 1}

	in := newAllocatedStringSet(t, a, "step0-in", inDesc)
	out := newAllocatedStringSet(t, a, "step0-out", outDesc)

	var inIdx, outIdx bucketindex.Index
	inIdx.Reset()

	const bucket = uint32(5)
	posA := inIdx.Next(bucket)
	posB := inIdx.Next(bucket)
	inIdx.ClosePartitionsForNewStrings()

	recA := in.Record(posA)
	recB := in.Record(posB)
	recA.SetLink(pairlink.SetSingleIndex(10))
	recB.SetLink(pairlink.SetSingleIndex(20))

	// Identical content for every segment: guarantees the two strings
	// land in the same collision-table slot and that their XOR cancels
	// to an all-zero output record, making the result easy to check.
	recA.SetFirstSegment(bucket)
	recB.SetFirstSegment(bucket)
	for seg := 1; seg < params.Segs; seg++ {
		v := uint32(seg*101) & 0xFFFFF
		recA.SetOtherSegment(seg, v)
		recB.SetOtherSegment(seg, v)
	}

	links := newLinks(params.Segs)
	reduction.Step(in, out, &inIdx, &outIdx, links[0], reduction.DefaultConfig())

	require.Equal(t, pairlink.SetSingleIndex(10), links[0][posA])
	require.Equal(t, pairlink.SetSingleIndex(20), links[0][posB])
	require.Equal(t, uint64(1), outIdx.CountUsedPositions())

	var outPos uint32
	for p := uint32(0); p < params.P; p++ {
		if outIdx.PartitionSizes[0][p] > 0 {
			outPos = 0*params.ItemsPerBucket + p*params.ItemsPerOutPartition
		}
	}
	outRec := out.Record(outPos)
	tr := pairlink.Translate(outRec.Link(), uint64(outPos))
	require.Equal(t, posA, tr.Smaller)
	require.Equal(t, posB, tr.Larger)
}

func TestFinalStepEmitsCandidateOnMatchingFinalSegments(t *testing.T) {
	a := arena.New(16, 1<<31)
	inDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: params.Segs - 2}
	in := newAllocatedStringSet(t, a, "final-in", inDesc)

	var inIdx bucketindex.Index
	inIdx.Reset()

	posA := inIdx.Next(0)
	posB := inIdx.Next(0)
	inIdx.ClosePartitionsForNewStrings()

	recA := in.Record(posA)
	recB := in.Record(posB)
	recA.SetLink(pairlink.SetSingleIndex(1))
	recB.SetLink(pairlink.SetSingleIndex(2))

	recA.SetFirstSegment(0)
	recB.SetFirstSegment(0)
	recA.SetOtherSegment(params.Segs-1, 0x00ABC)
	recB.SetOtherSegment(params.Segs-1, 0x00ABC)

	links := newLinks(params.Segs)

	var got []reduction.Candidate
	sink := func(c reduction.Candidate) { got = append(got, c) }

	reduction.FinalStep(in, &inIdx, links[params.Segs-2], sink, reduction.DefaultConfig())

	require.Len(t, got, 1)
	require.Equal(t, pairlink.SetSingleIndex(1), got[0].LeftLink)
	require.Equal(t, pairlink.SetSingleIndex(2), got[0].RightLink)
}

func TestFinalStepScansEveryBucketNotJustZero(t *testing.T) {
	a := arena.New(16, 1<<31)
	inDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: params.Segs - 2}
	in := newAllocatedStringSet(t, a, "final-in-nonzero-bucket", inDesc)

	var inIdx bucketindex.Index
	inIdx.Reset()

	const bucket = uint32(37)
	posA := inIdx.Next(bucket)
	posB := inIdx.Next(bucket)
	inIdx.ClosePartitionsForNewStrings()

	recA := in.Record(posA)
	recB := in.Record(posB)
	recA.SetLink(pairlink.SetSingleIndex(1))
	recB.SetLink(pairlink.SetSingleIndex(2))

	recA.SetFirstSegment(bucket)
	recB.SetFirstSegment(bucket)
	recA.SetOtherSegment(params.Segs-1, 0x00ABC)
	recB.SetOtherSegment(params.Segs-1, 0x00ABC)

	links := newLinks(params.Segs)

	var got []reduction.Candidate
	sink := func(c reduction.Candidate) { got = append(got, c) }

	reduction.FinalStep(in, &inIdx, links[params.Segs-2], sink, reduction.DefaultConfig())

	require.Len(t, got, 1, "FinalStep must find collisions outside bucket 0")
	require.Equal(t, pairlink.SetSingleIndex(1), got[0].LeftLink)
	require.Equal(t, pairlink.SetSingleIndex(2), got[0].RightLink)
}

func TestFinalStepDedupesRepeatedLastSegment(t *testing.T) {
	a := arena.New(16, 1<<31)
	inDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: params.Segs - 2}
	in := newAllocatedStringSet(t, a, "final-in-dedup", inDesc)

	var inIdx bucketindex.Index
	inIdx.Reset()

	positions := make([]uint32, 4)
	for i := range positions {
		positions[i] = inIdx.Next(0)
	}
	inIdx.ClosePartitionsForNewStrings()

	for i, pos := range positions {
		rec := in.Record(pos)
		rec.SetLink(pairlink.SetSingleIndex(uint32(i)))
		rec.SetFirstSegment(0)
		rec.SetOtherSegment(params.Segs-1, 0x00ABC)
	}

	links := newLinks(params.Segs)

	var got []reduction.Candidate
	cfg := reduction.DefaultConfig()
	reduction.FinalStep(in, &inIdx, links[params.Segs-2], func(c reduction.Candidate) { got = append(got, c) }, cfg)

	require.Len(t, got, 1, "Step8FilterByLastSegment must drop every candidate after the first sharing the same final segment")
}
