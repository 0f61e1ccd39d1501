package xstring_test

import (
	"testing"

	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/xstring"
	"github.com/stretchr/testify/require"
)

func TestExpandedFirstAndOtherSegmentRoundTrip(t *testing.T) {
	desc := xstring.Descriptor{Layout: xstring.Expanded, Step: 0}
	buf := make([]byte, desc.AllocSize())
	rec := xstring.NewRecord(desc, buf)

	rec.SetLink(pairlink.L(0xDEADBEEF))
	require.Equal(t, pairlink.L(0xDEADBEEF), rec.Link())

	rec.SetFirstSegment(0x000ABCDE & 0xFFFFF)
	require.Equal(t, uint32(0x000ABCDE&0xFFFFF), rec.FirstSegmentClean())

	rec.SetOtherSegment(3, 0x12345&0xFFFFF)
	require.Equal(t, uint32(0x12345&0xFFFFF), rec.OtherSegmentClean(3))
}

func TestPackedEvenOddSegmentRoundTrip(t *testing.T) {
	desc := xstring.Descriptor{Layout: xstring.Packed, Step: 0}
	buf := make([]byte, desc.AllocSize())
	rec := xstring.NewRecord(desc, buf)

	rec.SetFirstSegment(0xABCDE & 0xFFFFF) // segment 0, even -> byte aligned
	require.Equal(t, uint32(0xABCDE&0xFFFFF), rec.FirstSegmentClean())

	rec.SetOtherSegment(1, 0x54321&0xFFFFF) // odd -> nibble aligned
	require.Equal(t, uint32(0x54321&0xFFFFF), rec.OtherSegmentClean(1))

	// Writing segment 1 must not disturb segment 0.
	require.Equal(t, uint32(0xABCDE&0xFFFFF), rec.FirstSegmentClean())
}

func TestPackedSkipBitsClearsLowBits(t *testing.T) {
	descAt1 := xstring.Descriptor{Layout: xstring.Packed, Step: 1, SkipBits: 8}
	buf := make([]byte, descAt1.AllocSize())
	rec := xstring.NewRecord(descAt1, buf)

	rec.SetFirstSegment(0xFFFFF)
	clean := rec.FirstSegmentClean()
	require.Zero(t, clean&0xFF, "low 8 bits must be cleared when SkipBits=8")
}

func TestXORIntoCancelsMatchingSegment(t *testing.T) {
	srcDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: 3}
	dstDesc := xstring.Descriptor{Layout: xstring.Expanded, Step: 4}

	left := xstring.NewRecord(srcDesc, make([]byte, srcDesc.AllocSize()))
	right := xstring.NewRecord(srcDesc, make([]byte, srcDesc.AllocSize()))
	for seg := 4; seg <= 9; seg++ {
		v := uint32(seg*37+1) & 0xFFFFF
		left.SetOtherSegment(seg, v)
		right.SetOtherSegment(seg, v)
	}

	out := xstring.NewRecord(dstDesc, make([]byte, dstDesc.AllocSize()))
	xstring.XORInto(out, left, right)

	require.Zero(t, out.FirstSegmentClean(), "matching segment 4 must XOR to zero")
}

func TestFinalCollisionSegments(t *testing.T) {
	desc := xstring.Descriptor{Layout: xstring.Expanded, Step: 8}
	rec := xstring.NewRecord(desc, make([]byte, desc.AllocSize()))
	rec.SetOtherSegment(9, 0x00ABC)
	v := rec.FinalCollisionSegments()
	require.NotZero(t, v)
}

func TestReorderForSkipLayoutPreservesLastByte(t *testing.T) {
	var hash [32]byte
	for i := range hash {
		hash[i] = byte(i * 7)
	}
	out := xstring.ReorderForSkipLayout(&hash)
	require.Equal(t, hash[24:32], out[24:32])
}
