package reduction

import (
	"github.com/morpav/zceq-solver/internal/bucketindex"
	"github.com/morpav/zceq-solver/internal/blake2bpow"
	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/xstring"
	"k8s.io/klog/v2"
)

// GenerateInitialStrings runs the Blake2b engine over counters 0..S/2,
// splitting each 64-byte output into two 200-bit candidate strings and
// bucketing them by the low 8 bits of their first segment, per
// spec.md §4.5. out must already be allocated; idx is reset by the
// caller before this runs.
func GenerateInitialStrings(engine *blake2bpow.Engine, out *StringSet, idx *bucketindex.Index, cfg Config) {
	var st blake2bpow.State

	for g := uint32(0); g < params.S/2; g++ {
		engine.FinalizeInto(&st, g)
		raw := st.Bytes()

		writeHalf(out, idx, raw[0:32], 2*g, cfg)
		writeHalf(out, idx, raw[params.HalfHashLength:params.HalfHashLength+32], 2*g+1, cfg)
	}

	idx.ClosePartitionsForNewStrings()
	klog.V(2).Infof("reduction: generated %d initial strings", params.S)
}

func writeHalf(out *StringSet, idx *bucketindex.Index, half []byte, globalIndex uint32, cfg Config) {
	bucket := uint32(half[0]) // low 8 bits of the first u32, little-endian == the first byte.

	if cfg.CheckBucketOverflow && idx.Overflowed(bucket) {
		klog.V(4).Infof("reduction: bucket %d overflow during initial generation, dropping index %d", bucket, globalIndex)
		return
	}
	pos := idx.Next(bucket)

	rec := out.Record(pos)
	// The set's space is reused across runs and levels; segment writes
	// only touch their own 20 bits, so clear stale bytes first.
	clear(rec.Buf)
	rec.SetLink(pairlink.SetSingleIndex(globalIndex))

	for seg := 0; seg < params.Segs; seg++ {
		v := xstring.ReadRawSegment(half, seg)
		if seg == 0 {
			rec.SetFirstSegment(v)
		} else {
			rec.SetOtherSegment(seg, v)
		}
	}
}
