// Package params holds the fixed Equihash(200,9) constants shared by every
// solver component. They are derived once, the way compactindexsized
// derives its header geometry from NumBuckets/BucketSize once at Open time.
package params

// Problem parameters. Only (N,K) = (200,9) is supported; see spec §1.
const (
	N = 200
	K = 9

	// SegBits is the width of one hash segment. segBits*(K+1) == N.
	SegBits = N / (K + 1)
	// Segs is the number of segments in a freshly generated string.
	Segs = K + 1
	// SegBytes is the expanded-layout byte width of one segment.
	SegBytes = (SegBits + 7) / 8

	// S is the initial string-set size: one 200-bit string per Blake2b half.
	S = 1 << (SegBits + 1)

	// HalfHashLength is the byte offset of the second candidate string
	// within one Blake2b output, N/8 per the original solver's
	// GenerateXStrings (zceq_solver.cpp/zceq_config.h) — not half of the
	// 64-byte digest.
	HalfHashLength = N / 8

	// BucketBits is the number of first-segment bits used as a bucket id.
	BucketBits = 8
	// B is the bucket count.
	B = 1 << BucketBits
	bucketMaskU64 = uint64(B - 1)

	// HTBits is the width of the per-bucket collision hash table.
	HTBits = SegBits - BucketBits
	// HTSize is the collision hash table size, 2^HTBits.
	HTSize = 1 << HTBits

	// LinkShift is the number of low bits of a PairLink reserved for the
	// combinatorial index of the two parent positions.
	LinkShift = 26

	// PartBits is the number of bucket-id bits NOT carried by a PairLink;
	// they are recovered from the partition the linked string was written
	// into. Re-derive before changing LinkShift, BucketBits or ItemsPerBucket.
	PartBits = LinkShift + BucketBits - 32
	// P is the partition count.
	P = 1 << PartBits

	// extraSpaceMultiplier/extraSpaceDivisor give the 40% headroom each
	// bucket is allocated over its "fair share" of strings.
	extraSpaceMultiplier = 7
	extraSpaceDivisor    = 5

	// ItemsPerBucket is each bucket's slot capacity. Computed with the same
	// left-to-right integer division as the original solver so the derived
	// constants below match it exactly.
	ItemsPerBucket = S * extraSpaceMultiplier / extraSpaceDivisor / B

	// ItemsPerOutPartition is how many output slots each partition of a
	// bucket gets.
	ItemsPerOutPartition = ItemsPerBucket / P

	// MaxCompressedIndexValue is the largest combinatorial index `C` a
	// PairLink can carry for this ItemsPerBucket.
	MaxCompressedIndexValue = ItemsPerBucket*(ItemsPerBucket-1)/2 + ItemsPerBucket - 1

	// MaximumStringSetSize is the total slot capacity across all buckets.
	MaximumStringSetSize = S * extraSpaceMultiplier / extraSpaceDivisor

	// TooManyBasicCollisions: collision groups at or above this size are
	// discarded wholesale during steps 0..7 (culls combinatorial blowups).
	TooManyBasicCollisions = 14

	// SolutionSize is the number of original indices in one solution.
	SolutionSize = 1 << K

	// XORAlignment is the byte alignment XOR writes/reads are rounded to.
	XORAlignment = 4

	// HeaderSize is the fixed block-header length the hash engine expects.
	HeaderSize = 140
)

func init() {
	// Static assertions mirroring the original's static_assert lines; wrong
	// constants here would silently corrupt every solve, so fail loudly at
	// package init instead of deep inside a reduction step.
	if SegBits*(K+1) != N {
		panic("params: incompatible N/K/SegBits")
	}
	if ItemsPerOutPartition*P > ItemsPerBucket {
		panic("params: ItemsPerOutPartition*P overflows ItemsPerBucket")
	}
	if PartBits >= 32 {
		panic("params: PartBits expression overflowed")
	}
}

// BucketMask returns the BucketBits-wide mask used to read a bucket id out
// of a raw first-segment value.
func BucketMask() uint32 { return uint32(bucketMaskU64) }

// HTMask returns the HTBits-wide mask used to compute collision hash-table
// indices.
func HTMask() uint32 { return HTSize - 1 }
