// Package pairlink implements the 32-bit pair-link encoding from
// spec.md §4.9: a combinatorial index of two parent positions within a
// bucket, plus the low bucket-id bits that fit alongside it; the remaining
// high bucket-id bits come from the partition the linked string sits in.
package pairlink

import (
	"math"

	"github.com/morpav/zceq-solver/internal/params"
)

// L is a pair-link: the provenance of one output string, encoding the
// two (larger, smaller) positions it was produced from within a bucket,
// or a single raw index when used at reduction level 0.
type L uint32

const linkShift = params.LinkShift

// bucketMask isolates the low LinkShift bits of a pair link, the
// combinatorial index `C`.
const bucketMask = uint32(1)<<linkShift - 1

// Encode packs (larger, smaller) positions within a bucket, plus the
// low (BucketBits-PartBits) bits of the bucket id, into a pair link.
// larger must be strictly greater than smaller; bucketLowBits must fit in
// BucketBits-PartBits bits.
func Encode(larger, smaller, bucketLowBits uint32) L {
	c := larger*(larger-1)/2 + smaller
	return L(c | (bucketLowBits << linkShift))
}

// SetSingleIndex returns a pair link that carries a single raw index,
// used at reduction level 0 where a string has no ancestry to encode.
func SetSingleIndex(index uint32) L {
	return L(index)
}

// Translated holds the two parent positions a pair link decodes to,
// expressed as absolute positions within the full string set (bucket
// index folded in).
type Translated struct {
	Smaller uint32
	Larger  uint32
}

// Translate recovers the two parent positions referenced by l. linkPos is
// the absolute position (within the full string set) where the string
// carrying l was written; the partition that position falls in supplies
// the bucket-id bits that don't fit in the pair link itself.
func Translate(l L, linkPos uint64) Translated {
	c := uint32(l) & bucketMask

	larger := uint32(math.Sqrt(2*float64(c) + 1))
	smaller := c - larger*(larger-1)/2
	// The float sqrt above yields either the true larger position or one
	// below it; in the latter case smaller comes out >= the estimate and
	// is corrected here.
	if smaller >= larger {
		smaller -= larger
		larger++
	}

	partition := uint32((linkPos % params.ItemsPerBucket) / params.ItemsPerOutPartition)
	partition &= params.P - 1

	bucket := partition<<(32-linkShift) | (uint32(l) >> linkShift)

	return Translated{
		Smaller: params.ItemsPerBucket*bucket + smaller,
		Larger:  params.ItemsPerBucket*bucket + larger,
	}
}

// Validate reports whether re-encoding the translated positions reproduces
// l exactly, and that both positions fall in the same bucket. Used by
// debug-build consistency checks, not the hot path.
func Validate(l L, linkPos uint64) bool {
	tr := Translate(l, linkPos)
	bucketOfLarger := tr.Larger / params.ItemsPerBucket
	bucketOfSmaller := tr.Smaller / params.ItemsPerBucket
	if bucketOfLarger != bucketOfSmaller {
		return false
	}
	bucketLowBits := bucketOfLarger & (uint32(1)<<(params.BucketBits-params.PartBits) - 1)
	re := Encode(tr.Larger%params.ItemsPerBucket, tr.Smaller%params.ItemsPerBucket, bucketLowBits)
	return re == l
}
