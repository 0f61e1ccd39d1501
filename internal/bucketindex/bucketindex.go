// Package bucketindex tracks, per bucket, how many output strings a
// reduction step has written and how that count is split across the
// bucket's output partitions — spec.md §4.4.
package bucketindex

import (
	"github.com/morpav/zceq-solver/internal/params"
)

// Index is the write cursor and partition bookkeeping for one reduction
// step's output string set. Counter[i] starts at i*ItemsPerBucket and
// advances as strings are appended to bucket i; PartitionSizes records
// how many of those land in each of the bucket's P output partitions
// once a partition is closed.
type Index struct {
	Counter        [params.B]uint32
	PartitionSizes [params.B][params.P]uint16
}

// Reset rewinds every bucket's write cursor to its base offset and
// clears partition sizes, ready for a fresh reduction step.
func (idx *Index) Reset() {
	for i := range idx.Counter {
		idx.Counter[i] = uint32(i) * params.ItemsPerBucket
	}
	idx.PartitionSizes = [params.B][params.P]uint16{}
}

// Next returns the next free absolute position in bucket and advances
// its cursor. Callers are responsible for checking the bucket hasn't
// overflowed its ItemsPerBucket capacity (spec.md §4.4 BucketOverflow).
func (idx *Index) Next(bucket uint32) uint32 {
	pos := idx.Counter[bucket]
	idx.Counter[bucket]++
	return pos
}

// Overflowed reports whether bucket has exceeded its ItemsPerBucket slot
// capacity.
func (idx *Index) Overflowed(bucket uint32) bool {
	base := uint64(bucket) * params.ItemsPerBucket
	return uint64(idx.Counter[bucket])-base >= params.ItemsPerBucket
}

// CountUsedPositions sums every bucket's recorded partition sizes.
func (idx *Index) CountUsedPositions() uint64 {
	var sum uint64
	for i := range idx.PartitionSizes {
		for _, sz := range idx.PartitionSizes[i] {
			sum += uint64(sz)
		}
	}
	return sum
}

// ClosePartition records, for every bucket, how many strings landed in
// `partition` (clamped to ItemsPerOutPartition), then — unless this was
// the last partition — rewinds every bucket's cursor to the start of the
// next partition. The rewind can move a cursor backwards; that simply
// means some strings in the closing partition could not be addressed by
// a pair link and were dropped, not a bug.
func (idx *Index) ClosePartition(partition uint32) {
	shift := partition * params.ItemsPerOutPartition
	for i := range idx.Counter {
		base := uint32(i) * params.ItemsPerBucket
		size := idx.Counter[i] - base - shift
		if size > params.ItemsPerBucket {
			size = params.ItemsPerBucket
		}
		if size > params.ItemsPerOutPartition {
			size = params.ItemsPerOutPartition
		}
		idx.PartitionSizes[i][partition] = uint16(size)
	}

	if partition != params.P-1 {
		nextShift := (partition + 1) * params.ItemsPerOutPartition
		for i := range idx.Counter {
			idx.Counter[i] = uint32(i)*params.ItemsPerBucket + nextShift
		}
	}
}

// ClosePartitionsForNewStrings derives every bucket's partition sizes
// directly from its current cursor, without rewinding — used for the
// initial string set, which is generated all at once rather than
// partition-by-partition (spec.md §4.5).
func (idx *Index) ClosePartitionsForNewStrings() {
	for i := range idx.Counter {
		bucketStart := uint32(i) * params.ItemsPerBucket
		for part := uint32(0); part < params.P; part++ {
			partStart := bucketStart + part*params.ItemsPerOutPartition
			if partStart >= idx.Counter[i] {
				idx.PartitionSizes[i][part] = 0
				continue
			}
			size := idx.Counter[i] - partStart
			if size > params.ItemsPerOutPartition {
				size = params.ItemsPerOutPartition
			}
			idx.PartitionSizes[i][part] = uint16(size)
		}
	}
}
