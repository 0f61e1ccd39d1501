package xstring

import (
	"encoding/binary"

	"github.com/morpav/zceq-solver/internal/params"
)

// ReadRawSegment reads the SegBits-wide segment `seg` out of a freshly
// generated, naturally bit-packed 32-byte hash half (the Blake2b output's
// native layout, before any record layout is chosen). Used both when
// bucketing initial strings and when regenerating them for recomputation.
func ReadRawSegment(buf []byte, seg int) uint32 {
	bitOff := params.SegBits * seg
	byteOff := bitOff / 8
	shift := uint(bitOff % 8)
	raw := binary.LittleEndian.Uint32(buf[byteOff : byteOff+4])
	return (raw >> shift) & segmentBitMask
}
