// Package wire implements Zcash's minimal (compact) Equihash solution
// encoding: 512 20-bit-plus-one original indices, each big-endian so
// lexicographic byte comparison matches integer comparison, bit-packed
// into a 1344-byte string (spec.md §4.10). This sits outside the
// solver's core: it is the interoperability surface spec.md §6 requires
// for exchanging a solution with anything that isn't this module.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/morpav/zceq-solver/internal/params"
)

// indexBitLen is the width of one packed index: one more bit than a
// segment carries, since original indices range over 0..S-1 (S = 2^21).
const indexBitLen = params.SegBits + 1

// bytePad is the padding CompressArray/ExpandArray insert so each index
// still decodes as a whole big-endian uint32 before/after packing.
const bytePad = 4 - (indexBitLen+7)/8

// CompactSize is the byte length of a full solution's minimal encoding.
const CompactSize = indexBitLen * params.SolutionSize / 8

var ErrWrongIndexCount = fmt.Errorf("wire: solution must have exactly %d indices", params.SolutionSize)
var ErrWrongCompactSize = fmt.Errorf("wire: compact solution must be exactly %d bytes", CompactSize)

// ExpandedToCompact packs indices (512 original string indices) into the
// minimal encoding.
func ExpandedToCompact(indices []uint32) ([]byte, error) {
	if len(indices) != params.SolutionSize {
		return nil, ErrWrongIndexCount
	}
	expanded := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.BigEndian.PutUint32(expanded[i*4:], idx)
	}
	return compressArray(expanded, CompactSize, indexBitLen, bytePad), nil
}

// CompactToExpanded unpacks a minimal-encoded solution back into 512
// original string indices.
func CompactToExpanded(compact []byte) ([]uint32, error) {
	if len(compact) != CompactSize {
		return nil, ErrWrongCompactSize
	}
	expanded := expandArray(compact, params.SolutionSize*4, indexBitLen, bytePad)
	indices := make([]uint32, params.SolutionSize)
	for i := range indices {
		indices[i] = binary.BigEndian.Uint32(expanded[i*4:])
	}
	return indices, nil
}

// expandArray un-bit-packs in (bitLen-bit big-endian fields, each
// realigned to a byte_pad-padded, byte-aligned outWidth-byte field).
func expandArray(in []byte, outLen, bitLen, bytePad int) []byte {
	out := make([]byte, outLen)
	outWidth := (bitLen+7)/8 + bytePad
	bitLenMask := uint32(1)<<uint(bitLen) - 1

	var accBits uint
	var accValue uint32
	j := 0
	for _, b := range in {
		accValue = accValue<<8 | uint32(b)
		accBits += 8

		if accBits >= uint(bitLen) {
			accBits -= uint(bitLen)
			for x := bytePad; x < outWidth; x++ {
				shift := accBits + uint(8*(outWidth-x-1))
				mask := (bitLenMask >> uint(8*(outWidth-x-1))) & 0xFF
				out[j+x] = byte(accValue>>shift) & byte(mask)
			}
			j += outWidth
		}
	}
	return out
}

// compressArray bit-packs in (byte_pad-padded, byte-aligned inWidth-byte
// fields) into tightly packed bitLen-bit big-endian fields.
func compressArray(in []byte, outLen, bitLen, bytePad int) []byte {
	out := make([]byte, outLen)
	inWidth := (bitLen+7)/8 + bytePad
	bitLenMask := uint32(1)<<uint(bitLen) - 1

	var accBits uint
	var accValue uint32
	j := 0
	for i := 0; i < outLen; i++ {
		if accBits < 8 {
			accValue <<= uint(bitLen)
			for x := bytePad; x < inWidth; x++ {
				shift := uint(8 * (inWidth - x - 1))
				accValue |= (uint32(in[j+x]) & ((bitLenMask >> shift) & 0xFF)) << shift
			}
			j += inWidth
			accBits += uint(bitLen)
		}
		accBits -= 8
		out[i] = byte(accValue >> accBits)
	}
	return out
}
