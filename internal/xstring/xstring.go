// Package xstring implements the per-step string record described in
// spec.md §3/§4.3: a 32-bit pair-link followed by the hash suffix still
// surviving reduction at a given step. Two concrete layouts exist —
// expanded (one segment per 3 bytes) and packed (20 bits per segment, with an
// optional 8-bit skip on the first segment) — selected at runtime via a
// Descriptor rather than the original's per-step generated template
// instantiations.
package xstring

import (
	"encoding/binary"

	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
)

// Layout selects how remaining segments are packed into a record's hash
// suffix.
type Layout int

const (
	// Expanded stores one segment per 3 bytes, byte-aligned.
	Expanded Layout = iota
	// Packed stores 20 bits per segment, alternating byte/nibble
	// alignment between even and odd segments.
	Packed
)

// Descriptor parameterises a string record the way the original's
// XString<segments_reduced, expanded_hash, skipped_bits> template did,
// but as runtime values so one set of accessors serves every step.
type Descriptor struct {
	Layout Layout
	// Step is the number of segments already reduced away; this
	// record's hash suffix covers segments Step..params.Segs-1.
	Step int
	// SkipBits is 0 or 8. When 8 (packed layout only), the first
	// segment's low byte — redundant with the bucket id recoverable
	// from the record's position — is elided from storage.
	SkipBits int
}

// HashLength is the byte size of the hash-suffix portion of a record
// under this descriptor.
func (d Descriptor) HashLength() int {
	if d.Layout == Expanded {
		return params.SegBytes * (params.Segs - d.Step)
	}
	bits := params.N - d.Step*params.SegBits - d.SkipBits
	return (bits + 7) / 8
}

// RecordSize is the total record size: a 4-byte pair-link plus the hash
// suffix.
func (d Descriptor) RecordSize() int {
	return 4 + d.HashLength()
}

// AllocSize is RecordSize rounded up with a small amount of trailing
// slack, matching the arena's own alignment headroom: the XOR in
// OutputString and the final segment's u32 reads are allowed to reach
// slightly past a record's logical end, relying on that headroom rather
// than a bounds check (spec.md §4.6: "reaching slightly past the end is
// permitted because of the trailing alignment of the arena").
func (d Descriptor) AllocSize() int {
	size := d.RecordSize()
	return ((size + params.XORAlignment - 1) / params.XORAlignment) * params.XORAlignment + params.XORAlignment
}

func (d Descriptor) isFirst(segment int) bool { return segment == d.Step }

func (d Descriptor) containsSegment(segment int) bool {
	return segment >= d.Step && segment <= params.Segs
}

func (d Descriptor) segmentShift(segment int) uint {
	if d.Layout == Packed && segment%2 == 1 {
		return 4
	}
	return 0
}

// otherSegmentOffset returns the byte offset, within the hash suffix, of
// the first byte containing bits of `segment` (segment must be > Step).
func (d Descriptor) otherSegmentOffset(segment int) int {
	if d.Layout == Expanded {
		return params.SegBytes * (segment - d.Step)
	}
	reducedBytes := (params.SegBits * d.Step) / 8
	bytesSkipped := d.SkipBits / 8
	return (params.SegBits*segment)/8 - reducedBytes - bytesSkipped
}

const segmentBitMask = 0x000FFFFF

// Record is a view over one string's bytes inside an arena: the first 4
// bytes hold the pair-link, the rest the hash suffix.
type Record struct {
	Desc Descriptor
	Buf  []byte
}

// NewRecord wraps buf (which must be at least Desc.AllocSize() bytes) as
// a record.
func NewRecord(desc Descriptor, buf []byte) Record {
	return Record{Desc: desc, Buf: buf}
}

// Link returns the record's pair-link.
func (r Record) Link() pairlink.L {
	return pairlink.L(binary.LittleEndian.Uint32(r.Buf[:4]))
}

// SetLink stores l as the record's pair-link.
func (r Record) SetLink(l pairlink.L) {
	binary.LittleEndian.PutUint32(r.Buf[:4], uint32(l))
}

func (r Record) hashBytes() []byte { return r.Buf[4:] }

// FirstSegmentRaw returns the first (current step's) segment, unmasked
// beyond its 20 significant bits, with SkipBits worth of low bits
// realigned to position 0. Equivalent to spec.md §4.3's "raw integer
// read of the leading 4 bytes shifted by skipBits".
func (r Record) FirstSegmentRaw() uint32 {
	raw := binary.LittleEndian.Uint32(r.hashBytes()[:4])
	shifted := (raw << uint(r.Desc.SkipBits)) >> r.Desc.segmentShift(r.Desc.Step)
	return shifted
}

// FirstSegmentClean returns the current step's segment masked to its 20
// significant bits, with the low SkipBits bits cleared (they are
// recoverable from the record's bucket position, not stored).
func (r Record) FirstSegmentClean() uint32 {
	tmp := r.FirstSegmentRaw() & segmentBitMask
	return tmp &^ (uint32(1)<<uint(r.Desc.SkipBits) - 1)
}

// OtherSegmentRaw returns `segment`'s raw bits (unmasked beyond 20 bits),
// for any segment strictly after the current step. It reads a full u32
// at the segment's byte offset relying on AllocSize's trailing slack.
func (r Record) OtherSegmentRaw(segment int) uint32 {
	off := r.Desc.otherSegmentOffset(segment)
	raw := binary.LittleEndian.Uint32(r.hashBytes()[off : off+4])
	return raw >> r.Desc.segmentShift(segment)
}

// OtherSegmentClean returns `segment` masked to its 20 significant bits.
func (r Record) OtherSegmentClean(segment int) uint32 {
	return r.OtherSegmentRaw(segment) & segmentBitMask
}

// SecondSegmentRaw reads segment Step+1, the segment OutputString uses
// to route the produced string to its output bucket.
func (r Record) SecondSegmentRaw() uint32 {
	return r.OtherSegmentRaw(r.Desc.Step + 1)
}

// SetFirstSegment writes value (already masked to 20 bits) into the
// current step's segment, preserving any bits below SkipBits (there are
// none to preserve — they're simply never stored).
func (r Record) SetFirstSegment(value uint32) {
	shift := r.Desc.segmentShift(r.Desc.Step)
	raw := binary.LittleEndian.Uint32(r.hashBytes()[:4])
	skip := uint(r.Desc.SkipBits)
	if skip > 0 {
		raw = (raw &^ (segmentBitMask >> (skip - shift))) | ((value & segmentBitMask) >> (skip - shift))
	} else {
		raw = (raw &^ (segmentBitMask << shift)) | ((value & segmentBitMask) << shift)
	}
	binary.LittleEndian.PutUint32(r.hashBytes()[:4], raw)
}

// SetOtherSegment writes value (already masked to 20 bits) into
// `segment`, which must be strictly after the current step.
func (r Record) SetOtherSegment(segment int, value uint32) {
	off := r.Desc.otherSegmentOffset(segment)
	shift := r.Desc.segmentShift(segment)
	raw := binary.LittleEndian.Uint32(r.hashBytes()[off : off+4])
	raw = (raw &^ (segmentBitMask << shift)) | ((value & segmentBitMask) << shift)
	binary.LittleEndian.PutUint32(r.hashBytes()[off:off+4], raw)
}

// FinalCollisionSegments returns the last two surviving segments as one
// value — the 48 raw bits of their two 3-byte slots in the Expanded
// layout, or 40-SkipBits bits in the Packed layout — left-shifted by
// SkipBits for uniformity with the packed layout's bit accounting, for
// the final step's collision check and duplicate-candidate
// comparison (spec.md §4.6 step8_filter_by_last_segment).
func (r Record) FinalCollisionSegments() uint64 {
	if r.Desc.Step != params.Segs-2 {
		panic("xstring: FinalCollisionSegments requires step == Segs-2")
	}
	hb := r.hashBytes()
	var validBits uint
	if r.Desc.Layout == Expanded {
		validBits = uint(params.SegBytes * 2 * 8)
	} else {
		validBits = uint(params.SegBits*2 - r.Desc.SkipBits)
	}
	var raw uint64
	for i := 0; i < 8 && i < len(hb); i++ {
		raw |= uint64(hb[i]) << (8 * i)
	}
	mask := uint64(1)<<validBits - 1
	return (raw & mask) << uint(r.Desc.SkipBits)
}

// XORInto XORs the byte range covering segments dst.Desc.Step..end of
// src and other into dst's hash suffix, aligned up to XORAlignment,
// matching OutputString's reduction write (spec.md §4.6). src and other
// must share src.Desc.Step == other.Desc.Step == dst.Desc.Step-1.
func XORInto(dst, src, other Record) {
	srcOff := src.Desc.otherSegmentOffset(dst.Desc.Step)
	otherOff := other.Desc.otherSegmentOffset(dst.Desc.Step)

	n := len(dst.hashBytes())
	n = ((n + params.XORAlignment - 1) / params.XORAlignment) * params.XORAlignment

	d := dst.hashBytes()
	s := src.hashBytes()
	o := other.hashBytes()
	for i := 0; i+4 <= n && srcOff+i+4 <= len(s) && otherOff+i+4 <= len(o); i += 4 {
		v := binary.LittleEndian.Uint32(s[srcOff+i:]) ^ binary.LittleEndian.Uint32(o[otherOff+i:])
		binary.LittleEndian.PutUint32(d[i:], v)
	}
}
