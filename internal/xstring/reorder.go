package xstring

import "encoding/binary"

// ReorderForSkipLayout permutes a freshly generated 200-bit hash's
// nibbles so that, once the packed/skip layout drops the first
// segment's low byte (SkipBits=8), the remaining bits sit contiguously
// rather than leaving an 8-bit hole at a fixed nibble offset. Nothing in
// the module calls it: initial generation writes segments without this
// permutation in every layout, and the default pipeline uses SkipBits=0
// (spec.md §9 Open Question — kept for completeness and tested in
// isolation).
func ReorderForSkipLayout(hash *[32]byte) [32]byte {
	var out [32]byte

	h0 := binary.LittleEndian.Uint64(hash[0:8])
	h1 := binary.LittleEndian.Uint64(hash[8:16])
	h2 := binary.LittleEndian.Uint64(hash[16:24])
	h3 := binary.LittleEndian.Uint64(hash[24:32])

	a0 := (h0 & 0x00ffffffff00ffff) |
		((h0 & 0xf000000000f00000) >> 4) |
		((h0 & 0x0f000000000f0000) << 4)

	a1 := (h1 & 0xffffff00ffffffff) |
		((h1 & 0x000000f000000000) >> 4) |
		((h1 & 0x0000000f00000000) << 4)

	a2 := (h2 & 0xff00ffffffff00ff) |
		((h2 & 0x00f000000000f000) >> 4) |
		((h2 & 0x000f000000000f00) << 4)

	a3 := h3

	binary.LittleEndian.PutUint64(out[0:8], a0)
	binary.LittleEndian.PutUint64(out[8:16], a1)
	binary.LittleEndian.PutUint64(out[16:24], a2)
	binary.LittleEndian.PutUint64(out[24:32], a3)
	return out
}
