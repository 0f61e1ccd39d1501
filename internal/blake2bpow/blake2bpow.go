// Package blake2bpow implements the Zcash-personalised BLAKE2b hash engine
// described in spec.md §4.2: a two-block split where the 140-byte block
// header is compressed once into a midstate, and only a 16-byte tail
// (the header's own last 12 bytes plus a 4-byte counter `g`) varies per
// generated hash.
//
// The compression function itself is adapted from gtank/blake2b's unrolled
// scalar implementation, generalised to take the Zcash personalisation
// block and to expose the midstate split the batch generator needs.
package blake2bpow

import "encoding/binary"

// BLAKE2b initialization vector.
const (
	iv0 uint64 = 0x6a09e667f3bcc908
	iv1 uint64 = 0xbb67ae8584caa73b
	iv2 uint64 = 0x3c6ef372fe94f82b
	iv3 uint64 = 0xa54ff53a5f1d36f1
	iv4 uint64 = 0x510e527fade682d1
	iv5 uint64 = 0x9b05688c2b3e6c1f
	iv6 uint64 = 0x1f83d9abfb41bd6b
	iv7 uint64 = 0x5be0cd19137e2179
)

// BlockSize is the BLAKE2b compression block size in bytes.
const BlockSize = 128

// HeaderSize is the fixed block-header length the engine expects, per
// spec.md §4.2 and §3.
const HeaderSize = 140

// personalizedIV is the BLAKE2b IV with the Equihash(200,9) parameter
// block, "ZcashPoW" personalisation string, and (N,K) XOR-folded in, per
// the Zcash protocol's Equihash parameterisation.
var personalizedIV = [8]uint64{
	iv0 ^ 0x1010032,
	iv1,
	iv2,
	iv3,
	iv4,
	iv5,
	iv6 ^ 0x576f50687361635a, // "ZcashPoW" little-endian
	iv7 ^ 0x00000009000000c8, // K=9, N=200
}

// State is the raw BLAKE2b chain value plus counters, matching the
// original solver's State union of h64[8]/hash[64] and the t/f counters.
type State struct {
	H  [8]uint64
	T0 uint64
	T1 uint64
	F0 uint64
	F1 uint64
}

// Bytes returns the 64-byte little-endian encoding of the chain value,
// i.e. the raw hash output for a finalized state.
func (s *State) Bytes() [64]byte {
	var out [64]byte
	for i, w := range s.H {
		binary.LittleEndian.PutUint64(out[i*8:], w)
	}
	return out
}

// Engine holds the precomputed midstate for one (header, nonce) pair.
// Prepare is called once; FinalizeInto may then be called many times with
// different counters g to produce the batch of hashes spec.md §4.5 needs.
type Engine struct {
	prepared State
	// nonceTail holds header[128:140], the unconsumed tail of the header
	// that is combined with the per-hash counter g in the second block.
	nonceTail [12]byte
}

// Prepare compresses the first 128 bytes of header (which must be exactly
// HeaderSize bytes) into the midstate and stashes the remaining 12 bytes
// for reuse by every subsequent FinalizeInto call.
func (e *Engine) Prepare(header []byte) {
	if len(header) != HeaderSize {
		panic("blake2bpow: header must be exactly HeaderSize bytes")
	}

	e.prepared.H = personalizedIV
	e.prepared.T0 = BlockSize
	e.prepared.T1 = 0
	e.prepared.F0 = 0
	e.prepared.F1 = 0
	compress(&e.prepared, header[:BlockSize])

	// The state now looks as though the whole header plus the 4-byte
	// counter `g` were already absorbed, ready for the final compression.
	e.prepared.T0 = BlockSize + 16
	e.prepared.F0 = ^uint64(0)

	copy(e.nonceTail[:], header[BlockSize:HeaderSize])
}

// FinalizeInto computes the hash for counter g into output, leaving the
// engine's prepared midstate untouched so it can be reused.
func (e *Engine) FinalizeInto(output *State, g uint32) {
	*output = e.prepared

	var block [BlockSize]byte
	copy(block[:12], e.nonceTail[:])
	binary.LittleEndian.PutUint32(block[12:16], g)
	// block[16:128] stays zero.

	compress(output, block[:])
}

// compress runs the 12-round BLAKE2b compression function over one
// 128-byte block, updating state in place. Round structure and rotation
// constants are the unrolled scalar form used throughout the BLAKE2b
// reference family.
func compress(state *State, block []byte) {
	var m [16]uint64
	for i := range m {
		m[i] = binary.LittleEndian.Uint64(block[i*8:])
	}

	v0, v1, v2, v3 := state.H[0], state.H[1], state.H[2], state.H[3]
	v4, v5, v6, v7 := state.H[4], state.H[5], state.H[6], state.H[7]
	v8, v9, v10, v11 := iv0, iv1, iv2, iv3
	v12 := iv4 ^ state.T0
	v13 := iv5 ^ state.T1
	v14 := iv6 ^ state.F0
	v15 := iv7 ^ state.F1

	for round := 0; round < 12; round++ {
		s := &sigma[round%10]

		v0, v4, v8, v12 = g(v0, v4, v8, v12, m[s[0]], m[s[1]])
		v1, v5, v9, v13 = g(v1, v5, v9, v13, m[s[2]], m[s[3]])
		v2, v6, v10, v14 = g(v2, v6, v10, v14, m[s[4]], m[s[5]])
		v3, v7, v11, v15 = g(v3, v7, v11, v15, m[s[6]], m[s[7]])

		v0, v5, v10, v15 = g(v0, v5, v10, v15, m[s[8]], m[s[9]])
		v1, v6, v11, v12 = g(v1, v6, v11, v12, m[s[10]], m[s[11]])
		v2, v7, v8, v13 = g(v2, v7, v8, v13, m[s[12]], m[s[13]])
		v3, v4, v9, v14 = g(v3, v4, v9, v14, m[s[14]], m[s[15]])
	}

	state.H[0] ^= v0 ^ v8
	state.H[1] ^= v1 ^ v9
	state.H[2] ^= v2 ^ v10
	state.H[3] ^= v3 ^ v11
	state.H[4] ^= v4 ^ v12
	state.H[5] ^= v5 ^ v13
	state.H[6] ^= v6 ^ v14
	state.H[7] ^= v7 ^ v15
}

// g is the BLAKE2b quarter-round mixing function.
func g(a, b, c, d, mx, my uint64) (uint64, uint64, uint64, uint64) {
	a = a + b + mx
	d = rotr64(d^a, 32)
	c = c + d
	b = rotr64(b^c, 24)
	a = a + b + my
	d = rotr64(d^a, 16)
	c = c + d
	b = rotr64(b^c, 63)
	return a, b, c, d
}

func rotr64(x uint64, n uint) uint64 {
	return (x >> n) | (x << (64 - n))
}

// sigma is the BLAKE2 message-schedule permutation table, rounds 0-9;
// rounds 10 and 11 repeat rounds 0 and 1.
var sigma = [10][16]uint8{
	{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
	{14, 10, 4, 8, 9, 15, 13, 6, 1, 12, 0, 2, 11, 7, 5, 3},
	{11, 8, 12, 0, 5, 2, 15, 13, 10, 14, 3, 6, 7, 1, 9, 4},
	{7, 9, 3, 1, 13, 12, 11, 14, 2, 6, 5, 10, 4, 0, 15, 8},
	{9, 0, 5, 7, 2, 4, 10, 15, 14, 1, 11, 12, 6, 8, 3, 13},
	{2, 12, 6, 10, 0, 11, 8, 3, 4, 13, 7, 5, 15, 14, 1, 9},
	{12, 5, 1, 15, 14, 13, 4, 10, 0, 7, 6, 3, 9, 2, 8, 11},
	{13, 11, 7, 14, 12, 1, 3, 9, 5, 0, 15, 4, 8, 6, 2, 10},
	{6, 15, 14, 9, 11, 3, 0, 8, 12, 2, 13, 7, 1, 4, 10, 5},
	{10, 2, 8, 4, 7, 6, 1, 5, 15, 11, 9, 14, 3, 12, 13, 0},
}
