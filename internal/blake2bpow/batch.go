package blake2bpow

// Batch2 and Batch4 compute several FinalizeInto results from one engine
// in a single call. The original solver dispatches these to hand-written
// SIMD backends (SSE2/AVX1/AVX2/NEON) selected by CPU feature detection;
// Go has no portable equivalent of that intrinsics path, so both batch
// sizes here are scalar loops that share the Engine's midstate the same
// way the vectorized backends do, differing only in throughput, never in
// the bits produced. spec.md §9 treats the batching factor as a
// non-functional performance knob, not a semantic one.

// Batch2 computes FinalizeInto(gStart), FinalizeInto(gStart+1).
func (e *Engine) Batch2(out *[2]State, gStart uint32) {
	e.FinalizeInto(&out[0], gStart)
	e.FinalizeInto(&out[1], gStart+1)
}

// Batch4 computes FinalizeInto(gStart) .. FinalizeInto(gStart+3).
func (e *Engine) Batch4(out *[4]State, gStart uint32) {
	for i := uint32(0); i < 4; i++ {
		e.FinalizeInto(&out[i], gStart+i)
	}
}
