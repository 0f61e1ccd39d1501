package reduction

// Config toggles the algorithm variants spec.md §9 calls out as global
// mutable configuration in the original solver. DefaultConfig returns the
// original's defaults; the zero value turns every toggle off and has a
// TooManyBasicCollisions of 0, which discards every collision group.
// Solution recomputation is configured on solver.Config, not here.
type Config struct {
	// CheckBucketOverflow drops writes past a bucket's capacity instead
	// of corrupting adjacent buckets. Disabling it is only safe when
	// RecomputeSolution is also set, per spec.md §4.4.
	CheckBucketOverflow bool
	// FilterZeroQWord retracts an output string whose first 8 bytes are
	// all zero immediately after writing it (spec.md §4.6).
	FilterZeroQWord bool
	// Step8FilterByLastSegment drops a final-step candidate when the
	// immediately preceding candidate in the same bucket carried the
	// same 40-bit trailing value (spec.md §4.7).
	Step8FilterByLastSegment bool
	// ProcessCandidateEarly processes each final-step candidate as soon
	// as it's produced rather than draining a collected list afterward
	// (spec.md §4.7). This implementation only supports the eager path;
	// see DESIGN.md for why the drained variant's cheap parent-overlap
	// pre-filter was not implemented.
	ProcessCandidateEarly bool
	// TooManyBasicCollisions is the group-size threshold at or above
	// which a collision group is discarded wholesale.
	TooManyBasicCollisions int
}

// DefaultConfig matches the original solver's defaults.
func DefaultConfig() Config {
	return Config{
		CheckBucketOverflow:      true,
		FilterZeroQWord:          false,
		Step8FilterByLastSegment: true,
		ProcessCandidateEarly:    true,
		TooManyBasicCollisions:   14,
	}
}
