package solver

import (
	"context"

	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/reduction"
	"github.com/morpav/zceq-solver/internal/xstring"
)

// Config carries every algorithm toggle spec.md §9 calls "global mutable
// configuration" in the original solver, plus the record layout and a
// context. It has no bucket or arena sizing fields: sizes always come
// from internal/params. There is no package-level mutable state; every
// Solver is built from one of these.
type Config struct {
	// CheckBucketOverflow drops writes past a bucket's capacity instead
	// of corrupting adjacent buckets. Disabling it is only safe when
	// RecomputeSolution is also set (spec.md §4.4).
	CheckBucketOverflow bool
	// FilterZeroQWordStrings retracts an output string whose first 8
	// bytes are all zero immediately after writing it (spec.md §4.6).
	FilterZeroQWordStrings bool
	// Step8FilterByLastSegment drops a final-step candidate whose final
	// segments equal those of the immediately preceding candidate
	// (spec.md §4.7).
	Step8FilterByLastSegment bool
	// RecomputeSolution independently regenerates and re-checks every
	// candidate solution from scratch before accepting it (spec.md §4.8
	// RecomputeSolution) — the cross-check that lets CheckBucketOverflow
	// be disabled safely.
	RecomputeSolution bool
	// TooManyBasicCollisions is the group-size threshold at or above
	// which a collision group is discarded wholesale.
	TooManyBasicCollisions int
	// Layout selects the string record layout used at every reduction
	// level.
	Layout xstring.Layout
	// SkipBits elides each level's already-bucketed low bits from
	// storage when using the Packed layout; 0 disables the
	// optimization (see DESIGN.md for why this defaults off).
	SkipBits int
	// Context is a cancellation hook reserved for a future
	// multi-threaded implementation (spec.md §5); Run checks it once,
	// before starting, and returns its error if it is already done, but
	// does not poll it during the solve — like the teacher's store.Store
	// accepting a context.Context on paths it does not cancel.
	Context context.Context
}

// DefaultConfig matches the original solver's defaults.
func DefaultConfig() Config {
	return Config{
		CheckBucketOverflow:      true,
		FilterZeroQWordStrings:   false,
		Step8FilterByLastSegment: true,
		RecomputeSolution:        true,
		TooManyBasicCollisions:   params.TooManyBasicCollisions,
		Layout:                   xstring.Expanded,
		SkipBits:                 0,
		Context:                  context.Background(),
	}
}

func (c Config) reductionConfig() reduction.Config {
	return reduction.Config{
		CheckBucketOverflow:      c.CheckBucketOverflow,
		FilterZeroQWord:          c.FilterZeroQWordStrings,
		Step8FilterByLastSegment: c.Step8FilterByLastSegment,
		ProcessCandidateEarly:    true,
		TooManyBasicCollisions:   c.TooManyBasicCollisions,
	}
}

func (c Config) descriptor(step int) xstring.Descriptor {
	return xstring.Descriptor{Layout: c.Layout, Step: step, SkipBits: c.SkipBits}
}
