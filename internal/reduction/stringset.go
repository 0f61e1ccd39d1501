// Package reduction implements the bucketed collision-reduction engine:
// initial string generation (spec.md §4.5), reduction steps 0..7
// (§4.6), and the final collision step (§4.7).
package reduction

import (
	"github.com/morpav/zceq-solver/internal/arena"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/xstring"
)

// StringSet is one step's full string array: a single arena space sliced
// into MaximumStringSetSize fixed-stride records, addressed by absolute
// position (bucket*ItemsPerBucket + offset).
type StringSet struct {
	Desc   xstring.Descriptor
	space  *arena.Space
	stride int
}

// NewStringSet allocates (but does not yet place) a string set sized for
// desc's record layout.
func NewStringSet(a *arena.Arena, name string, desc xstring.Descriptor) *StringSet {
	stride := desc.AllocSize()
	space := a.Create(name, uint64(stride)*params.MaximumStringSetSize)
	return &StringSet{Desc: desc, space: space, stride: stride}
}

// Allocate places the string set's backing storage in the arena.
func (s *StringSet) Allocate() error {
	return s.space.Allocate(arena.FirstAvailable)
}

// Reconfigure switches the string set to desc's record layout ahead of
// the next reduction step, resizing its backing space in place — the
// Go equivalent of the original solver's per-step Resize/Reallocate
// dance between its two ping-ponging string-set spaces (spec.md §5,
// Solver::Run).
func (s *StringSet) Reconfigure(desc xstring.Descriptor) error {
	s.Desc = desc
	s.stride = desc.AllocSize()
	return s.space.Resize(uint64(s.stride) * params.MaximumStringSetSize)
}

// Name returns the string set's backing space name, for logging.
func (s *StringSet) Name() string { return s.space.Name() }

// Release frees the string set's backing storage.
func (s *StringSet) Release() { s.space.Release() }

// Record returns the record at absolute position pos.
func (s *StringSet) Record(pos uint32) xstring.Record {
	off := int(pos) * s.stride
	return xstring.NewRecord(s.Desc, s.space.Bytes()[off:off+s.stride])
}
