// Package arena implements the solver's slab allocator: spec.md §4.1.
//
// It reserves one large slab divided into fixed-size slots and hands out
// Space handles mapping to contiguous slot ranges. The slab itself is a
// plain Go byte slice — the huge-page-backed mapping the original solver
// uses is an external collaborator per spec.md §1 ("the huge-page-backed
// slab allocator used as memory arena (specified here only as its contract
// to the solver)"); only the bookkeeping contract is implemented here.
//
// Bookkeeping style (offset/size slot accounting guarded by a mutex,
// errors wrapped with fmt.Errorf) follows the teacher's
// store/freelist.FreeList.
package arena

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dustin/go-humanize"
	bin "github.com/gagliardetto/binary"
	"k8s.io/klog/v2"
)

// FirstAvailable requests that Allocate pick the first free run of slots
// long enough to hold the Space, scanning left to right.
const FirstAvailable = ^uint32(0)

// ErrOutOfSpace is returned when no free run of slots is long enough to
// satisfy an allocation. The spec treats this as fatal — the pool is sized
// statically from the algorithm constants — but the arena itself only
// reports it; deciding whether to abort is left to the caller (solver.Run).
var ErrOutOfSpace = fmt.Errorf("arena: out of space")

// ErrConflict is returned, in every build, when an allocation would
// overlap slots already held by another used space. Releasing a space
// whose slots are not owned by it does not return an error; release
// logs it instead.
var ErrConflict = fmt.Errorf("arena: slot ownership conflict")

// Arena is a slab of slotCount*slotSize bytes, split into fixed-size slots.
type Arena struct {
	mu        sync.Mutex
	slotSize  uint32
	slotCount uint32
	slab      []byte
	// owner[i] is the Space currently holding slot i, or nil if free.
	owner []*Space
}

// New reserves a slab with enough slots of slotSize bytes to cover
// capacityBytes, rounded up.
func New(slotSize uint32, capacityBytes uint64) *Arena {
	if slotSize == 0 {
		slotSize = 4096
	}
	slotCount := uint32((capacityBytes + uint64(slotSize) - 1) / uint64(slotSize))
	a := &Arena{
		slotSize:  slotSize,
		slotCount: slotCount,
		slab:      make([]byte, uint64(slotCount)*uint64(slotSize)),
		owner:     make([]*Space, slotCount),
	}
	klog.V(2).Infof("arena: reserved %s across %d slots of %d bytes",
		humanize.Bytes(uint64(len(a.slab))), slotCount, slotSize)
	return a
}

// Space is a handle to a (possibly empty) contiguous slot range. A Space
// with a zero size is legal and unused; Allocate gives it storage.
type Space struct {
	owner *Arena
	name  string
	place uint32 // slot offset, valid only while used
	size  uint32 // slot count
	used  bool
}

// Create returns a new, unused handle sized to hold sizeBytes once
// allocated.
func (a *Arena) Create(name string, sizeBytes uint64) *Space {
	size := uint32((sizeBytes + uint64(a.slotSize) - 1) / uint64(a.slotSize))
	return &Space{owner: a, name: name, size: size}
}

// IsUsed reports whether the space currently holds slots.
func (s *Space) IsUsed() bool { return s.used }

// Name returns the space's debug name.
func (s *Space) Name() string { return s.name }

// Bytes returns the slice of slab bytes backing this space. It panics if
// the space is unused — reading an unallocated space is a programming
// error in every caller in this module.
func (s *Space) Bytes() []byte {
	if !s.used {
		panic(fmt.Sprintf("arena: Bytes() on unused space %q", s.name))
	}
	start := uint64(s.place) * uint64(s.owner.slotSize)
	length := uint64(s.size) * uint64(s.owner.slotSize)
	return s.owner.slab[start : start+length]
}

// Allocate places the space at `place` (or at the first long-enough free
// run, when place == FirstAvailable) using the space's current size.
func (s *Space) Allocate(place uint32) error {
	return s.owner.allocate(s, place, s.size)
}

// AllocateIfUnused allocates the space at its current place if it isn't
// already holding storage; a no-op otherwise.
func (s *Space) AllocateIfUnused() error {
	if s.used {
		return nil
	}
	return s.Allocate(s.place)
}

// Release frees the space's slots. Idempotent.
func (s *Space) Release() {
	s.owner.release(s)
}

// Resize changes the space's size. If unused, it just updates the
// bookkeeping size; if used, it releases in place and re-allocates at the
// same offset with the new size.
func (s *Space) Resize(newSizeBytes uint64) error {
	newSize := uint32((newSizeBytes + uint64(s.owner.slotSize) - 1) / uint64(s.owner.slotSize))
	if !s.used {
		s.size = newSize
		return nil
	}
	place := s.place
	s.owner.release(s)
	return s.owner.allocate(s, place, newSize)
}

// Reallocate releases the space and re-allocates it at `place` with
// newSizeBytes.
func (s *Space) Reallocate(place uint32, newSizeBytes uint64) error {
	newSize := uint32((newSizeBytes + uint64(s.owner.slotSize) - 1) / uint64(s.owner.slotSize))
	s.owner.release(s)
	return s.owner.allocate(s, place, newSize)
}

func (a *Arena) allocate(s *Space, place, size uint32) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if size == 0 {
		s.used = true
		s.place = place
		s.size = 0
		return nil
	}

	if place == FirstAvailable {
		found, err := a.findFirstAvailableLocked(size)
		if err != nil {
			return err
		}
		place = found
	}

	if uint64(place)+uint64(size) > uint64(a.slotCount) {
		return fmt.Errorf("%w: space %q needs %d slots at %d, slab has %d slots",
			ErrOutOfSpace, s.name, size, place, a.slotCount)
	}
	for i := place; i < place+size; i++ {
		if a.owner[i] != nil {
			return fmt.Errorf("%w: slot %d wanted by %q already held by %q",
				ErrConflict, i, s.name, a.owner[i].name)
		}
	}
	for i := place; i < place+size; i++ {
		a.owner[i] = s
	}
	s.place = place
	s.size = size
	s.used = true
	return nil
}

func (a *Arena) findFirstAvailableLocked(size uint32) (uint32, error) {
	var runStart uint32
	var runLen uint32
	for i := uint32(0); i < a.slotCount; i++ {
		if a.owner[i] == nil {
			if runLen == 0 {
				runStart = i
			}
			runLen++
			if runLen == size {
				return runStart, nil
			}
		} else {
			runLen = 0
		}
	}
	return 0, fmt.Errorf("%w: no run of %d free slots among %d", ErrOutOfSpace, size, a.slotCount)
}

func (a *Arena) release(s *Space) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !s.used {
		return
	}
	for i := s.place; i < s.place+s.size; i++ {
		if a.owner[i] != s {
			// Fatal correctness bug per spec.md §4.1; logged, not panicked,
			// so a single misbehaving space doesn't take down the process
			// in a release build (spec.md §7's debug-only InternalInvariant
			// disposition).
			klog.Errorf("arena: releasing slot %d owned by %q while releasing %q", i, safeOwnerName(a.owner[i]), s.name)
			continue
		}
		a.owner[i] = nil
	}
	s.used = false
}

func safeOwnerName(s *Space) string {
	if s == nil {
		return "<free>"
	}
	return s.name
}

// Reset releases every space and restores the full free pool.
func (a *Arena) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, owner := range a.owner {
		if owner != nil {
			owner.used = false
		}
		a.owner[i] = nil
	}
}

// Cap returns the slab's total capacity in bytes.
func (a *Arena) Cap() uint64 { return uint64(a.slotCount) * uint64(a.slotSize) }

// slotRange Borsh-encodes one used space's slot occupancy, as recorded
// by DumpState.
type slotRange struct {
	Name  string
	Place uint32
	Size  uint32
}

// DumpState Borsh-encodes a snapshot of every currently used space's
// slot occupancy, for test assertions and debugging — a direct
// adaptation of compactindexsized/header.go's header-marshalling
// pattern, applied to the arena's in-memory layout instead of an
// on-disk index header.
func (a *Arena) DumpState() ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var ranges []slotRange
	var last *Space
	for _, owner := range a.owner {
		if owner == nil || owner == last {
			continue
		}
		ranges = append(ranges, slotRange{Name: owner.name, Place: owner.place, Size: owner.size})
		last = owner
	}

	buf := new(bytes.Buffer)
	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint32(a.slotSize, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("arena: dump slot size: %w", err)
	}
	if err := enc.WriteUint32(a.slotCount, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("arena: dump slot count: %w", err)
	}
	if err := enc.WriteUint32(uint32(len(ranges)), binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("arena: dump range count: %w", err)
	}
	for _, r := range ranges {
		if err := enc.WriteUint32(uint32(len(r.Name)), binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("arena: dump space name length: %w", err)
		}
		if _, err := enc.Write([]byte(r.Name)); err != nil {
			return nil, fmt.Errorf("arena: dump space name: %w", err)
		}
		if err := enc.WriteUint32(r.Place, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("arena: dump space place: %w", err)
		}
		if err := enc.WriteUint32(r.Size, binary.LittleEndian); err != nil {
			return nil, fmt.Errorf("arena: dump space size: %w", err)
		}
	}
	return buf.Bytes(), nil
}
