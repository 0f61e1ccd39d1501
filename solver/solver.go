// Package solver is the Equihash(200,9) solver façade (spec.md §6): it
// owns the arena, the two ping-ponging string sets, and the per-level
// provenance tables, and drives initial generation, the eight reduction
// steps and the final collision step to completion for one header.
package solver

import (
	"fmt"

	"github.com/morpav/zceq-solver/internal/arena"
	"github.com/morpav/zceq-solver/internal/blake2bpow"
	"github.com/morpav/zceq-solver/internal/bucketindex"
	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
	"github.com/morpav/zceq-solver/internal/reduction"
	"github.com/morpav/zceq-solver/internal/solution"
	"k8s.io/klog/v2"
)

// Solver runs one Equihash(200,9) solve per Prepare'd header. It is not
// safe for concurrent use — see solverabi.SolveMany for fanning out
// across headers, one Solver per header.
type Solver struct {
	cfg          Config
	reductionCfg reduction.Config

	arena  *arena.Arena
	engine blake2bpow.Engine

	spaceA, spaceB *reduction.StringSet
	idxA, idxB     bucketindex.Index

	// links[l] holds each level-l string's pair-link at that string's
	// position, copied out by the reduction step that consumes level l;
	// links[0] holds raw original indices.
	links [][]pairlink.L

	solutions        [][]uint32
	invalidSolutions int
}

// New builds a Solver sized for cfg's record layout. The arena is
// sized once, from the algorithm's own constants, for the largest
// record layout (level 0) the two string sets will ever need — later
// levels only ever shrink, so no further growth is possible.
func New(cfg Config) *Solver {
	level0 := cfg.descriptor(0)
	capacityBytes := 2 * uint64(level0.AllocSize()) * uint64(params.MaximumStringSetSize)
	a := arena.New(params.XORAlignment, capacityBytes)

	s := &Solver{
		cfg:          cfg,
		reductionCfg: cfg.reductionConfig(),
		arena:        a,
	}
	s.spaceA = reduction.NewStringSet(a, "stringsA", level0)
	s.spaceB = reduction.NewStringSet(a, "stringsB", cfg.descriptor(1))
	if err := s.spaceA.Allocate(); err != nil {
		panic(fmt.Sprintf("solver: arena undersized for stringsA: %v", err))
	}
	if err := s.spaceB.Allocate(); err != nil {
		panic(fmt.Sprintf("solver: arena undersized for stringsB: %v", err))
	}

	s.links = make([][]pairlink.L, params.Segs-1)
	for i := range s.links {
		s.links[i] = make([]pairlink.L, params.MaximumStringSetSize)
	}
	return s
}

// Reset prepares the solver for a fresh header: it re-primes the hash
// engine's midstate and restores both string sets to their level-0/
// level-1 record layouts, discarding any solutions from a previous Run.
func (s *Solver) Reset(header []byte) error {
	s.engine.Prepare(header)
	s.solutions = nil
	s.invalidSolutions = 0

	if err := s.spaceA.Reconfigure(s.cfg.descriptor(0)); err != nil {
		return fmt.Errorf("solver: reset stringsA: %w", err)
	}
	if err := s.spaceB.Reconfigure(s.cfg.descriptor(1)); err != nil {
		return fmt.Errorf("solver: reset stringsB: %w", err)
	}
	return nil
}

// Run drives one full solve: initial generation, reduction steps 0..7,
// and the final collision step, collecting every accepted solution.
// Reset must have been called at least once beforehand.
func (s *Solver) Run() error {
	if ctx := s.cfg.Context; ctx != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	s.idxA.Reset()
	reduction.GenerateInitialStrings(&s.engine, s.spaceA, &s.idxA, s.reductionCfg)

	in, out := s.spaceA, s.spaceB
	inIdx, outIdx := &s.idxA, &s.idxB

	const regularSteps = params.Segs - 2 // 8: levels 0..7 each produce the next level.
	for step := 0; step < regularSteps; step++ {
		if err := out.Reconfigure(s.cfg.descriptor(step + 1)); err != nil {
			return fmt.Errorf("solver: reconfigure step %d output: %w", step, err)
		}
		reduction.Step(in, out, inIdx, outIdx, s.links[step], s.reductionCfg)
		in, out = out, in
		inIdx, outIdx = outIdx, inIdx
	}

	reduction.FinalStep(in, inIdx, s.links[solution.FinalLevel], s.collectCandidate, s.reductionCfg)

	klog.V(1).Infof("solver: run produced %d solutions, %d rejected candidates", len(s.solutions), s.invalidSolutions)
	return nil
}

func (s *Solver) collectCandidate(c reduction.Candidate) {
	values, ok := solution.Extract(c.LeftLink, c.LeftPos, c.RightLink, c.RightPos, s.links, solution.FinalLevel)
	if !ok {
		s.invalidSolutions++
		return
	}
	if s.cfg.RecomputeSolution && !solution.RecomputeAt(&s.engine, values, solution.FinalLevel, false) {
		s.invalidSolutions++
		return
	}
	solution.Reorder(values)
	s.solutions = append(s.solutions, values)
}

// Solutions returns every accepted solution from the last Run, each a
// canonically reordered slice of SolutionSize original indices.
func (s *Solver) Solutions() [][]uint32 { return s.solutions }

// InvalidSolutions returns the number of final-step candidates the last
// Run discarded for resolving to duplicate indices or failing
// recomputation.
func (s *Solver) InvalidSolutions() int { return s.invalidSolutions }

// ValidateSolution independently recomputes values from scratch against
// the solver's currently Prepare'd header, without relying on any
// bookkeeping from Run. values must already be canonically ordered
// (as Solutions returns them, or as wire.CompactToExpanded decodes them).
func (s *Solver) ValidateSolution(values []uint32) bool {
	if len(values) != params.SolutionSize {
		return false
	}
	cp := append([]uint32(nil), values...)
	return solution.RecomputeAt(&s.engine, cp, solution.FinalLevel, true)
}
