package reduction

import (
	"github.com/morpav/zceq-solver/internal/bucketindex"
	"github.com/morpav/zceq-solver/internal/pairlink"
	"github.com/morpav/zceq-solver/internal/params"
)

// Candidate is a final-step collision: the two colliding strings'
// provenance links plus the bucket-relative positions PairLink.Translate
// needs to recover their parents (spec.md §4.7/§4.8).
type Candidate struct {
	LeftLink  pairlink.L
	LeftPos   uint32
	RightLink pairlink.L
	RightPos  uint32
}

// CandidateSink receives each final-step candidate as soon as it's
// produced — this implementation only supports the eager
// ProcessCandidateEarly path (see DESIGN.md).
type CandidateSink func(Candidate)

// FinalStep runs the 9th and last reduction pass: like Step, it groups
// colliding strings within each bucket of each partition, across the
// whole input string set — not just bucket 0; "output bucket 0" in
// spec.md §4.7 names only where solution-candidate bookkeeping lives,
// not a restriction on which input bucket is scanned — but instead of
// writing an output string it checks whether the two final segments
// fully cancel and, if so, emits a solution candidate. levelLinks
// records the provenance of every string at in's level
// (links[in.Desc.Step] in the solver's per-level slice).
func FinalStep(in *StringSet, inIdx *bucketindex.Index, levelLinks []pairlink.L, sink CandidateSink, cfg Config) {
	var lastFinalSegment uint64 = ^uint64(0)

	for op := uint32(0); op < params.P; op++ {
		for b := op * bucketsPerPartition; b < (op+1)*bucketsPerPartition; b++ {
			groups := collisionGroups(in, inIdx, levelLinks, b, cfg)
			for _, members := range groups {
				for i := 0; i < len(members); i++ {
					for j := i + 1; j < len(members); j++ {
						considerFinalPair(in, members[i], members[j], &lastFinalSegment, sink, cfg)
					}
				}
			}
		}
	}
}

func considerFinalPair(in *StringSet, posA, posB uint32, lastFinalSegment *uint64, sink CandidateSink, cfg Config) {
	larger, smaller := posA, posB
	if posA < posB {
		larger, smaller = posB, posA
	}

	first := in.Record(smaller)
	second := in.Record(larger)

	firstSeg := first.FinalCollisionSegments()
	if firstSeg != second.FinalCollisionSegments() {
		return
	}

	if cfg.Step8FilterByLastSegment {
		if firstSeg == *lastFinalSegment {
			return
		}
		*lastFinalSegment = firstSeg
	}

	sink(Candidate{
		LeftLink:  first.Link(),
		LeftPos:   smaller % params.ItemsPerBucket,
		RightLink: second.Link(),
		RightPos:  larger % params.ItemsPerBucket,
	})
}
