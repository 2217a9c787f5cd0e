package model

import (
	"sort"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

// DeployConflict is an unordered pair of deploys that do not commute.
// A is always the smaller of the two.
type DeployConflict struct {
	A externalapi.DeployRef
	B externalapi.DeployRef
}

// NewDeployConflict returns the normalized DeployConflict of a and b
func NewDeployConflict(a, b externalapi.DeployRef) DeployConflict {
	if b.Less(a) {
		a, b = b, a
	}
	return DeployConflict{A: a, B: b}
}

type candidatePair struct {
	a, b externalapi.DomainHash
}

// ConflictSet describes a group of sibling candidates: their common base,
// the blocks each candidate adds on top of the base, and which pairs of
// candidates (and of their deploys) do not commute.
type ConflictSet struct {
	Base       *externalapi.DomainHash
	Candidates []*externalapi.DomainHash

	// Branches maps a candidate to the blocks in its inclusive past that
	// are not in the inclusive past of Base, ordered by hash
	Branches map[externalapi.DomainHash][]*externalapi.DomainHash

	DeployConflicts []DeployConflict

	conflictingCandidates map[candidatePair]struct{}
}

// NewConflictSet creates an empty ConflictSet over the given candidates
func NewConflictSet(base *externalapi.DomainHash, candidates []*externalapi.DomainHash) *ConflictSet {
	return &ConflictSet{
		Base:                  base,
		Candidates:            externalapi.CloneHashes(candidates),
		Branches:              make(map[externalapi.DomainHash][]*externalapi.DomainHash),
		conflictingCandidates: make(map[candidatePair]struct{}),
	}
}

func newCandidatePair(a, b *externalapi.DomainHash) candidatePair {
	if b.Less(a) {
		a, b = b, a
	}
	return candidatePair{a: *a, b: *b}
}

// AddCandidateConflict marks candidates a and b as conflicting
func (cs *ConflictSet) AddCandidateConflict(a, b *externalapi.DomainHash) {
	cs.conflictingCandidates[newCandidatePair(a, b)] = struct{}{}
}

// CandidatesConflict returns whether candidates a and b conflict
func (cs *ConflictSet) CandidatesConflict(a, b *externalapi.DomainHash) bool {
	_, ok := cs.conflictingCandidates[newCandidatePair(a, b)]
	return ok
}

// SortDeployConflicts puts DeployConflicts in canonical order
func (cs *ConflictSet) SortDeployConflicts() {
	sort.Slice(cs.DeployConflicts, func(i, j int) bool {
		ci, cj := cs.DeployConflicts[i], cs.DeployConflicts[j]
		if ci.A != cj.A {
			return ci.A.Less(cj.A)
		}
		return ci.B.Less(cj.B)
	})
}
