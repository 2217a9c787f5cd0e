package merger

import (
	"testing"

	"github.com/kaspanet/mergedag/domain/consensus/model"
	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
	"github.com/kaspanet/mergedag/domain/consensus/utils/hashes"
)

func hashOf(b byte) *externalapi.DomainHash {
	var hashBytes [externalapi.DomainHashSize]byte
	hashBytes[0] = b
	return externalapi.NewDomainHashFromByteArray(&hashBytes)
}

func TestSelect(t *testing.T) {
	a, b, c, d := hashOf(1), hashOf(2), hashOf(3), hashOf(4)

	tests := []struct {
		name       string
		candidates []*externalapi.DomainHash
		weights    map[externalapi.DomainHash]uint64
		conflicts  [][2]*externalapi.DomainHash
		expected   []*externalapi.DomainHash

		// greedy differs from exact
		expectedGreedy []*externalapi.DomainHash
	}{
		{
			name:       "no conflicts selects everything",
			candidates: []*externalapi.DomainHash{a, b, c},
			weights:    map[externalapi.DomainHash]uint64{*a: 1, *b: 1, *c: 1},
			expected:   []*externalapi.DomainHash{a, b, c},
		},
		{
			name:       "heavier side of a conflict wins",
			candidates: []*externalapi.DomainHash{a, b},
			weights:    map[externalapi.DomainHash]uint64{*a: 1, *b: 2},
			conflicts:  [][2]*externalapi.DomainHash{{a, b}},
			expected:   []*externalapi.DomainHash{b},
		},
		{
			name:       "ties go to the smaller hash",
			candidates: []*externalapi.DomainHash{b, a},
			weights:    map[externalapi.DomainHash]uint64{*a: 5, *b: 5},
			conflicts:  [][2]*externalapi.DomainHash{{a, b}},
			expected:   []*externalapi.DomainHash{a},
		},
		{
			name:       "two light candidates outweigh a heavy one",
			candidates: []*externalapi.DomainHash{a, b, c},
			weights:    map[externalapi.DomainHash]uint64{*a: 3, *b: 2, *c: 2},
			conflicts:  [][2]*externalapi.DomainHash{{a, b}, {a, c}},
			expected:   []*externalapi.DomainHash{b, c},
			// greedy takes the heaviest candidate first
			expectedGreedy: []*externalapi.DomainHash{a},
		},
		{
			name:       "zero weight candidates are still selected when free",
			candidates: []*externalapi.DomainHash{a, b, c, d},
			weights:    map[externalapi.DomainHash]uint64{*a: 0, *b: 4, *c: 0, *d: 0},
			conflicts:  [][2]*externalapi.DomainHash{{b, c}},
			expected:   []*externalapi.DomainHash{a, b, d},
		},
	}

	for _, test := range tests {
		conflictSet := model.NewConflictSet(hashOf(0), test.candidates)
		for _, conflict := range test.conflicts {
			conflictSet.AddCandidateConflict(conflict[0], conflict[1])
		}
		sortedCandidates := hashes.SortedCopy(test.candidates)

		exact := selectExact(sortedCandidates, test.weights, conflictSet)
		if !externalapi.HashesEqual(exact, test.expected) {
			t.Fatalf("%s: selectExact: expected %s, got %s", test.name, test.expected, exact)
		}

		expectedGreedy := test.expectedGreedy
		if expectedGreedy == nil {
			expectedGreedy = test.expected
		}
		greedy := selectGreedy(sortedCandidates, test.weights, conflictSet)
		if !externalapi.HashesEqual(greedy, expectedGreedy) {
			t.Fatalf("%s: selectGreedy: expected %s, got %s", test.name, expectedGreedy, greedy)
		}
	}
}

func TestSelectionIsBetterThan(t *testing.T) {
	a, b, c := hashOf(1), hashOf(2), hashOf(3)

	tests := []struct {
		name     string
		s        *selection
		other    *selection
		expected bool
	}{
		{
			name:     "heavier wins",
			s:        &selection{members: []*externalapi.DomainHash{c}, weight: 2},
			other:    &selection{members: []*externalapi.DomainHash{a}, weight: 1},
			expected: true,
		},
		{
			name:     "smaller first member wins a tie",
			s:        &selection{members: []*externalapi.DomainHash{a, c}, weight: 2},
			other:    &selection{members: []*externalapi.DomainHash{b, c}, weight: 2},
			expected: true,
		},
		{
			name:     "larger first member loses a tie",
			s:        &selection{members: []*externalapi.DomainHash{b, c}, weight: 2},
			other:    &selection{members: []*externalapi.DomainHash{a, c}, weight: 2},
			expected: false,
		},
		{
			name:     "longer wins when the other is a prefix",
			s:        &selection{members: []*externalapi.DomainHash{a, b}, weight: 2},
			other:    &selection{members: []*externalapi.DomainHash{a}, weight: 2},
			expected: true,
		},
		{
			name:     "equal selections",
			s:        &selection{members: []*externalapi.DomainHash{a}, weight: 2},
			other:    &selection{members: []*externalapi.DomainHash{a}, weight: 2},
			expected: false,
		},
	}

	for _, test := range tests {
		result := test.s.isBetterThan(test.other)
		if result != test.expected {
			t.Fatalf("%s: expected %t, got %t", test.name, test.expected, result)
		}
	}
}
