package finalitymanager

import (
	"testing"
)

func TestMaxWeightClique(t *testing.T) {
	tests := []struct {
		name     string
		stakes   []uint64
		edges    [][2]int
		expected uint64
	}{
		{
			name:     "no vertices",
			expected: 0,
		},
		{
			name:     "single vertex",
			stakes:   []uint64{7},
			expected: 7,
		},
		{
			name:     "complete graph",
			stakes:   []uint64{1, 2, 3},
			edges:    [][2]int{{0, 1}, {0, 2}, {1, 2}},
			expected: 6,
		},
		{
			name:     "no edges picks the heaviest vertex",
			stakes:   []uint64{1, 5, 3},
			expected: 5,
		},
		{
			name:     "a heavy pair beats a light triangle",
			stakes:   []uint64{1, 1, 1, 10, 10},
			edges:    [][2]int{{0, 1}, {0, 2}, {1, 2}, {3, 4}},
			expected: 20,
		},
		{
			name:     "a path has no triangle",
			stakes:   []uint64{3, 4, 5},
			edges:    [][2]int{{0, 1}, {1, 2}},
			expected: 9,
		},
	}

	for _, test := range tests {
		vertices := make([]*agreeingValidator, len(test.stakes))
		for i, stake := range test.stakes {
			vertices[i] = &agreeingValidator{stake: stake}
		}
		adjacency := make([][]bool, len(vertices))
		for i := range adjacency {
			adjacency[i] = make([]bool, len(vertices))
		}
		for _, edge := range test.edges {
			adjacency[edge[0]][edge[1]] = true
			adjacency[edge[1]][edge[0]] = true
		}

		result := maxWeightClique(vertices, adjacency)
		if result != test.expected {
			t.Fatalf("%s: expected a clique of stake %d, got %d", test.name, test.expected, result)
		}
	}
}
