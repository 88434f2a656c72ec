package seeding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectOn(t *testing.T, algo AlgorithmConfig, dets ...uint32) ([]int, bool) {
	t.Helper()
	s := SeedSelector{Checker: BeamConstraintChecker{Field: &fakeField{}}}
	idx, found, err := s.Select(viewsOf(dets...), &algo)
	require.NoError(t, err)
	return idx, found
}

func TestSelect_Pairs(t *testing.T) {
	tests := []struct {
		name      string
		first     []uint32
		second    []uint32
		dets      []uint32
		want      []int
		wantFound bool
	}{
		{
			name: "duplicate second sub-detector on the same layer",
			dets: []uint32{det(1, 1), det(2, 1), det(2, 1)},
			want: []int{0, 1}, wantFound: true,
		},
		{
			name: "duplicate second sub-detector on another layer",
			dets: []uint32{det(1, 1), det(2, 1), det(2, 2)},
			want: []int{0, 1}, wantFound: true,
		},
		{
			name:  "skips hits before the first region",
			first: []uint32{2}, second: []uint32{3},
			dets: []uint32{det(1, 1), det(1, 2), det(2, 1), det(3, 1)},
			want: []int{2, 3}, wantFound: true,
		},
		{
			name: "stops at the first hit past the first region",
			dets: []uint32{det(2, 1), det(1, 1), det(2, 2)},
		},
		{
			name:  "second hit on the same layer as the first is skipped",
			first: []uint32{1}, second: []uint32{1, 2},
			dets: []uint32{det(1, 1), det(1, 1), det(1, 2)},
			want: []int{0, 2}, wantFound: true,
		},
		{
			name:  "past second region ends the inner search only",
			first: []uint32{1, 2}, second: []uint32{1},
			dets: []uint32{det(1, 1), det(2, 1), det(1, 2)},
			want: []int{1, 2}, wantFound: true,
		},
		{
			name: "too few hits",
			dets: []uint32{det(1, 1)},
		},
		{
			name: "no second hit",
			dets: []uint32{det(1, 1), det(1, 2), det(1, 3)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			algo := pairAlgo("pairs")
			if tt.first != nil {
				algo.FirstHitSubDetectors = tt.first
			}
			if tt.second != nil {
				algo.SecondHitSubDetectors = tt.second
			}
			idx, found := selectOn(t, algo, tt.dets...)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.want, idx)
		})
	}
}

// The second hit is rejected when it shares the layer of the first; the
// third is accepted only when it does not share the layer of the second.
func TestSelect_ThirdHitLayerTest(t *testing.T) {
	t.Run("third on the second's layer is passed over", func(t *testing.T) {
		idx, found := selectOn(t, tripletAlgo("t"), det(1, 1), det(2, 1), det(2, 1), det(2, 2))
		require.True(t, found)
		assert.Equal(t, []int{0, 1, 3}, idx)
	})

	t.Run("only thirds on the second's layer", func(t *testing.T) {
		_, found := selectOn(t, tripletAlgo("t"), det(1, 1), det(2, 1), det(2, 1))
		assert.False(t, found)
	})

	t.Run("third may share the first hit's layer", func(t *testing.T) {
		algo := tripletAlgo("t")
		algo.ThirdHitSubDetectors = []uint32{1, 2}
		algo.SecondHitSubDetectors = []uint32{1, 2}
		idx, found := selectOn(t, algo, det(1, 1), det(1, 2), det(1, 1))
		require.True(t, found)
		assert.Equal(t, []int{0, 1, 2}, idx)
	})

	t.Run("second on the first's layer is rejected even if a third exists", func(t *testing.T) {
		algo := tripletAlgo("t")
		algo.SecondHitSubDetectors = []uint32{1}
		algo.ThirdHitSubDetectors = []uint32{1, 2}
		_, found := selectOn(t, algo, det(1, 1), det(1, 1), det(2, 1))
		assert.False(t, found)
	})
}

func TestSelect_ResumesWithNextSecondHit(t *testing.T) {
	algo := tripletAlgo("t")
	algo.SecondHitSubDetectors = []uint32{2, 3}
	algo.ThirdHitSubDetectors = []uint32{2, 4}

	// With the second hit at index 1 the third search stops at the
	// sub-detector 3 hit. Taking that hit as second leaves index 3.
	idx, found := selectOn(t, algo, det(1, 1), det(2, 1), det(3, 1), det(4, 1))
	require.True(t, found)
	assert.Equal(t, []int{0, 2, 3}, idx)
}

func TestSelect_BeamConstraintRejectsPair(t *testing.T) {
	algo := pairAlgo("pairs")
	algo.SeedCleaning = true
	field := &fakeField{miss: true}
	s := SeedSelector{Checker: BeamConstraintChecker{Field: field}}

	_, found, err := s.Select(viewsOf(det(1, 1), det(2, 1), det(2, 2)), &algo)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 2, field.propagations, "each second hit is tried")
}

func TestSelect_PropagatesLookupErrors(t *testing.T) {
	s := SeedSelector{Checker: BeamConstraintChecker{Field: &fakeField{}}}
	algo := tripletAlgo("t")
	seq := failingSequence{HitViews: viewsOf(det(1, 1), det(2, 1), det(2, 2)), failAt: 2}

	_, found, err := s.Select(seq, &algo)
	assert.ErrorIs(t, err, errLookup)
	assert.False(t, found)
}
