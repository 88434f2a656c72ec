package seeding

import (
	"testing"

	"github.com/banshee-data/trackseed/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmsFromConfig_Defaults(t *testing.T) {
	algos, err := AlgorithmsFromConfig(config.MustLoadDefaultConfig())
	require.NoError(t, err)
	require.Len(t, algos, 3)

	triplet, pair, pixelLess := algos[0], algos[1], algos[2]

	assert.Equal(t, "PixelTriplet", triplet.Name)
	assert.InDelta(t, 0.09, triplet.PtMin2, 1e-12)
	assert.Equal(t, uint(3), triplet.NumberOfHits)
	assert.Equal(t, []uint32{1, 2}, triplet.FirstHitSubDetectors)
	assert.Equal(t, []uint32{1, 2}, triplet.SecondHitSubDetectors)
	assert.Equal(t, []uint32{1, 2}, triplet.ThirdHitSubDetectors)

	assert.Equal(t, "PixelPair", pair.Name)
	assert.InDelta(t, 0.81, pair.PtMin2, 1e-12)
	assert.Nil(t, pair.ThirdHitSubDetectors)

	assert.Equal(t, []uint32{3, 4, 6}, pixelLess.FirstHitSubDetectors)
	assert.Equal(t, []uint32{3, 4, 5, 6}, pixelLess.SecondHitSubDetectors)
	assert.Equal(t, 5.0, pixelLess.MaxD0)
	assert.Equal(t, 5.0, pixelLess.OriginRadius)

	for _, a := range algos {
		assert.True(t, a.SeedCleaning)
		assert.Equal(t, 10.0, a.ErrorInflation)
	}
}

func TestAlgorithmsFromConfig_ShapeMismatch(t *testing.T) {
	cfg := config.MustLoadDefaultConfig()
	cfg.SecondHitSubDetectors = cfg.SecondHitSubDetectors[:3]

	_, err := AlgorithmsFromConfig(cfg)
	assert.ErrorIs(t, err, config.ErrConfigShape)
}

func TestAlgorithmsFromConfig_ListsAreIndependent(t *testing.T) {
	cfg := config.MustLoadDefaultConfig()
	algos, err := AlgorithmsFromConfig(cfg)
	require.NoError(t, err)

	cfg.FirstHitSubDetectors[0] = 42
	assert.Equal(t, uint32(1), algos[0].FirstHitSubDetectors[0])
}

func TestAlgorithmConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *AlgorithmConfig)
	}{
		{name: "no name", mutate: func(a *AlgorithmConfig) { a.Name = "" }},
		{name: "one hit", mutate: func(a *AlgorithmConfig) { a.NumberOfHits = 1 }},
		{name: "no first list", mutate: func(a *AlgorithmConfig) { a.FirstHitSubDetectors = nil }},
		{name: "no second list", mutate: func(a *AlgorithmConfig) { a.SecondHitSubDetectors = nil }},
		{name: "triplet without third list", mutate: func(a *AlgorithmConfig) { a.NumberOfHits = 3 }},
		{name: "negative d0", mutate: func(a *AlgorithmConfig) { a.MaxD0 = -1 }},
		{name: "no inflation", mutate: func(a *AlgorithmConfig) { a.ErrorInflation = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := pairAlgo("a")
			require.NoError(t, a.Validate())
			tt.mutate(&a)
			assert.ErrorIs(t, a.Validate(), ErrInvalidAlgorithm)
		})
	}
}
