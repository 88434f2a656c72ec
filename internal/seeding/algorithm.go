package seeding

import (
	"errors"
	"fmt"
	"slices"

	"github.com/banshee-data/trackseed/internal/config"
)

// ErrInvalidAlgorithm is wrapped by every rejected AlgorithmConfig.
var ErrInvalidAlgorithm = errors.New("invalid seeding algorithm")

// AlgorithmConfig holds the parameters of one seeding algorithm. Values are
// copied in by the Producer and never modified afterwards.
type AlgorithmConfig struct {
	Name string

	PtMin2       float64 // squared minimum track pT, (GeV/c)^2
	MinRecHits   uint    // minimum number of hits on distinct layers
	MaxD0        float64 // cm
	MaxZ0        float64 // cm, relative to the beam spot
	NumberOfHits uint    // 2 or 3

	// Acceptable sub-detectors for each seed hit, innermost first.
	FirstHitSubDetectors  []uint32
	SecondHitSubDetectors []uint32
	ThirdHitSubDetectors  []uint32

	SeedCleaning     bool
	OriginRadius     float64 // cm
	OriginHalfLength float64 // cm
	OriginPtMin      float64 // GeV/c

	ErrorInflation float64
}

// Validate reports the first inconsistency in the algorithm.
func (a *AlgorithmConfig) Validate() error {
	switch {
	case a.Name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidAlgorithm)
	case a.NumberOfHits != 2 && a.NumberOfHits != 3:
		return fmt.Errorf("%w: %s: number of hits must be 2 or 3, got %d", ErrInvalidAlgorithm, a.Name, a.NumberOfHits)
	case len(a.FirstHitSubDetectors) == 0:
		return fmt.Errorf("%w: %s: no first-hit sub-detectors", ErrInvalidAlgorithm, a.Name)
	case len(a.SecondHitSubDetectors) == 0:
		return fmt.Errorf("%w: %s: no second-hit sub-detectors", ErrInvalidAlgorithm, a.Name)
	case a.NumberOfHits == 3 && len(a.ThirdHitSubDetectors) == 0:
		return fmt.Errorf("%w: %s: no third-hit sub-detectors", ErrInvalidAlgorithm, a.Name)
	case a.PtMin2 < 0 || a.MaxD0 < 0 || a.MaxZ0 < 0:
		return fmt.Errorf("%w: %s: negative cut", ErrInvalidAlgorithm, a.Name)
	case a.ErrorInflation <= 0:
		return fmt.Errorf("%w: %s: error inflation must be positive", ErrInvalidAlgorithm, a.Name)
	}
	return nil
}

func (a AlgorithmConfig) clone() AlgorithmConfig {
	a.FirstHitSubDetectors = slices.Clone(a.FirstHitSubDetectors)
	a.SecondHitSubDetectors = slices.Clone(a.SecondHitSubDetectors)
	a.ThirdHitSubDetectors = slices.Clone(a.ThirdHitSubDetectors)
	return a
}

// AlgorithmsFromConfig turns the parallel arrays of cfg into one record per
// algorithm. The flattened sub-detector lists are split by their counts here
// and nowhere else.
func AlgorithmsFromConfig(cfg *config.SeedingConfig) ([]AlgorithmConfig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	first := splitCounts(cfg.FirstHitSubDetectors, cfg.FirstHitSubDetectorNumber)
	second := splitCounts(cfg.SecondHitSubDetectors, cfg.SecondHitSubDetectorNumber)
	third := splitCounts(cfg.ThirdHitSubDetectors, cfg.ThirdHitSubDetectorNumber)

	algos := make([]AlgorithmConfig, len(cfg.SeedingAlgo))
	for i, name := range cfg.SeedingAlgo {
		algos[i] = AlgorithmConfig{
			Name:                  name,
			PtMin2:                cfg.PtMin[i] * cfg.PtMin[i],
			MinRecHits:            cfg.MinRecHits[i],
			MaxD0:                 cfg.MaxD0[i],
			MaxZ0:                 cfg.MaxZ0[i],
			NumberOfHits:          cfg.NumberOfHits[i],
			FirstHitSubDetectors:  first[i],
			SecondHitSubDetectors: second[i],
			ThirdHitSubDetectors:  third[i],
			SeedCleaning:          cfg.GetSeedCleaning(),
			OriginRadius:          cfg.OriginRadius[i],
			OriginHalfLength:      cfg.OriginHalfLength[i],
			OriginPtMin:           cfg.OriginPtMin[i],
			ErrorInflation:        cfg.GetErrorInflation(),
		}
		if err := algos[i].Validate(); err != nil {
			return nil, err
		}
	}
	return algos, nil
}

// splitCounts cuts flat into consecutive runs of the given lengths. The
// caller guarantees the lengths sum to len(flat).
func splitCounts(flat []uint32, counts []uint) [][]uint32 {
	out := make([][]uint32, len(counts))
	k := 0
	for i, n := range counts {
		if n > 0 {
			out[i] = slices.Clone(flat[k : k+int(n)])
		}
		k += int(n)
	}
	return out
}
