package seeding

// region is where a hit sits relative to a list of requested sub-detectors.
type region int

const (
	regionBefore region = iota // sub-detector below the first requested one
	regionInside
	regionPast
)

func regionOf(h HitView, dets []uint32) region {
	if len(dets) == 0 {
		return regionPast
	}
	if h.SubDet() < dets[0] {
		return regionBefore
	}
	if !h.IsOnRequestedDet(dets) {
		return regionPast
	}
	return regionInside
}

// SeedSelector finds the first hit combination of a track that an
// algorithm accepts.
type SeedSelector struct {
	Checker BeamConstraintChecker
}

// Select scans hits for a seed of algo. It returns the indices of the
// selected hits in increasing order.
//
// For each hit position the scan skips hits before the requested
// sub-detectors and stops at the first hit past them. The second hit must
// not share a layer with the first and the pair must pass the beam
// constraint. The third hit is taken as soon as one is found that does not
// share a layer with the second; when none is found the scan resumes with
// the next second hit.
func (s SeedSelector) Select(hits HitSequence, algo *AlgorithmConfig) ([]int, bool, error) {
	n := hits.Len()
	if n < int(algo.NumberOfHits) {
		return nil, false, nil
	}

first:
	for i := 0; i < n; i++ {
		h1, err := hits.At(i)
		if err != nil {
			return nil, false, err
		}
		switch regionOf(h1, algo.FirstHitSubDetectors) {
		case regionBefore:
			continue
		case regionPast:
			break first
		}

	second:
		for j := i + 1; j < n; j++ {
			h2, err := hits.At(j)
			if err != nil {
				return nil, false, err
			}
			switch regionOf(h2, algo.SecondHitSubDetectors) {
			case regionBefore:
				continue
			case regionPast:
				break second
			}
			if h2.IsOnTheSameLayer(h1) {
				continue
			}
			if !s.Checker.Compatible(h1.Global(), h2.Global(), algo) {
				continue
			}
			if algo.NumberOfHits == 2 {
				tracef("%s: pair (%d, %d) accepted", algo.Name, i, j)
				return []int{i, j}, true, nil
			}

		third:
			for k := j + 1; k < n; k++ {
				h3, err := hits.At(k)
				if err != nil {
					return nil, false, err
				}
				switch regionOf(h3, algo.ThirdHitSubDetectors) {
				case regionBefore:
					continue
				case regionPast:
					break third
				}
				if !h3.IsOnTheSameLayer(h2) {
					tracef("%s: triplet (%d, %d, %d) accepted", algo.Name, i, j, k)
					return []int{i, j, k}, true, nil
				}
			}
		}
	}
	return nil, false, nil
}
