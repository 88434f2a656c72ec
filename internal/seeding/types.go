package seeding

import (
	"errors"

	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrUnknownTrack is wrapped by TrackSource implementations when a track or
// vertex index is out of range.
var ErrUnknownTrack = errors.New("unknown simulated track")

// RecHit is a reconstructed hit on one detector element. It holds only
// values, so a copy is an independent clone.
type RecHit struct {
	DetID      uint32  `json:"det_id"`
	SimTrackID int     `json:"sim_track_id"`
	LocalX     float64 `json:"x"`
	LocalY     float64 `json:"y"`
	ErrXX      float64 `json:"err_xx"`
	ErrXY      float64 `json:"err_xy"`
	ErrYY      float64 `json:"err_yy"`
}

// SimTrack is a simulated particle.
type SimTrack struct {
	Momentum    r3.Vec // GeV/c
	Energy      float64
	Charge      float64
	VertexIndex int
}

// Pt2 returns the squared transverse momentum.
func (t SimTrack) Pt2() float64 { return trajectory.Perp2(t.Momentum) }

// SimVertex is the origin of simulated tracks.
type SimVertex struct {
	Position r3.Vec // cm
	T        float64
}

// PropagationDirection tells downstream pattern recognition which way to
// follow the seed.
type PropagationDirection int

const (
	AlongMomentum PropagationDirection = iota
	OppositeToMomentum
)

func (d PropagationDirection) String() string {
	if d == OppositeToMomentum {
		return "opposite"
	}
	return "along"
}

// TrajectorySeed is the output unit: the selected hits in hit order and the
// initial state on the surface of the first one.
type TrajectorySeed struct {
	Hits       []RecHit
	State      trajectory.StateOnDet
	Direction  PropagationDirection
	SimTrackID int
	// Curvature is the signed transverse curvature (1/cm) of the simulated
	// track in the field at its vertex.
	Curvature float64
}

// SeedCollection holds the seeds one algorithm produced for an event.
type SeedCollection struct {
	Algorithm string
	Seeds     []TrajectorySeed
}

// Output is the result of one Produce call. It has one collection per
// configured algorithm, in configuration order, even when empty.
type Output struct {
	Collections []SeedCollection
}

func newOutput(algos []AlgorithmConfig) *Output {
	out := &Output{Collections: make([]SeedCollection, len(algos))}
	for i := range algos {
		out.Collections[i].Algorithm = algos[i].Name
	}
	return out
}

// Collection returns the collection of the named algorithm, or nil when no
// such algorithm is configured.
func (o *Output) Collection(name string) *SeedCollection {
	for i := range o.Collections {
		if o.Collections[i].Algorithm == name {
			return &o.Collections[i]
		}
	}
	return nil
}

// Len returns the number of seeds across all collections.
func (o *Output) Len() int {
	n := 0
	for _, c := range o.Collections {
		n += len(c.Seeds)
	}
	return n
}
