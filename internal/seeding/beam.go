package seeding

import (
	"math"

	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// BeamConstraintChecker tests whether a hit pair can come from the beam
// region of an algorithm.
type BeamConstraintChecker struct {
	Field FieldPropagator
}

// Compatible propagates the hypothesis first -> second back from the second
// hit to the algorithm's beam cylinder. The pair passes when the cylinder is
// reached with pT above OriginPtMin and |z| below OriginHalfLength. With seed
// cleaning disabled every pair passes.
func (c BeamConstraintChecker) Compatible(first, second r3.Vec, algo *AlgorithmConfig) bool {
	if !algo.SeedCleaning {
		return true
	}
	p := trajectory.Particle{
		Momentum: r3.Sub(second, first),
		Position: second,
		Charge:   1,
	}
	crossing, ok := c.Field.PropagateToBeamCylinder(p, first, algo.OriginRadius)
	if !ok {
		tracef("%s: pair %v -> %v misses the beam cylinder", algo.Name, first, second)
		return false
	}
	tracef("%s: beam crossing R=%.4f Z=%.3f pT=%.3f q=%+.0f", algo.Name, crossing.R, crossing.Z, crossing.Pt, crossing.Charge)
	return crossing.Pt > algo.OriginPtMin && math.Abs(crossing.Z) < algo.OriginHalfLength
}
