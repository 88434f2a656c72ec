package trajectory

import "gonum.org/v1/gonum/spatial/r3"

// Particle is a charged point-like state used for quick propagation checks.
type Particle struct {
	Momentum r3.Vec
	Position r3.Vec
	Charge   float64
}

// BeamCrossing is where a propagated particle meets the beam cylinder.
type BeamCrossing struct {
	R      float64 // transverse distance from the beam axis
	Z      float64
	Pt     float64
	Charge float64 // resolved charge sign, 0 for a straight line
}

// ImpactParameters are the transverse and longitudinal coordinates of the
// point of closest approach to a reference beam line.
type ImpactParameters struct {
	D0 float64 // unsigned transverse distance
	Z0 float64 // z at the point of closest approach
}
