package seeding

import (
	"github.com/banshee-data/trackseed/internal/geometry"
	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// GeometryLookup resolves detector elements. Implementations must be safe
// for concurrent readers.
type GeometryLookup interface {
	// Locate returns sub-detector, layer and global position of a local
	// point on element detID.
	Locate(detID uint32, localX, localY float64) (geometry.Location, error)
	// Surface returns the plane of element detID.
	Surface(detID uint32) (trajectory.Plane, error)
}

// FieldPropagator propagates particles through the magnetic field.
// Implementations must be safe for concurrent readers.
type FieldPropagator interface {
	FieldAt(position r3.Vec) r3.Vec
	// PropagateToBeamCylinder finds where a particle passing through both
	// through and p.Position meets the beam cylinder of the given radius.
	// The charge sign is resolved by the propagator.
	PropagateToBeamCylinder(p trajectory.Particle, through r3.Vec, radius float64) (trajectory.BeamCrossing, bool)
	// ImpactParameters returns d0 and z0 relative to the beam line through
	// beamSpot.
	ImpactParameters(p trajectory.Particle, beamSpot r3.Vec) trajectory.ImpactParameters
}

// HitSource is the per-event view of hits grouped by simulated track.
type HitSource interface {
	// Size is the total number of hits in the event.
	Size() int
	// TrackIDs lists the simulated tracks that left hits in ascending id
	// order. Seeds within a collection follow this order.
	TrackIDs() []int
	// HitsFor returns the ordered hits of one track. Callers must not modify
	// the returned slice.
	HitsFor(simTrackID int) []RecHit
}

// TrackSource is the per-event simulated truth.
type TrackSource interface {
	Track(id int) (SimTrack, error)
	Vertex(index int) (SimVertex, error)
}

// Event is everything Produce reads for one event.
type Event interface {
	HitSource
	TrackSource
	// BeamSpot is the reference point for impact parameter cuts.
	BeamSpot() r3.Vec
}

// Stage is a cut a track passes on its way to a seed.
type Stage int

const (
	StageHits Stage = iota
	StagePt
	StageImpact
)

func (s Stage) String() string {
	switch s {
	case StageHits:
		return "hits"
	case StagePt:
		return "pt"
	default:
		return "d0z0"
	}
}

// Metrics receives per-stage counts from a Producer.
type Metrics interface {
	TrackSeen()
	StagePassed(algorithm string, stage Stage)
	SeedBuilt(algorithm string)
}

type nopMetrics struct{}

func (nopMetrics) TrackSeen()                {}
func (nopMetrics) StagePassed(string, Stage) {}
func (nopMetrics) SeedBuilt(string)          {}
