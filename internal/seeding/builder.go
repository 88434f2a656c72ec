package seeding

import (
	"fmt"

	"github.com/banshee-data/trackseed/internal/trajectory"
)

// SeedBuilder turns a hit selection into a TrajectorySeed.
type SeedBuilder struct {
	Geometry GeometryLookup
	Field    FieldPropagator
}

// Build starts the state at the simulated vertex with the simulated
// momentum and charge, gives it a curvilinear error of ErrorInflation times
// the identity and expresses it on the surface of the first hit. The seed
// keeps the transverse curvature from the field at the vertex.
func (b SeedBuilder) Build(hits []RecHit, track SimTrack, vertex SimVertex, algo *AlgorithmConfig) (TrajectorySeed, error) {
	if len(hits) == 0 {
		return TrajectorySeed{}, fmt.Errorf("%s: seed without hits", algo.Name)
	}
	field := b.Field.FieldAt(vertex.Position)
	fs := trajectory.NewFreeState(vertex.Position, track.Momentum, int(track.Charge), field)
	fs, err := fs.WithCurvilinearError(trajectory.ScaledIdentity(trajectory.Dim, algo.ErrorInflation))
	if err != nil {
		return TrajectorySeed{}, err
	}

	detID := hits[0].DetID
	surface, err := b.Geometry.Surface(detID)
	if err != nil {
		return TrajectorySeed{}, fmt.Errorf("surface of det %d: %w", detID, err)
	}
	onSurface, err := trajectory.OnPlane(fs, surface)
	if err != nil {
		return TrajectorySeed{}, fmt.Errorf("state on det %d: %w", detID, err)
	}

	return TrajectorySeed{
		Hits:      append([]RecHit(nil), hits...),
		State:     trajectory.PackOnDet(onSurface, detID),
		Direction: AlongMomentum,
		Curvature: fs.TransverseCurvature(),
	}, nil
}
