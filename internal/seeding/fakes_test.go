package seeding

import (
	"fmt"

	"github.com/banshee-data/trackseed/internal/geometry"
	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// det encodes a detector id as sub-detector*100 + layer. Sub-detector 0 is
// unknown to fakeGeometry.
func det(subDet, layer uint32) uint32 { return subDet*100 + layer }

// fakeGeometry places every element on the plane x = 10*subDet + layer with
// local x along global y and local y along global z.
type fakeGeometry struct{}

func (fakeGeometry) radius(id uint32) (float64, error) {
	if id/100 == 0 {
		return 0, fmt.Errorf("%w: %d", geometry.ErrUnknownDetector, id)
	}
	return float64(10*(id/100) + id%100), nil
}

func (g fakeGeometry) Locate(id uint32, x, y float64) (geometry.Location, error) {
	r, err := g.radius(id)
	if err != nil {
		return geometry.Location{}, err
	}
	return geometry.Location{SubDet: id / 100, Layer: id % 100, Global: r3.Vec{X: r, Y: x, Z: y}}, nil
}

func (g fakeGeometry) Surface(id uint32) (trajectory.Plane, error) {
	r, err := g.radius(id)
	if err != nil {
		return trajectory.Plane{}, err
	}
	return trajectory.NewPlane(r3.Vec{X: r}, r3.Vec{Y: 1}, r3.Vec{Z: 1})
}

type fakeField struct {
	ip       trajectory.ImpactParameters
	crossing trajectory.BeamCrossing
	miss     bool

	propagations int
	ipCalls      int
}

func (f *fakeField) FieldAt(r3.Vec) r3.Vec { return r3.Vec{Z: 3.8} }

func (f *fakeField) PropagateToBeamCylinder(trajectory.Particle, r3.Vec, float64) (trajectory.BeamCrossing, bool) {
	f.propagations++
	return f.crossing, !f.miss
}

func (f *fakeField) ImpactParameters(trajectory.Particle, r3.Vec) trajectory.ImpactParameters {
	f.ipCalls++
	return f.ip
}

type fakeEvent struct {
	order    []int
	hits     map[int][]RecHit
	tracks   map[int]SimTrack
	vertices []SimVertex
	beamSpot r3.Vec
}

func newFakeEvent() *fakeEvent {
	return &fakeEvent{
		hits:     map[int][]RecHit{},
		tracks:   map[int]SimTrack{},
		vertices: []SimVertex{{}},
	}
}

// add registers a track from vertex 0 with one hit per detector id.
func (e *fakeEvent) add(id int, track SimTrack, dets ...uint32) *fakeEvent {
	e.order = append(e.order, id)
	e.tracks[id] = track
	e.hits[id] = hitsOn(id, dets...)
	return e
}

func (e *fakeEvent) Size() int {
	n := 0
	for _, h := range e.hits {
		n += len(h)
	}
	return n
}

func (e *fakeEvent) TrackIDs() []int         { return e.order }
func (e *fakeEvent) HitsFor(id int) []RecHit { return e.hits[id] }
func (e *fakeEvent) BeamSpot() r3.Vec        { return e.beamSpot }

func (e *fakeEvent) Track(id int) (SimTrack, error) {
	t, ok := e.tracks[id]
	if !ok {
		return SimTrack{}, fmt.Errorf("%w: %d", ErrUnknownTrack, id)
	}
	return t, nil
}

func (e *fakeEvent) Vertex(index int) (SimVertex, error) {
	if index < 0 || index >= len(e.vertices) {
		return SimVertex{}, fmt.Errorf("%w: vertex %d", ErrUnknownTrack, index)
	}
	return e.vertices[index], nil
}

func hitsOn(simTrackID int, dets ...uint32) []RecHit {
	hits := make([]RecHit, len(dets))
	for i, d := range dets {
		hits[i] = RecHit{DetID: d, SimTrackID: simTrackID, LocalX: 0.1 * float64(i), ErrXX: 1e-6, ErrYY: 1e-6}
	}
	return hits
}

func viewsOf(dets ...uint32) HitViews {
	views := make(HitViews, len(dets))
	for i, h := range hitsOn(1, dets...) {
		v, err := NewHitView(h, fakeGeometry{})
		if err != nil {
			panic(err)
		}
		views[i] = v
	}
	return views
}

// pt1 is a negative track of pT 1 GeV/c heading out along +x.
var pt1 = SimTrack{Momentum: r3.Vec{X: 1, Z: 0.5}, Energy: 1.2, Charge: -1}

func pairAlgo(name string) AlgorithmConfig {
	return AlgorithmConfig{
		Name:                  name,
		PtMin2:                0.25,
		MinRecHits:            2,
		MaxD0:                 1,
		MaxZ0:                 30,
		NumberOfHits:          2,
		FirstHitSubDetectors:  []uint32{1},
		SecondHitSubDetectors: []uint32{2},
		OriginRadius:          0.2,
		OriginHalfLength:      15.9,
		OriginPtMin:           0.2,
		ErrorInflation:        10,
	}
}

func tripletAlgo(name string) AlgorithmConfig {
	a := pairAlgo(name)
	a.NumberOfHits = 3
	a.MinRecHits = 3
	a.ThirdHitSubDetectors = []uint32{2}
	return a
}

type recordingMetrics struct {
	tracks int
	stages map[string]map[Stage]int
	seeds  map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{stages: map[string]map[Stage]int{}, seeds: map[string]int{}}
}

func (m *recordingMetrics) TrackSeen() { m.tracks++ }

func (m *recordingMetrics) StagePassed(algorithm string, stage Stage) {
	if m.stages[algorithm] == nil {
		m.stages[algorithm] = map[Stage]int{}
	}
	m.stages[algorithm][stage]++
}

func (m *recordingMetrics) SeedBuilt(algorithm string) { m.seeds[algorithm]++ }
