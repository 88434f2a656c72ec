package event

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/banshee-data/trackseed/internal/seeding"
	"gonum.org/v1/gonum/spatial/r3"
)

type trackRecord struct {
	Momentum [3]float64 `json:"momentum"`
	Energy   float64    `json:"energy"`
	Charge   float64    `json:"charge"`
	Vertex   int        `json:"vertex"`
}

type vertexRecord struct {
	Position [3]float64 `json:"position"`
	T        float64    `json:"t"`
}

type record struct {
	ID       uint64           `json:"id"`
	BeamSpot [3]float64       `json:"beam_spot"`
	Tracks   []trackRecord    `json:"tracks"`
	Vertices []vertexRecord   `json:"vertices"`
	Hits     []seeding.RecHit `json:"hits"`
}

// Event is one decoded event. It implements seeding.Event and is read-only
// after decoding, so it may be shared between goroutines.
type Event struct {
	ID uint64

	beamSpot r3.Vec
	tracks   []seeding.SimTrack
	vertices []seeding.SimVertex
	order    []int
	byTrack  map[int][]seeding.RecHit
	size     int
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// Decode parses one JSON event.
func Decode(data []byte) (*Event, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	return fromRecord(&rec), nil
}

func fromRecord(rec *record) *Event {
	ev := &Event{
		ID:       rec.ID,
		beamSpot: vec(rec.BeamSpot),
		tracks:   make([]seeding.SimTrack, len(rec.Tracks)),
		vertices: make([]seeding.SimVertex, len(rec.Vertices)),
		byTrack:  make(map[int][]seeding.RecHit),
		size:     len(rec.Hits),
	}
	for i, t := range rec.Tracks {
		ev.tracks[i] = seeding.SimTrack{Momentum: vec(t.Momentum), Energy: t.Energy, Charge: t.Charge, VertexIndex: t.Vertex}
	}
	for i, v := range rec.Vertices {
		ev.vertices[i] = seeding.SimVertex{Position: vec(v.Position), T: v.T}
	}
	for _, h := range rec.Hits {
		if _, ok := ev.byTrack[h.SimTrackID]; !ok {
			ev.order = append(ev.order, h.SimTrackID)
		}
		ev.byTrack[h.SimTrackID] = append(ev.byTrack[h.SimTrackID], h)
	}
	slices.Sort(ev.order)
	return ev
}

func (e *Event) Size() int                               { return e.size }
func (e *Event) TrackIDs() []int                         { return e.order }
func (e *Event) HitsFor(simTrackID int) []seeding.RecHit { return e.byTrack[simTrackID] }
func (e *Event) BeamSpot() r3.Vec                        { return e.beamSpot }

// Track returns the simulated track at position id.
func (e *Event) Track(id int) (seeding.SimTrack, error) {
	if id < 0 || id >= len(e.tracks) {
		return seeding.SimTrack{}, fmt.Errorf("%w: track %d of %d", seeding.ErrUnknownTrack, id, len(e.tracks))
	}
	return e.tracks[id], nil
}

// Vertex returns the simulated vertex at position index.
func (e *Event) Vertex(index int) (seeding.SimVertex, error) {
	if index < 0 || index >= len(e.vertices) {
		return seeding.SimVertex{}, fmt.Errorf("%w: vertex %d of %d", seeding.ErrUnknownTrack, index, len(e.vertices))
	}
	return e.vertices[index], nil
}
