package seeding

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// Producer builds the seeds of one event at a time.
type Producer struct {
	algos      []AlgorithmConfig
	maxRecHits uint
	geom       GeometryLookup
	field      FieldPropagator
	selector   SeedSelector
	builder    SeedBuilder
	metrics    Metrics
	scratch    trackHits
}

// Option configures a Producer.
type Option func(*Producer)

// WithMetrics reports stage counts to m.
func WithMetrics(m Metrics) Option {
	return func(p *Producer) {
		if m != nil {
			p.metrics = m
		}
	}
}

// NewProducer validates algos and returns a Producer running them in order.
func NewProducer(algos []AlgorithmConfig, geom GeometryLookup, field FieldPropagator, opts ...Option) (*Producer, error) {
	if len(algos) == 0 {
		return nil, fmt.Errorf("%w: no algorithms configured", ErrInvalidAlgorithm)
	}
	if geom == nil || field == nil {
		return nil, errors.New("geometry and field are required")
	}
	p := &Producer{
		algos:    make([]AlgorithmConfig, len(algos)),
		geom:     geom,
		field:    field,
		selector: SeedSelector{Checker: BeamConstraintChecker{Field: field}},
		builder:  SeedBuilder{Geometry: geom, Field: field},
		metrics:  nopMetrics{},
		scratch:  trackHits{geom: geom},
	}
	seen := make(map[string]bool, len(algos))
	for i := range algos {
		if err := algos[i].Validate(); err != nil {
			opsf("rejecting algorithm %d: %v", i, err)
			return nil, err
		}
		if seen[algos[i].Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidAlgorithm, algos[i].Name)
		}
		seen[algos[i].Name] = true
		p.algos[i] = algos[i].clone()
		p.maxRecHits = max(p.maxRecHits, algos[i].MinRecHits)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Clone returns a Producer with the same algorithms, capabilities and
// metrics but its own scratch space.
func (p *Producer) Clone() *Producer {
	c := *p
	c.scratch = trackHits{geom: p.geom}
	return &c
}

// Algorithms returns a copy of the configured algorithms.
func (p *Producer) Algorithms() []AlgorithmConfig {
	out := make([]AlgorithmConfig, len(p.algos))
	for i := range p.algos {
		out[i] = p.algos[i].clone()
	}
	return out
}

// Produce builds the seeds of ev. The output has one collection per
// algorithm even when the event has no hits. Any geometry or truth lookup
// failure aborts the event and no output is returned.
func (p *Producer) Produce(ev Event) (*Output, error) {
	out := newOutput(p.algos)
	if ev.Size() == 0 {
		diagf("event has no hits, %d empty collections", len(out.Collections))
		return out, nil
	}

	beamSpot := ev.BeamSpot()
	ids := ev.TrackIDs()
	for _, id := range ids {
		p.metrics.TrackSeen()
		seed, algo, ok, err := p.seedTrack(ev, id, beamSpot)
		if err != nil {
			opsf("event aborted at sim track %d: %v", id, err)
			return nil, err
		}
		if !ok {
			continue
		}
		c := &out.Collections[algo]
		c.Seeds = append(c.Seeds, seed)
		p.metrics.SeedBuilt(c.Algorithm)
	}
	diagf("%d tracks with hits, %d seeds", len(ids), out.Len())
	return out, nil
}

// seedTrack runs the algorithms on one track and returns the first seed
// built and the index of the algorithm that built it.
func (p *Producer) seedTrack(ev Event, id int, beamSpot r3.Vec) (TrajectorySeed, int, bool, error) {
	track, err := ev.Track(id)
	if err != nil {
		return TrajectorySeed{}, 0, false, fmt.Errorf("sim track %d: %w", id, err)
	}
	vertex, err := ev.Vertex(track.VertexIndex)
	if err != nil {
		return TrajectorySeed{}, 0, false, fmt.Errorf("sim track %d vertex %d: %w", id, track.VertexIndex, err)
	}

	p.scratch.reset(ev.HitsFor(id))
	layers, err := countLayers(&p.scratch, p.maxRecHits)
	if err != nil {
		return TrajectorySeed{}, 0, false, fmt.Errorf("sim track %d: %w", id, err)
	}

	particle := trajectory.Particle{Momentum: track.Momentum, Position: vertex.Position, Charge: track.Charge}
	pt2 := track.Pt2()
	var ip trajectory.ImpactParameters
	haveIP := false

	for a := range p.algos {
		algo := &p.algos[a]
		if layers < algo.MinRecHits {
			continue
		}
		p.metrics.StagePassed(algo.Name, StageHits)

		if pt2 < algo.PtMin2 {
			continue
		}
		p.metrics.StagePassed(algo.Name, StagePt)

		if !haveIP {
			ip = p.field.ImpactParameters(particle, beamSpot)
			haveIP = true
		}
		if ip.D0 > algo.MaxD0 || math.Abs(ip.Z0-beamSpot.Z) > algo.MaxZ0 {
			tracef("%s: sim track %d fails d0=%.4f z0=%.3f", algo.Name, id, ip.D0, ip.Z0)
			continue
		}
		p.metrics.StagePassed(algo.Name, StageImpact)

		idx, found, err := p.selector.Select(&p.scratch, algo)
		if err != nil {
			return TrajectorySeed{}, 0, false, fmt.Errorf("sim track %d: %w", id, err)
		}
		if !found {
			continue
		}
		seed, err := p.builder.Build(p.scratch.pick(idx), track, vertex, algo)
		if err != nil {
			return TrajectorySeed{}, 0, false, fmt.Errorf("sim track %d: %w", id, err)
		}
		seed.SimTrackID = id
		return seed, a, true, nil
	}
	return TrajectorySeed{}, 0, false, nil
}
