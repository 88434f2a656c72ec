package seeding

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"
)

// HitView is a RecHit with its geometry resolved. The zero HitView stands
// for "no hit".
type HitView struct {
	hit    RecHit
	subDet uint32
	layer  uint32
	global r3.Vec
	valid  bool
}

// NewHitView resolves the sub-detector, layer and global position of hit.
func NewHitView(hit RecHit, geom GeometryLookup) (HitView, error) {
	loc, err := geom.Locate(hit.DetID, hit.LocalX, hit.LocalY)
	if err != nil {
		return HitView{}, fmt.Errorf("hit on det %d: %w", hit.DetID, err)
	}
	return HitView{hit: hit, subDet: loc.SubDet, layer: loc.Layer, global: loc.Global, valid: true}, nil
}

func (h HitView) Hit() RecHit    { return h.hit }
func (h HitView) SubDet() uint32 { return h.subDet }
func (h HitView) Layer() uint32  { return h.layer }
func (h HitView) Global() r3.Vec { return h.global }
func (h HitView) Valid() bool    { return h.valid }

// IsOnTheSameLayer reports whether both hits sit on the same layer of the
// same sub-detector. It is false when either view is empty.
func (h HitView) IsOnTheSameLayer(other HitView) bool {
	return h.valid && other.valid && h.subDet == other.subDet && h.layer == other.layer
}

// IsOnRequestedDet reports whether the hit's sub-detector is in dets.
func (h HitView) IsOnRequestedDet(dets []uint32) bool {
	return h.valid && slices.Contains(dets, h.subDet)
}

// HitSequence is the ordered hit list of one track as the selector sees it.
type HitSequence interface {
	Len() int
	At(i int) (HitView, error)
}

// HitViews is a fully resolved HitSequence.
type HitViews []HitView

func (v HitViews) Len() int                  { return len(v) }
func (v HitViews) At(i int) (HitView, error) { return v[i], nil }

// trackHits resolves views on first access. It is the per-track scratch of
// a Producer and is reused across tracks.
type trackHits struct {
	geom  GeometryLookup
	hits  []RecHit
	views []HitView
}

func (t *trackHits) reset(hits []RecHit) {
	t.hits = hits
	if cap(t.views) < len(hits) {
		t.views = make([]HitView, len(hits))
		return
	}
	t.views = t.views[:len(hits)]
	clear(t.views)
}

func (t *trackHits) Len() int { return len(t.hits) }

func (t *trackHits) At(i int) (HitView, error) {
	if v := t.views[i]; v.valid {
		return v, nil
	}
	v, err := NewHitView(t.hits[i], t.geom)
	if err != nil {
		return HitView{}, err
	}
	t.views[i] = v
	return v, nil
}

// countLayers counts hits that are not on the same layer as the hit before
// them, stopping once ceiling is reached.
func countLayers(hits HitSequence, ceiling uint) (uint, error) {
	var n uint
	var previous HitView
	for i := 0; i < hits.Len(); i++ {
		current, err := hits.At(i)
		if err != nil {
			return 0, err
		}
		sameLayer := current.IsOnTheSameLayer(previous)
		previous = current
		if sameLayer {
			continue
		}
		n++
		if n == ceiling {
			break
		}
	}
	return n, nil
}

// pick copies the hits at idx out of the scratch.
func (t *trackHits) pick(idx []int) []RecHit {
	out := make([]RecHit, len(idx))
	for i, k := range idx {
		out[i] = t.hits[k]
	}
	return out
}
