// Package geometry is a table-backed detector element lookup. Each element
// has a raw id, the sub-detector and layer it belongs to and the plane of its
// sensitive surface. The table is read once and is safe for concurrent
// readers.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/banshee-data/trackseed/internal/fsutil"
	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tracker sub-detector ids, innermost first.
const (
	PixelBarrel uint32 = iota + 1
	PixelEndcap
	InnerBarrel
	InnerDisks
	OuterBarrel
	Endcap
)

const maxGeometryFileSize = 16 * 1024 * 1024

// ErrUnknownDetector is returned for ids that are not in the table.
var ErrUnknownDetector = errors.New("unknown detector element")

// Location is the derived geometry of a hit.
type Location struct {
	SubDet uint32
	Layer  uint32
	Global r3.Vec
}

// Element is the serialised description of one detector element.
type Element struct {
	ID     uint32     `json:"id"`
	SubDet uint32     `json:"sub_det"`
	Layer  uint32     `json:"layer"`
	Origin [3]float64 `json:"origin"`
	U      [3]float64 `json:"u"`
	V      [3]float64 `json:"v"`
}

type file struct {
	Elements []Element `json:"elements"`
}

type entry struct {
	subDet uint32
	layer  uint32
	plane  trajectory.Plane
}

// Table maps raw detector ids to their elements.
type Table struct {
	entries map[uint32]entry
}

func vec(a [3]float64) r3.Vec { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }

// NewTable validates elements and indexes them by id.
func NewTable(elements []Element) (*Table, error) {
	t := &Table{entries: make(map[uint32]entry, len(elements))}
	for i, el := range elements {
		if el.SubDet == 0 {
			return nil, fmt.Errorf("element %d (id %d): sub_det must be >= 1", i, el.ID)
		}
		if _, dup := t.entries[el.ID]; dup {
			return nil, fmt.Errorf("element %d: duplicate id %d", i, el.ID)
		}
		pl, err := trajectory.NewPlane(vec(el.Origin), vec(el.U), vec(el.V))
		if err != nil {
			return nil, fmt.Errorf("element %d (id %d): %w", i, el.ID, err)
		}
		t.entries[el.ID] = entry{subDet: el.SubDet, layer: el.Layer, plane: pl}
	}
	return t, nil
}

// Load reads a JSON geometry file of the form {"elements": [...]}.
func Load(fsys fsutil.FileSystem, path string) (*Table, error) {
	data, err := fsutil.ReadBounded(fsys, path, maxGeometryFileSize)
	if err != nil {
		return nil, err
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse geometry JSON: %w", err)
	}
	return NewTable(f.Elements)
}

// Len returns the number of elements.
func (t *Table) Len() int { return len(t.entries) }

// Locate returns the sub-detector, layer and global position of a point
// given in the local frame of element detID.
func (t *Table) Locate(detID uint32, localX, localY float64) (Location, error) {
	e, ok := t.entries[detID]
	if !ok {
		return Location{}, fmt.Errorf("%w: %d", ErrUnknownDetector, detID)
	}
	return Location{SubDet: e.subDet, Layer: e.layer, Global: e.plane.ToGlobal(localX, localY)}, nil
}

// Surface returns the plane of element detID.
func (t *Table) Surface(detID uint32) (trajectory.Plane, error) {
	e, ok := t.entries[detID]
	if !ok {
		return trajectory.Plane{}, fmt.Errorf("%w: %d", ErrUnknownDetector, detID)
	}
	return e.plane, nil
}
