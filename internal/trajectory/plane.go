package trajectory

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegeneratePlane is returned when the axes given for a plane are parallel
// or of zero length.
var ErrDegeneratePlane = errors.New("degenerate plane axes")

// Plane is a detector element surface: an origin and an orthonormal frame
// whose first two axes span the surface and whose third axis is the normal.
type Plane struct {
	Origin r3.Vec
	U      r3.Vec // local x
	V      r3.Vec // local y
	W      r3.Vec // normal
}

// NewPlane builds a plane from an origin and two in-plane directions. The
// second direction is orthogonalised against the first.
func NewPlane(origin, u, v r3.Vec) (Plane, error) {
	if r3.Norm(u) < 1e-12 {
		return Plane{}, ErrDegeneratePlane
	}
	uu := r3.Unit(u)
	vPerp := r3.Sub(v, r3.Scale(r3.Dot(v, uu), uu))
	if r3.Norm(vPerp) < 1e-12 {
		return Plane{}, ErrDegeneratePlane
	}
	vv := r3.Unit(vPerp)
	return Plane{Origin: origin, U: uu, V: vv, W: r3.Cross(uu, vv)}, nil
}

// ToGlobal maps a local (x, y) point on the plane to global coordinates.
func (p Plane) ToGlobal(x, y float64) r3.Vec {
	return r3.Add(p.Origin, r3.Add(r3.Scale(x, p.U), r3.Scale(y, p.V)))
}

// ToLocal maps a global point into the plane frame.
func (p Plane) ToLocal(g r3.Vec) r3.Vec {
	d := r3.Sub(g, p.Origin)
	return r3.Vec{X: r3.Dot(d, p.U), Y: r3.Dot(d, p.V), Z: r3.Dot(d, p.W)}
}

// ToLocalVector rotates a global direction into the plane frame.
func (p Plane) ToLocalVector(g r3.Vec) r3.Vec {
	return r3.Vec{X: r3.Dot(g, p.U), Y: r3.Dot(g, p.V), Z: r3.Dot(g, p.W)}
}

// Perp returns the transverse (xy) magnitude of a vector.
func Perp(v r3.Vec) float64 {
	return math.Hypot(v.X, v.Y)
}

// Perp2 returns the squared transverse magnitude of a vector.
func Perp2(v r3.Vec) float64 {
	return v.X*v.X + v.Y*v.Y
}
