package fieldprop

import (
	"math"

	"github.com/banshee-data/trackseed/internal/trajectory"
	"gonum.org/v1/gonum/spatial/r3"
)

// minField is the |Bz| (tesla) below which trajectories are treated as straight.
const minField = 1e-9

// UniformField is a constant magnetic field along z.
type UniformField struct {
	Bz float64 // tesla
}

// NewUniformField returns a field of bz tesla along +z.
func NewUniformField(bz float64) *UniformField {
	return &UniformField{Bz: bz}
}

// FieldAt returns the field vector at any position.
func (f *UniformField) FieldAt(r3.Vec) r3.Vec {
	return r3.Vec{Z: f.Bz}
}

// xy helpers on the transverse projection
func cross2(ax, ay, bx, by float64) float64 { return ax*by - ay*bx }

func angle2(ax, ay, bx, by float64) float64 {
	return math.Atan2(cross2(ax, ay, bx, by), ax*bx+ay*by)
}

// PropagateToBeamCylinder finds the highest-pT helix that passes through
// both through and p.Position and reaches the cylinder of the given radius
// around the z axis. Only the direction of p.Momentum matters: its
// transverse momentum is replaced by the helix solution and the charge sign
// is resolved from the bending direction. It reports false when no such
// helix exists.
func (f *UniformField) PropagateToBeamCylinder(p trajectory.Particle, through r3.Vec, radius float64) (trajectory.BeamCrossing, bool) {
	p1, p2 := through, p.Position
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord == 0 {
		return trajectory.BeamCrossing{}, false
	}

	// Straight line through both hits: if it already passes within the
	// cylinder, the compatible helices extend to infinite pT.
	lineDist := math.Abs(cross2(p1.X, p1.Y, dx, dy)) / chord
	if lineDist <= radius || math.Abs(f.Bz) < minField {
		if lineDist > radius {
			return trajectory.BeamCrossing{}, false
		}
		s := -(p1.X*dx + p1.Y*dy) / (chord * chord)
		return trajectory.BeamCrossing{
			R:  lineDist,
			Z:  p1.Z + s*(p2.Z-p1.Z),
			Pt: math.Inf(1),
		}, true
	}

	// Circles through both hits have centres C = M + t*n on the chord
	// bisector. Requiring ||C| - rho| = radius gives a quadratic in t.
	mx, my := 0.5*(p1.X+p2.X), 0.5*(p1.Y+p2.Y)
	nx, ny := -dy/chord, dx/chord
	h := 0.5 * chord
	m := mx*nx + my*ny
	m2 := mx*mx + my*my
	r2 := radius * radius
	k := h*h - m2 - r2

	a := 4 * (m*m - r2)
	b := -4 * m * (k + 2*r2)
	c := k*k - 4*r2*m2

	var roots []float64
	switch {
	case math.Abs(a) < 1e-12:
		if b == 0 {
			return trajectory.BeamCrossing{}, false
		}
		roots = []float64{-c / b}
	default:
		disc := b*b - 4*a*c
		if disc < 0 {
			return trajectory.BeamCrossing{}, false
		}
		sq := math.Sqrt(disc)
		roots = []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
	}

	best := -1.0
	var cx, cy, rho float64
	for _, t := range roots {
		x, y := mx+t*nx, my+t*ny
		r := math.Hypot(h, t)
		if math.Abs(math.Abs(math.Hypot(x, y)-r)-radius) > 1e-6*math.Max(1, r) {
			continue
		}
		if r > best {
			best, cx, cy, rho = r, x, y, r
		}
	}
	if best < 0 {
		return trajectory.BeamCrossing{}, false
	}

	// Closest point of the circle to the axis.
	cn := math.Hypot(cx, cy)
	tx, ty := p1.X, p1.Y
	if cn > 0 {
		tx, ty = cx-rho*cx/cn, cy-rho*cy/cn
	}
	phi12 := angle2(p1.X-cx, p1.Y-cy, p2.X-cx, p2.Y-cy)
	if math.Abs(phi12) < 1e-12 {
		return trajectory.BeamCrossing{}, false
	}
	phi1T := angle2(p1.X-cx, p1.Y-cy, tx-cx, ty-cy)

	// Counter-clockwise motion bends negative charges for Bz > 0.
	sense := math.Copysign(1, cross2(p1.X-cx, p1.Y-cy, dx, dy))
	charge := -sense * math.Copysign(1, f.Bz) * math.Abs(p.Charge)

	return trajectory.BeamCrossing{
		R:      math.Hypot(tx, ty),
		Z:      p1.Z + (p2.Z-p1.Z)*phi1T/phi12,
		Pt:     trajectory.CurvatureConstant * math.Abs(f.Bz) * rho,
		Charge: charge,
	}, true
}

// ImpactParameters returns the transverse distance of closest approach of
// the particle's helix to the beam line through beamSpot, and the z of that
// point.
func (f *UniformField) ImpactParameters(p trajectory.Particle, beamSpot r3.Vec) trajectory.ImpactParameters {
	px, py := p.Momentum.X, p.Momentum.Y
	pt := math.Hypot(px, py)
	ox, oy := p.Position.X-beamSpot.X, p.Position.Y-beamSpot.Y
	if pt == 0 {
		return trajectory.ImpactParameters{D0: math.Hypot(ox, oy), Z0: p.Position.Z}
	}
	cotTheta := p.Momentum.Z / pt

	if p.Charge == 0 || math.Abs(f.Bz) < minField {
		ux, uy := px/pt, py/pt
		s := -(ox*ux + oy*uy)
		return trajectory.ImpactParameters{
			D0: math.Abs(cross2(ox, oy, ux, uy)),
			Z0: p.Position.Z + cotTheta*s,
		}
	}

	rho := pt / (trajectory.CurvatureConstant * math.Abs(f.Bz) * math.Abs(p.Charge))
	// Positive charges turn clockwise for Bz > 0; the centre then lies to
	// the right of the direction of motion.
	clockwise := p.Charge*f.Bz > 0
	side := 1.0
	if !clockwise {
		side = -1
	}
	cx := ox + side*rho*py/pt
	cy := oy - side*rho*px/pt
	cn := math.Hypot(cx, cy)
	d0 := math.Abs(cn - rho)
	if cn == 0 {
		return trajectory.ImpactParameters{D0: d0, Z0: p.Position.Z}
	}

	// Point of the circle nearest the beam line, relative to the centre.
	tx, ty := -rho*cx/cn, -rho*cy/cn
	phi := angle2(ox-cx, oy-cy, tx, ty)
	if clockwise {
		phi = -phi
	}
	return trajectory.ImpactParameters{
		D0: d0,
		Z0: p.Position.Z + cotTheta*rho*phi,
	}
}
