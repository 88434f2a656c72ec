package trajectory

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// curvilinearFrame returns the unit direction and the two curvilinear axes
// U = (z x t)/|z x t| and V = t x U, plus cos(lambda).
func curvilinearFrame(momentum r3.Vec) (t, u, v r3.Vec, cosl float64) {
	t = r3.Unit(momentum)
	cosl = Perp(t)
	if cosl < 1e-12 {
		u = r3.Vec{Y: 1}
	} else {
		u = r3.Vec{X: -t.Y / cosl, Y: t.X / cosl}
	}
	v = r3.Cross(t, u)
	return t, u, v, cosl
}

// CurvilinearToLocal returns the 5x5 Jacobian from curvilinear parameters
// (q/p, lambda, phi, x_perp, y_perp) to local plane parameters
// (q/p, dx/dz, dy/dz, x, y) for a state with the given momentum.
// Field terms coupling position and direction are neglected.
func CurvilinearToLocal(momentum r3.Vec, pl Plane) (*mat.Dense, error) {
	if r3.Norm(momentum) == 0 {
		return nil, ErrZeroMomentum
	}
	t, u, v, cosl := curvilinearFrame(momentum)
	tw := r3.Dot(t, pl.W)
	if math.Abs(tw) < 1e-12 {
		return nil, ErrParallelToSurface
	}
	tx := r3.Dot(t, pl.U)
	ty := r3.Dot(t, pl.V)
	uw := r3.Dot(u, pl.W)
	vw := r3.Dot(v, pl.W)

	// slope derivative along a direction change d: (d.X)/tw - (t.X)(d.W)/tw^2
	slope := func(d r3.Vec, axis r3.Vec, ta float64, dw float64) float64 {
		return r3.Dot(d, axis)/tw - ta*dw/(tw*tw)
	}
	// position shift of a curvilinear offset d carried along t onto the plane
	shift := func(d r3.Vec, axis r3.Vec, ta float64, dw float64) float64 {
		return r3.Dot(d, axis) - ta*dw/tw
	}

	j := mat.NewDense(Dim, Dim, nil)
	j.Set(0, 0, 1)
	j.Set(1, 1, slope(v, pl.U, tx, vw))
	j.Set(1, 2, cosl*slope(u, pl.U, tx, uw))
	j.Set(2, 1, slope(v, pl.V, ty, vw))
	j.Set(2, 2, cosl*slope(u, pl.V, ty, uw))
	j.Set(3, 3, shift(u, pl.U, tx, uw))
	j.Set(3, 4, shift(v, pl.U, tx, vw))
	j.Set(4, 3, shift(u, pl.V, ty, uw))
	j.Set(4, 4, shift(v, pl.V, ty, vw))
	return j, nil
}
