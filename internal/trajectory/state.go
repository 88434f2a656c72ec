package trajectory

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// CurvatureConstant converts tesla x cm into GeV/c: pT = CurvatureConstant * B * R.
const CurvatureConstant = 0.0029979246

// Dim is the dimension of the trajectory parameter vector.
const Dim = 5

var (
	// ErrZeroMomentum is returned for states without a direction.
	ErrZeroMomentum = errors.New("zero momentum")
	// ErrParallelToSurface is returned when the momentum lies in the surface
	// plane and no local slope can be formed.
	ErrParallelToSurface = errors.New("momentum parallel to surface")
)

// FreeState is a track state that is not bound to any surface. Its error, if
// set, is expressed in curvilinear coordinates (q/p, lambda, phi, x_perp, y_perp).
type FreeState struct {
	Position r3.Vec
	Momentum r3.Vec
	Charge   int
	Field    r3.Vec // field at Position
	Error    *mat.SymDense
}

// NewFreeState returns a free state without error.
func NewFreeState(position, momentum r3.Vec, charge int, field r3.Vec) FreeState {
	return FreeState{Position: position, Momentum: momentum, Charge: charge, Field: field}
}

// SignedInverseMomentum returns q/|p|. Neutral states use 1/|p|.
func (s FreeState) SignedInverseMomentum() float64 {
	p := r3.Norm(s.Momentum)
	if p == 0 {
		return 0
	}
	if s.Charge == 0 {
		return 1 / p
	}
	return float64(s.Charge) / p
}

// TransverseCurvature returns the signed curvature in the transverse plane
// (1/cm) for the field at the state position.
func (s FreeState) TransverseCurvature() float64 {
	pt := Perp(s.Momentum)
	if pt == 0 || s.Charge == 0 {
		return 0
	}
	return -CurvatureConstant * float64(s.Charge) * s.Field.Z / pt
}

// WithCurvilinearError returns a copy of the state carrying cov.
func (s FreeState) WithCurvilinearError(cov *mat.SymDense) (FreeState, error) {
	if cov == nil {
		return s, errors.New("nil curvilinear error")
	}
	if r, _ := cov.Dims(); r != Dim {
		return s, fmt.Errorf("curvilinear error must be %dx%d, got %dx%d", Dim, Dim, r, r)
	}
	s.Error = cov
	return s, nil
}

// ScaledIdentity returns an n x n symmetric matrix with f on the diagonal.
func ScaledIdentity(n int, f float64) *mat.SymDense {
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, f)
	}
	return m
}

// LocalParameters are the surface-bound parameters (q/p, dx/dz, dy/dz, x, y).
// PzSign records on which side of the surface the momentum points.
type LocalParameters struct {
	QbP    float64
	DxDz   float64
	DyDz   float64
	X      float64
	Y      float64
	PzSign float64
}

// Vector returns the five parameters in canonical order.
func (lp LocalParameters) Vector() [Dim]float64 {
	return [Dim]float64{lp.QbP, lp.DxDz, lp.DyDz, lp.X, lp.Y}
}

// StateOnSurface is a free state expressed in the frame of a plane.
type StateOnSurface struct {
	Parameters LocalParameters
	Error      *mat.SymDense // local 5x5, nil when the free state had none
	Side       SurfaceSide
}

// OnPlane expresses fs in the frame of pl. The state is not propagated: the
// position is projected into the plane frame and the local z is dropped.
func OnPlane(fs FreeState, pl Plane) (StateOnSurface, error) {
	if r3.Norm(fs.Momentum) == 0 {
		return StateOnSurface{}, ErrZeroMomentum
	}
	lm := pl.ToLocalVector(fs.Momentum)
	if math.Abs(lm.Z) < 1e-12*r3.Norm(fs.Momentum) {
		return StateOnSurface{}, ErrParallelToSurface
	}
	lp := pl.ToLocal(fs.Position)
	out := StateOnSurface{
		Parameters: LocalParameters{
			QbP:    fs.SignedInverseMomentum(),
			DxDz:   lm.X / lm.Z,
			DyDz:   lm.Y / lm.Z,
			X:      lp.X,
			Y:      lp.Y,
			PzSign: math.Copysign(1, lm.Z),
		},
		Side: AtCenterOfSurface,
	}
	if fs.Error == nil {
		return out, nil
	}

	jac, err := CurvilinearToLocal(fs.Momentum, pl)
	if err != nil {
		return StateOnSurface{}, err
	}
	out.Error = Similarity(jac, fs.Error)
	return out, nil
}

// Similarity returns J C J^T as a symmetric matrix.
func Similarity(j mat.Matrix, c mat.Symmetric) *mat.SymDense {
	var jc, jcjt mat.Dense
	jc.Mul(j, c)
	jcjt.Mul(&jc, j.T())
	n, _ := jcjt.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for k := 0; k <= i; k++ {
			out.SetSym(i, k, 0.5*(jcjt.At(i, k)+jcjt.At(k, i)))
		}
	}
	return out
}
