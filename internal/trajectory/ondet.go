package trajectory

import "gonum.org/v1/gonum/mat"

// SurfaceSide tells where on a surface a state is defined.
type SurfaceSide int

const (
	AtCenterOfSurface SurfaceSide = iota
	BeforeSurface
	AfterSurface
)

func (s SurfaceSide) String() string {
	switch s {
	case BeforeSurface:
		return "before"
	case AfterSurface:
		return "after"
	default:
		return "center"
	}
}

// PackedErrors is the number of independent entries of a 5x5 symmetric matrix.
const PackedErrors = Dim * (Dim + 1) / 2

// StateOnDet is the portable form of a surface-bound state: local parameters,
// the lower triangle of the local error packed row by row, the raw detector id
// and the surface side.
type StateOnDet struct {
	Parameters LocalParameters
	Errors     [PackedErrors]float32
	DetID      uint32
	Side       SurfaceSide
}

// PackOnDet converts a surface-bound state into its portable form. The
// error is read straight from the symmetric matrix into the fixed array.
func PackOnDet(s StateOnSurface, detID uint32) StateOnDet {
	out := StateOnDet{Parameters: s.Parameters, DetID: detID, Side: s.Side}
	if s.Error == nil {
		return out
	}
	k := 0
	for i := 0; i < Dim; i++ {
		for j := 0; j <= i; j++ {
			out.Errors[k] = float32(s.Error.At(i, j))
			k++
		}
	}
	return out
}

// Covariance unpacks the error into a symmetric matrix.
func (s StateOnDet) Covariance() *mat.SymDense {
	m := mat.NewSymDense(Dim, nil)
	k := 0
	for i := 0; i < Dim; i++ {
		for j := 0; j <= i; j++ {
			m.SetSym(i, j, float64(s.Errors[k]))
			k++
		}
	}
	return m
}
