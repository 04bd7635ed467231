package lie

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Hat returns the skew-symmetric matrix Ŷ with Ŷ·x = y × x.
func Hat(y r3.Vec) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -y.Z, y.Y,
		y.Z, 0, -y.X,
		-y.Y, y.X, 0,
	})
}

// Skew is Hat for a plain slice; it fails unless len(y) == 3.
func Skew(y []float64) (*mat.Dense, error) {
	if len(y) != 3 {
		return nil, fmt.Errorf("skew of length %d vector: %w", len(y), dynamo.ErrDimensionMismatch)
	}
	return Hat(toR3(y)), nil
}

// Vee is the inverse of Hat: the axial vector of a 3×3 matrix.
func Vee(m mat.Matrix) (r3.Vec, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return r3.Vec{}, fmt.Errorf("vee of %d×%d matrix: %w", r, c, dynamo.ErrDimensionMismatch)
	}
	return r3.Vec{X: m.At(2, 1), Y: m.At(0, 2), Z: m.At(1, 0)}, nil
}

// NewVector wraps coordinates as a column algebra element. The data is copied.
func NewVector(v []float64) *mat.VecDense {
	data := make([]float64, len(v))
	copy(data, v)
	return mat.NewVecDense(len(data), data)
}

// IsVector reports whether an algebra element is in coordinate (column) form.
func IsVector(m mat.Matrix) bool {
	_, c := m.Dims()
	return c == 1
}

// Coords returns a copy of the entries of a column element.
func Coords(m mat.Matrix) ([]float64, error) {
	r, c := m.Dims()
	if c != 1 {
		return nil, fmt.Errorf("expected a column element, got %d×%d: %w", r, c, dynamo.ErrDimensionMismatch)
	}
	out := make([]float64, r)
	for i := range out {
		out[i] = m.At(i, 0)
	}
	return out, nil
}

func toR3(v []float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}

func fromR3(v r3.Vec) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// mulVec3 returns R·v for a 3×3 matrix.
func mulVec3(R mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(R, mat.NewVecDense(3, fromR3(v)))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

func errVectorLength(got, want int) error {
	return fmt.Errorf("length %d element, want %d: %w", got, want, dynamo.ErrDimensionMismatch)
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
