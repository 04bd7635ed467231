package manifold

import (
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"gonum.org/v1/gonum/floats/scalar"
)

// sphereTol bounds |yᵀy − 1|, absolute or relative.
const sphereTol = 1e-8

// NewSphere returns the unit sphere in R^n acted on by SO(n). For n = 3 the
// so(3) closed forms are used, otherwise the general matrix algebra.
func NewSphere(y dynamo.State) (*Homogeneous, error) {
	var algebra lie.Algebra
	if len(y) == 3 {
		algebra = lie.NewSO3Algebra()
	} else {
		algebra = lie.NewGeneralAlgebra(len(y))
	}
	h := newHomogeneous(Sphere, y, lie.SOGroup{}, algebra)
	h.validate = validateSphere
	h.invariant = func(s dynamo.State) []float64 { return []float64{s.Norm()} }
	if err := h.SetY(y); err != nil {
		return nil, err
	}
	return h, nil
}

func validateSphere(y dynamo.State) error {
	sq := y.Dot(y)
	if !scalar.EqualWithinAbsOrRel(sq, 1, sphereTol, sphereTol) || math.IsNaN(sq) {
		return &dynamo.ConstraintError{Manifold: "N-sphere", Quantity: "y^T y", Got: sq, Want: 1}
	}
	return nil
}
