package lie

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// Below this angle the Rodrigues coefficients switch to their Taylor series.
	rodriguesSeriesAngle = 1e-4
	// Below this angle the dexpinv helpers switch to their Taylor series.
	dexpinvSeriesAngle = 0.1
)

// SO3Algebra is so(3) with closed forms on 3-vector coordinates. Matrix
// elements fall back to the general matrix algebra.
type SO3Algebra struct {
	group   SOGroup
	general *GeneralAlgebra
}

func NewSO3Algebra() *SO3Algebra {
	return &SO3Algebra{general: NewGeneralAlgebra(3)}
}

func (a *SO3Algebra) Zero() mat.Matrix {
	return mat.NewVecDense(3, nil)
}

func (a *SO3Algebra) Exp(y mat.Matrix) (GroupElement, error) {
	if r, _ := y.Dims(); r != 3 || !IsVector(y) {
		return a.general.Exp(y)
	}
	v, err := Coords(y)
	if err != nil {
		return nil, err
	}
	return Matrix{M: Rodrigues(toR3(v))}, nil
}

// Dexpinv pulls v back to the algebra at u. A matrix v is first reduced to
// its axial vector; the result is always a 3-vector.
func (a *SO3Algebra) Dexpinv(u, v mat.Matrix, order int) (mat.Matrix, error) {
	if r, _ := u.Dims(); r != 3 || !IsVector(u) {
		return a.general.Dexpinv(u, v, order)
	}
	var w r3.Vec
	if IsVector(v) {
		c, err := Coords(v)
		if err != nil {
			return nil, err
		}
		if len(c) != 3 {
			return nil, errVectorLength(len(c), 3)
		}
		w = toR3(c)
	} else {
		var err error
		if w, err = Vee(v); err != nil {
			return nil, err
		}
	}
	uc, _ := Coords(u)
	uv := toR3(uc)
	alpha := r3.Norm(uv)
	if alpha == 0 {
		return NewVector(fromR3(w)), nil
	}
	U := Hat(uv)
	var U2, lhs mat.Dense
	U2.Mul(U, U)
	lhs.Scale(-0.5, U)
	U2.Scale(dexpinvCoeff(alpha), &U2)
	lhs.Add(&lhs, &U2)
	for i := 0; i < 3; i++ {
		lhs.Set(i, i, lhs.At(i, i)+1)
	}
	out, err := a.group.Action(Matrix{M: &lhs}, fromR3(w))
	if err != nil {
		return nil, err
	}
	return NewVector(out), nil
}

// Rodrigues returns exp(ŷ) = I + (sin α/α)Ŷ + ((1−cos α)/α²)Ŷ², α = |y|.
// The zero vector maps to the identity exactly.
func Rodrigues(y r3.Vec) *mat.Dense {
	alpha := r3.Norm(y)
	out := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	if alpha == 0 {
		return out
	}
	s, c := rodriguesCoeffs(alpha)
	Y := Hat(y)
	var Y2 mat.Dense
	Y2.Mul(Y, Y)
	Y2.Scale(c, &Y2)
	Y.Scale(s, Y)
	out.Add(out, Y)
	out.Add(out, &Y2)
	return out
}

// rodriguesCoeffs returns sin α/α and (1−cos α)/α².
func rodriguesCoeffs(alpha float64) (float64, float64) {
	a2 := alpha * alpha
	if alpha < rodriguesSeriesAngle {
		return 1 - a2/6, 0.5 - a2/24
	}
	h := math.Sin(0.5 * alpha)
	return math.Sin(alpha) / alpha, 2 * h * h / a2
}

// dexpinvCoeff returns (2 − α·cot(α/2))/(2α²), which tends to 1/12 as α → 0.
func dexpinvCoeff(alpha float64) float64 {
	if alpha < dexpinvSeriesAngle {
		a2 := alpha * alpha
		return 1.0/12 + a2/720 + a2*a2/30240
	}
	return (1 - 0.5*alpha/math.Tan(0.5*alpha)) / (alpha * alpha)
}
