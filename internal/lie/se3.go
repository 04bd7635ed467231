package lie

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// SE3Algebra is se(3) on 6-vectors (A, a): rotational half first, then
// translational half.
type SE3Algebra struct{}

func NewSE3Algebra() *SE3Algebra {
	return &SE3Algebra{}
}

func (SE3Algebra) Zero() mat.Matrix {
	return mat.NewVecDense(6, nil)
}

func (SE3Algebra) Exp(y mat.Matrix) (GroupElement, error) {
	c, err := Coords(y)
	if err != nil {
		return nil, err
	}
	if len(c) != 6 {
		return nil, errVectorLength(len(c), 6)
	}
	return expSE3(c), nil
}

func (SE3Algebra) Dexpinv(u, v mat.Matrix, _ int) (mat.Matrix, error) {
	uc, err := Coords(u)
	if err != nil {
		return nil, err
	}
	vc, err := Coords(v)
	if err != nil {
		return nil, err
	}
	if len(uc) != 6 {
		return nil, errVectorLength(len(uc), 6)
	}
	if len(vc) != 6 {
		return nil, errVectorLength(len(vc), 6)
	}
	return NewVector(dexpinvSE3(uc, vc)), nil
}

// expSE3 returns (exp(Â), V(A)·a) with
// V = I + ((1−cos α)/α²)Â + ((α−sin α)/α³)Â².
func expSE3(y []float64) RigidMotion {
	A, a := toR3(y[:3]), toR3(y[3:])
	alpha := r3.Norm(A)
	if alpha == 0 {
		return RigidMotion{R: Rodrigues(A), P: a}
	}
	_, c := rodriguesCoeffs(alpha)
	d := translationCoeff(alpha)
	// V·a expanded with Â·a = A × a.
	Aa := r3.Cross(A, a)
	p := r3.Add(a, r3.Add(r3.Scale(c, Aa), r3.Scale(d, r3.Cross(A, Aa))))
	return RigidMotion{R: Rodrigues(A), P: p}
}

// translationCoeff returns (α − sin α)/α³.
func translationCoeff(alpha float64) float64 {
	if alpha < 1e-2 {
		a2 := alpha * alpha
		return 1.0/6 - a2/120 + a2*a2/5040
	}
	return (alpha - math.Sin(alpha)) / (alpha * alpha * alpha)
}

// dexpinvSE3 is the exact inverse differential of exp on se(3).
func dexpinvSE3(u, v []float64) []float64 {
	if isZero(u) {
		out := make([]float64, len(v))
		copy(out, v)
		return out
	}
	A, a := toR3(u[:3]), toR3(u[3:])
	B, b := toR3(v[:3]), toR3(v[3:])
	alpha := r3.Norm(A)
	rho := r3.Dot(A, a)
	h1 := dexpinvCoeff(alpha)
	h2 := couplingCoeff(alpha, rho)

	AB := r3.Cross(A, B)
	AAB := r3.Cross(A, AB)
	c1 := r3.Add(B, r3.Add(r3.Scale(-0.5, AB), r3.Scale(h1, AAB)))

	c2 := r3.Sub(b, r3.Scale(0.5, r3.Add(r3.Cross(a, B), r3.Cross(A, b))))
	c2 = r3.Add(c2, r3.Scale(h2, AAB))
	nested := r3.Add(r3.Cross(a, AB), r3.Add(r3.Cross(A, r3.Cross(a, B)), r3.Cross(A, r3.Cross(A, b))))
	c2 = r3.Add(c2, r3.Scale(h1, nested))

	return append(fromR3(c1), fromR3(c2)...)
}

// couplingCoeff returns ρ/4·((α csc(α/2))² + 2α cot(α/2) − 8)/α⁴,
// which tends to ρ/360 as α → 0.
func couplingCoeff(alpha, rho float64) float64 {
	if alpha < dexpinvSeriesAngle {
		a2 := alpha * alpha
		return rho * (1.0/360 + a2/7560 + a2*a2/201600)
	}
	half := 0.5 * alpha
	csc := alpha / math.Sin(half)
	cot := alpha / math.Tan(half)
	return 0.25 * rho * (csc*csc + 2*cot - 8) / (alpha * alpha * alpha * alpha)
}
