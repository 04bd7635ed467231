package lie

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Algebra is a Lie algebra with its exponential map and the inverse of the
// right-trivialized differential of exp.
//
// Elements are either columns of coordinates or square matrices. Zero returns
// the origin in the representation the algebra's Dexpinv produces.
type Algebra interface {
	Exp(y mat.Matrix) (GroupElement, error)
	Dexpinv(u, v mat.Matrix, order int) (mat.Matrix, error)
	Zero() mat.Matrix
}

// GeneralAlgebra is a matrix Lie algebra of n×n matrices. It uses the general
// matrix exponential and the truncated BCH series for dexpinv, and serves as
// the fallback when no closed form applies.
type GeneralAlgebra struct {
	n int
}

func NewGeneralAlgebra(n int) *GeneralAlgebra {
	return &GeneralAlgebra{n: n}
}

func (g *GeneralAlgebra) Zero() mat.Matrix {
	return mat.NewDense(g.n, g.n, nil)
}

func (g *GeneralAlgebra) Exp(y mat.Matrix) (GroupElement, error) {
	r, c := y.Dims()
	if r != c {
		return nil, fmt.Errorf("matrix exponential of %d×%d element: %w", r, c, dynamo.ErrUnsupportedOperation)
	}
	var e mat.Dense
	e.Exp(y)
	return Matrix{M: &e}, nil
}

// Dexpinv returns v − ½[u, v] + 1/12 [u, [u, v]], truncated according to order.
func (g *GeneralAlgebra) Dexpinv(u, v mat.Matrix, order int) (mat.Matrix, error) {
	if order >= 6 {
		return nil, dynamo.ErrUnsupportedOrder
	}
	ans := mat.DenseCopyOf(v)
	if order < 2 {
		return ans, nil
	}
	c, err := g.Commutator(u, v)
	if err != nil {
		return nil, err
	}
	var term mat.Dense
	term.Scale(0.5, c)
	ans.Sub(ans, &term)
	if order < 4 {
		return ans, nil
	}
	c, err = g.Commutator(u, c)
	if err != nil {
		return nil, err
	}
	term.Scale(1.0/12.0, c)
	ans.Add(ans, &term)
	return ans, nil
}

// Commutator returns ab − ba for square matrices of equal shape.
func (g *GeneralAlgebra) Commutator(a, b mat.Matrix) (*mat.Dense, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != ac || ar != br || ac != bc {
		return nil, fmt.Errorf("commutator of %d×%d and %d×%d: %w", ar, ac, br, bc, dynamo.ErrUnsupportedOperation)
	}
	var ab, ba mat.Dense
	ab.Mul(a, b)
	ba.Mul(b, a)
	ab.Sub(&ab, &ba)
	return &ab, nil
}

// Combine returns Σ coeffs[i]·elems[i]; all elements must share a shape.
func Combine(coeffs []float64, elems []mat.Matrix) (*mat.Dense, error) {
	if len(coeffs) != len(elems) || len(elems) == 0 {
		return nil, fmt.Errorf("combine %d coefficients with %d elements: %w", len(coeffs), len(elems), dynamo.ErrDimensionMismatch)
	}
	r, c := elems[0].Dims()
	out := mat.NewDense(r, c, nil)
	var term mat.Dense
	for i, e := range elems {
		if coeffs[i] == 0 {
			continue
		}
		if er, ec := e.Dims(); er != r || ec != c {
			return nil, fmt.Errorf("combine %d×%d with %d×%d: %w", r, c, er, ec, dynamo.ErrDimensionMismatch)
		}
		term.Scale(coeffs[i], e)
		out.Add(out, &term)
		term.Reset()
	}
	return out, nil
}
