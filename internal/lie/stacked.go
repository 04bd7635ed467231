package lie

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// StackedSE3Algebra is the direct sum of N copies of se(3), on vectors of
// length 6N. Exp and Dexpinv act block by block.
type StackedSE3Algebra struct {
	blocks int
}

func NewStackedSE3Algebra(blocks int) *StackedSE3Algebra {
	return &StackedSE3Algebra{blocks: blocks}
}

func (s *StackedSE3Algebra) Zero() mat.Matrix {
	return mat.NewVecDense(6*s.blocks, nil)
}

func (s *StackedSE3Algebra) Exp(y mat.Matrix) (GroupElement, error) {
	c, err := s.coords(y)
	if err != nil {
		return nil, err
	}
	out := make(RigidMotions, s.blocks)
	for i := range out {
		out[i] = expSE3(c[6*i : 6*i+6])
	}
	return out, nil
}

func (s *StackedSE3Algebra) Dexpinv(u, v mat.Matrix, _ int) (mat.Matrix, error) {
	uc, err := s.coords(u)
	if err != nil {
		return nil, err
	}
	vc, err := s.coords(v)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(uc))
	for i := 0; i < s.blocks; i++ {
		out = append(out, dexpinvSE3(uc[6*i:6*i+6], vc[6*i:6*i+6])...)
	}
	return mat.NewVecDense(len(out), out), nil
}

func (s *StackedSE3Algebra) coords(m mat.Matrix) ([]float64, error) {
	c, err := Coords(m)
	if err != nil {
		return nil, err
	}
	if len(c) != 6*s.blocks {
		return nil, fmt.Errorf("stacked se(3) with %d blocks, element of length %d: %w", s.blocks, len(c), dynamo.ErrDimensionMismatch)
	}
	return c, nil
}
