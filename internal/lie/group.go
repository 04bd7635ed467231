package lie

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

// GroupElement is a member of a Lie group in one of the representations
// understood by the actions in this package.
type GroupElement interface {
	groupElement()
}

// Matrix is a group element stored as a square matrix, e.g. SO(n).
type Matrix struct {
	M mat.Matrix
}

// RigidMotion is an element (R, p) of SE(3).
type RigidMotion struct {
	R mat.Matrix
	P r3.Vec
}

// RigidMotions is an ordered tuple of SE(3) elements acting block-wise.
type RigidMotions []RigidMotion

func (Matrix) groupElement()       {}
func (RigidMotion) groupElement()  {}
func (RigidMotions) groupElement() {}

// Group applies a group element to a point of the representation space.
type Group interface {
	Action(g GroupElement, u dynamo.State) (dynamo.State, error)
}

// SOGroup acts on vectors by matrix multiplication.
type SOGroup struct{}

func (SOGroup) Action(g GroupElement, u dynamo.State) (dynamo.State, error) {
	m, ok := g.(Matrix)
	if !ok {
		return nil, fmt.Errorf("SO action on %T: %w", g, dynamo.ErrGroupElementType)
	}
	r, c := m.M.Dims()
	if r != c || c != len(u) {
		return nil, fmt.Errorf("SO action of %d×%d matrix on length %d vector: %w", r, c, len(u), dynamo.ErrDimensionMismatch)
	}
	var out mat.VecDense
	out.MulVec(m.M, mat.NewVecDense(len(u), u.Clone()))
	return dynamo.State(out.RawVector().Data), nil
}

// SE3Group is the coadjoint action of SE(3) on the dual of se(3).
type SE3Group struct{}

func (SE3Group) Action(g GroupElement, u dynamo.State) (dynamo.State, error) {
	rm, ok := g.(RigidMotion)
	if !ok {
		return nil, fmt.Errorf("SE(3) action on %T: %w", g, dynamo.ErrGroupElementType)
	}
	if len(u) != 6 {
		return nil, fmt.Errorf("SE(3) action on length %d vector: %w", len(u), dynamo.ErrDimensionMismatch)
	}
	z2 := mulVec3(rm.R, toR3(u[3:]))
	z1 := r3.Add(mulVec3(rm.R, toR3(u[:3])), r3.Cross(rm.P, z2))
	return dynamo.State(append(fromR3(z1), fromR3(z2)...)), nil
}

// StackedSE3Group acts with N copies of SE(3) on N blocks (q, ω) of length 6:
// (R, p)·(q, ω) = (Rq, Rω + p × Rq).
type StackedSE3Group struct{}

func (StackedSE3Group) Action(g GroupElement, u dynamo.State) (dynamo.State, error) {
	rms, ok := g.(RigidMotions)
	if !ok {
		return nil, fmt.Errorf("stacked SE(3) action needs a tuple of rigid motions, got %T: %w", g, dynamo.ErrGroupElementType)
	}
	if len(u) != 6*len(rms) {
		return nil, fmt.Errorf("stacked SE(3) action of %d elements on length %d vector: %w", len(rms), len(u), dynamo.ErrDimensionMismatch)
	}
	out := make(dynamo.State, 0, len(u))
	for i, rm := range rms {
		block := u.Block(i, 6)
		q := mulVec3(rm.R, toR3(block[:3]))
		w := r3.Add(mulVec3(rm.R, toR3(block[3:])), r3.Cross(rm.P, q))
		out = append(out, q.X, q.Y, q.Z, w.X, w.Y, w.Z)
	}
	return out, nil
}
