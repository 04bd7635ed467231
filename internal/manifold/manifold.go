package manifold

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"gonum.org/v1/gonum/mat"
)

// Manifold is a homogeneous manifold holding the current state y. Every
// accepted write to y satisfies the manifold's constraint.
type Manifold interface {
	Kind() Kind
	Dim() int
	Y() dynamo.State
	SetY(y dynamo.State) error

	Exp(u mat.Matrix) (lie.GroupElement, error)
	Dexpinv(u, v mat.Matrix, order int) (mat.Matrix, error)
	Action(g lie.GroupElement, u dynamo.State) (dynamo.State, error)
	Zero() mat.Matrix

	// Invariant returns the quantities the group action preserves.
	Invariant(y dynamo.State) []float64
}

// Homogeneous is the common implementation behind every Kind. The group and
// algebra operations are bound once in the constructor.
type Homogeneous struct {
	kind Kind
	n    int
	y    dynamo.State

	exp     func(mat.Matrix) (lie.GroupElement, error)
	dexpinv func(u, v mat.Matrix, order int) (mat.Matrix, error)
	action  func(lie.GroupElement, dynamo.State) (dynamo.State, error)
	zero    func() mat.Matrix

	validate  func(dynamo.State) error
	invariant func(dynamo.State) []float64
}

// New builds the manifold of the given kind around the initial value y0.
// y0 may be any value accepted by ToState.
func New(kind Kind, y0 any) (*Homogeneous, error) {
	y, err := ToState(y0)
	if err != nil {
		return nil, err
	}
	switch kind {
	case Sphere:
		return NewSphere(y)
	case HeavyTop:
		return NewHeavyTop(y)
	case SphericalPendulum:
		return NewSphericalPendulum(y)
	}
	return nil, fmt.Errorf("%v: %w", kind, dynamo.ErrUnknownManifold)
}

func newHomogeneous(kind Kind, y dynamo.State, g lie.Group, a lie.Algebra) *Homogeneous {
	return &Homogeneous{
		kind:    kind,
		n:       len(y),
		exp:     a.Exp,
		dexpinv: a.Dexpinv,
		action:  g.Action,
		zero:    a.Zero,
	}
}

func (h *Homogeneous) Kind() Kind { return h.kind }
func (h *Homogeneous) Dim() int   { return h.n }

// Y returns a copy of the current state.
func (h *Homogeneous) Y() dynamo.State { return h.y.Clone() }

// SetY validates y and stores a copy. A rejected value leaves the state unchanged.
func (h *Homogeneous) SetY(y dynamo.State) error {
	if len(y) != h.n {
		return fmt.Errorf("%v holds length %d states, got %d: %w", h.kind, h.n, len(y), dynamo.ErrDimensionMismatch)
	}
	if h.validate != nil {
		if err := h.validate(y); err != nil {
			return err
		}
	}
	h.y = y.Clone()
	return nil
}

func (h *Homogeneous) Exp(u mat.Matrix) (lie.GroupElement, error) { return h.exp(u) }

func (h *Homogeneous) Dexpinv(u, v mat.Matrix, order int) (mat.Matrix, error) {
	return h.dexpinv(u, v, order)
}

func (h *Homogeneous) Action(g lie.GroupElement, u dynamo.State) (dynamo.State, error) {
	return h.action(g, u)
}

func (h *Homogeneous) Zero() mat.Matrix { return h.zero() }

func (h *Homogeneous) Invariant(y dynamo.State) []float64 {
	if h.invariant == nil {
		return nil
	}
	return h.invariant(y)
}

// ToState converts an initial value to a State. Slices and gonum vectors are
// copied; anything else fails with ErrNotConvertible.
func ToState(v any) (dynamo.State, error) {
	switch x := v.(type) {
	case dynamo.State:
		return x.Clone(), nil
	case []float64:
		return dynamo.State(x).Clone(), nil
	case []float32:
		out := make(dynamo.State, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	case []int:
		out := make(dynamo.State, len(x))
		for i, n := range x {
			out[i] = float64(n)
		}
		return out, nil
	case mat.Vector:
		out := make(dynamo.State, x.Len())
		for i := range out {
			out[i] = x.AtVec(i)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%T: %w", v, dynamo.ErrNotConvertible)
}
