package integrators

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/mat"
)

// VectorField returns the Lie algebra element driving the flow at (t, y).
type VectorField func(t float64, y dynamo.State) mat.Matrix

// Stepper advances a state by one step of size h.
type Stepper interface {
	Step(f VectorField, t float64, y dynamo.State, h float64) (dynamo.State, error)
	Tableau() Tableau
}

// RKMK is a Runge-Kutta-Munthe-Kaas stepper bound to one manifold's group
// and algebra operations.
type RKMK struct {
	tableau Tableau
	exp     func(mat.Matrix) (lie.GroupElement, error)
	dexpinv func(u, v mat.Matrix, order int) (mat.Matrix, error)
	action  func(lie.GroupElement, dynamo.State) (dynamo.State, error)
	zero    func() mat.Matrix
}

// New returns the stepper for method on manifold m.
func New(method Method, m manifold.Manifold) (*RKMK, error) {
	tab, err := method.Tableau()
	if err != nil {
		return nil, err
	}
	return NewFromTableau(tab, m)
}

// NewFromTableau builds an RKMK stepper from an arbitrary explicit tableau.
func NewFromTableau(tab Tableau, m manifold.Manifold) (*RKMK, error) {
	if err := tab.Validate(); err != nil {
		return nil, err
	}
	return &RKMK{
		tableau: tab,
		exp:     m.Exp,
		dexpinv: m.Dexpinv,
		action:  m.Action,
		zero:    m.Zero,
	}, nil
}

func (r *RKMK) Tableau() Tableau { return r.tableau }

// Step computes
//
//	u_i = h Σ_{j<i} a_ij k_j
//	k_i = dexpinv(u_i, f(t + c_i h, exp(u_i)·y))
//	y'  = exp(h Σ b_i k_i)·y
func (r *RKMK) Step(f VectorField, t float64, y dynamo.State, h float64) (dynamo.State, error) {
	tab := r.tableau
	s := tab.Stages()
	k := make([]mat.Matrix, s)
	coeffs := make([]float64, s)

	for i := 0; i < s; i++ {
		u := r.zero()
		if i > 0 {
			for j := 0; j < i; j++ {
				coeffs[j] = h * tab.A[i][j]
			}
			c, err := lie.Combine(coeffs[:i], k[:i])
			if err != nil {
				return nil, fmt.Errorf("stage %d: %w", i, err)
			}
			u = c
		}
		g, err := r.exp(u)
		if err != nil {
			return nil, fmt.Errorf("stage %d: exp: %w", i, err)
		}
		yi, err := r.action(g, y)
		if err != nil {
			return nil, fmt.Errorf("stage %d: action: %w", i, err)
		}
		raw := f(t+tab.C[i]*h, yi)
		if raw == nil {
			return nil, fmt.Errorf("stage %d: vector field returned no value: %w", i, dynamo.ErrDimensionMismatch)
		}
		if k[i], err = r.dexpinv(u, raw, tab.Order); err != nil {
			return nil, fmt.Errorf("stage %d: dexpinv: %w", i, err)
		}
	}

	v, err := lie.Combine(tab.B, k)
	if err != nil {
		return nil, fmt.Errorf("update: %w", err)
	}
	v.Scale(h, v)
	g, err := r.exp(v)
	if err != nil {
		return nil, fmt.Errorf("update: exp: %w", err)
	}
	next, err := r.action(g, y)
	if err != nil {
		return nil, fmt.Errorf("update: action: %w", err)
	}
	return next, nil
}
