package manifold

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
)

// NewSphericalPendulum returns the state space of N spherical pendula,
// y = (q_1, ω_1, ..., q_N, ω_N), acted on block-wise by SE(3)^N.
// Only the dimension is checked.
func NewSphericalPendulum(y dynamo.State) (*Homogeneous, error) {
	if len(y) == 0 || len(y)%6 != 0 {
		return nil, fmt.Errorf("spherical pendulum state has length %d, want a positive multiple of 6: %w", len(y), dynamo.ErrDimensionMismatch)
	}
	blocks := len(y) / 6
	h := newHomogeneous(SphericalPendulum, y, lie.StackedSE3Group{}, lie.NewStackedSE3Algebra(blocks))
	h.invariant = func(s dynamo.State) []float64 {
		out := make([]float64, 0, 2*blocks)
		for i := 0; i < blocks; i++ {
			b := s.Block(i, 6)
			q, w := b[:3], b[3:]
			out = append(out, q.Norm(), q.Dot(w))
		}
		return out
	}
	if err := h.SetY(y); err != nil {
		return nil, err
	}
	return h, nil
}

// Pendula returns the number of pendula N.
func (h *Homogeneous) Pendula() int {
	if h.kind != SphericalPendulum {
		return 0
	}
	return h.n / 6
}
