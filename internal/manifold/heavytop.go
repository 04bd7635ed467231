package manifold

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
)

// NewHeavyTop returns the heavy top manifold: y = (mu, beta) in R6 under the
// coadjoint action of SE(3). Only the dimension is checked; |beta| and
// mu·beta are preserved by the action.
func NewHeavyTop(y dynamo.State) (*Homogeneous, error) {
	h := newHomogeneous(HeavyTop, y, lie.SE3Group{}, lie.NewSE3Algebra())
	h.validate = func(s dynamo.State) error {
		if len(s) != 6 {
			return fmt.Errorf("heavy top state has length %d, want 6: %w", len(s), dynamo.ErrDimensionMismatch)
		}
		return nil
	}
	h.invariant = func(s dynamo.State) []float64 {
		mu, beta := s[:3], s[3:6]
		return []float64{beta.Norm(), mu.Dot(beta)}
	}
	if err := h.SetY(y); err != nil {
		return nil, err
	}
	return h, nil
}
