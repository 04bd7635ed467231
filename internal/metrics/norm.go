package metrics

import (
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
)

// Invariant returns the quantities a manifold's action preserves.
type Invariant interface {
	Invariant(y dynamo.State) []float64
}

// NormDrift is the largest absolute deviation of any invariant from its
// value at the first observed state. For an RKMK run it stays at rounding level.
type NormDrift struct {
	name     string
	inv      Invariant
	initial  []float64
	maxDrift float64
}

func NewNormDrift(inv Invariant) *NormDrift {
	return &NormDrift{name: "norm_drift", inv: inv}
}

func (n *NormDrift) Name() string { return n.name }

func (n *NormDrift) Observe(y dynamo.State, _ float64) {
	vals := n.inv.Invariant(y)
	if n.initial == nil {
		n.initial = vals
		return
	}
	for i, v := range vals {
		if i < len(n.initial) {
			n.maxDrift = math.Max(n.maxDrift, math.Abs(v-n.initial[i]))
		}
	}
}

func (n *NormDrift) Value() float64 { return n.maxDrift }

func (n *NormDrift) Reset() {
	n.initial = nil
	n.maxDrift = 0
}
