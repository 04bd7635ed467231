package sim

import (
	"fmt"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Flow is a computed trajectory. Column j of the state matrix is the
// solution at Times()[j]. A Flow is immutable; accessors return copies.
type Flow struct {
	y *mat.Dense
	t []float64
}

// NewFlow assembles a flow from states and their times.
func NewFlow(states []dynamo.State, times []float64) (*Flow, error) {
	if len(states) == 0 || len(states) != len(times) {
		return nil, fmt.Errorf("flow with %d states and %d times: %w", len(states), len(times), dynamo.ErrDimensionMismatch)
	}
	n := len(states[0])
	if n == 0 {
		return nil, fmt.Errorf("flow of empty states: %w", dynamo.ErrDimensionMismatch)
	}
	y := mat.NewDense(n, len(states), nil)
	for j, s := range states {
		if len(s) != n {
			return nil, fmt.Errorf("state %d has length %d, want %d: %w", j, len(s), n, dynamo.ErrDimensionMismatch)
		}
		y.SetCol(j, s)
	}
	t := make([]float64, len(times))
	copy(t, times)
	return &Flow{y: y, t: t}, nil
}

// States returns a copy of the n×m state matrix.
func (f *Flow) States() *mat.Dense { return mat.DenseCopyOf(f.y) }

func (f *Flow) Times() []float64 {
	out := make([]float64, len(f.t))
	copy(out, f.t)
	return out
}

// At returns component i of the state at time index j.
func (f *Flow) At(i, j int) float64 { return f.y.At(i, j) }

// Col returns the state at time index j.
func (f *Flow) Col(j int) dynamo.State {
	return dynamo.State(mat.Col(nil, j, f.y))
}

// Len is the number of time points.
func (f *Flow) Len() int { return len(f.t) }

// Dim is the state dimension.
func (f *Flow) Dim() int {
	r, _ := f.y.Dims()
	return r
}

func (f *Flow) Final() dynamo.State { return f.Col(f.Len() - 1) }

// Unpack returns the states one per time point, and the times.
func (f *Flow) Unpack() ([]dynamo.State, []float64) {
	states := make([]dynamo.State, f.Len())
	for j := range states {
		states[j] = f.Col(j)
	}
	return states, f.Times()
}

// Component returns the time series of state component i.
func (f *Flow) Component(i int) []float64 {
	return mat.Row(nil, i, f.y)
}
