package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
)

// Tableau is an explicit Butcher tableau. A is strictly lower triangular.
type Tableau struct {
	Name  string
	A     [][]float64
	B     []float64
	C     []float64
	Order int
}

func (t Tableau) Stages() int { return len(t.B) }

// Validate checks the shape of the tableau and the consistency conditions
// Σb = 1 and c_i = Σ_j a_ij.
func (t Tableau) Validate() error {
	s := t.Stages()
	if s == 0 || len(t.A) != s || len(t.C) != s {
		return fmt.Errorf("tableau %s: %d stages, A has %d rows, c has %d entries: %w", t.Name, s, len(t.A), len(t.C), dynamo.ErrDimensionMismatch)
	}
	var sumB float64
	for i, row := range t.A {
		if len(row) != s {
			return fmt.Errorf("tableau %s: row %d has %d entries: %w", t.Name, i, len(row), dynamo.ErrDimensionMismatch)
		}
		var sumA float64
		for j, a := range row {
			if j >= i && a != 0 {
				return fmt.Errorf("tableau %s: a[%d][%d] = %g, method must be explicit: %w", t.Name, i, j, a, dynamo.ErrUnsupportedOperation)
			}
			sumA += a
		}
		if math.Abs(sumA-t.C[i]) > 1e-14 {
			return fmt.Errorf("tableau %s: row %d sums to %g, c = %g: %w", t.Name, i, sumA, t.C[i], dynamo.ErrUnsupportedOperation)
		}
		sumB += t.B[i]
	}
	if math.Abs(sumB-1) > 1e-14 {
		return fmt.Errorf("tableau %s: weights sum to %g: %w", t.Name, sumB, dynamo.ErrUnsupportedOperation)
	}
	return nil
}
