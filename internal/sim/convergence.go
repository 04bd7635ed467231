package sim

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
)

// referenceRefinement is how much finer than the smallest tested step the
// reference solution is computed.
const referenceRefinement = 16

type ConvergenceResult struct {
	Method integrators.Method
	H      []float64
	// Errors[i] is the global error at tEnd for step H[i].
	Errors []float64
	// Orders[i] is the observed order between H[i] and H[i+1].
	Orders []float64
}

// Convergence solves the same problem once per step size, concurrently, and
// compares the end states with reference. A nil reference is computed with
// RKMK4 at a step size finer than every entry of hs.
func Convergence(ctx context.Context, f integrators.VectorField, y0 dynamo.State, tStart, tEnd float64,
	kind manifold.Kind, method integrators.Method, hs []float64, reference dynamo.State) (*ConvergenceResult, error) {
	if len(hs) == 0 {
		return nil, fmt.Errorf("convergence study needs step sizes: %w", dynamo.ErrInvalidStep)
	}
	if reference == nil {
		hMin := hs[0]
		for _, h := range hs {
			hMin = math.Min(hMin, h)
		}
		ref, err := Solve(ctx, f, y0, tStart, tEnd, hMin/referenceRefinement, kind, integrators.RKMK4)
		if err != nil {
			return nil, fmt.Errorf("reference solution: %w", err)
		}
		reference = ref.Final()
	}

	finals := make([]dynamo.State, len(hs))
	errs := make([]error, len(hs))

	var wg sync.WaitGroup
	for i, h := range hs {
		wg.Add(1)
		go func(idx int, h float64) {
			defer wg.Done()
			flow, err := Solve(ctx, f, y0, tStart, tEnd, h, kind, method)
			if err != nil {
				errs[idx] = fmt.Errorf("h = %v: %w", h, err)
				return
			}
			finals[idx] = flow.Final()
		}(i, h)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &ConvergenceResult{
		Method: method,
		H:      append([]float64(nil), hs...),
		Errors: make([]float64, len(hs)),
	}
	for i, y := range finals {
		res.Errors[i] = y.Sub(reference).Norm()
	}
	for i := 0; i+1 < len(hs); i++ {
		res.Orders = append(res.Orders, math.Log(res.Errors[i]/res.Errors[i+1])/math.Log(hs[i]/hs[i+1]))
	}
	return res, nil
}
