package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var allMethods = []Method{EulerLie, ImprovedEulerLie, SSPRKMK3, RKMK4}

func TestParseMethod(t *testing.T) {
	for _, m := range allMethods {
		got, err := ParseMethod(m.String())
		if err != nil {
			t.Fatalf("ParseMethod(%q): %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMethod(%q) = %v", m, got)
		}
	}
	if got, err := ParseMethod("rkmk4"); err != nil || got != RKMK4 {
		t.Errorf("identifiers should be case-insensitive: %v, %v", got, err)
	}
	if _, err := ParseMethod("RK45"); !errors.Is(err, dynamo.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
	if _, err := Method(9).Tableau(); !errors.Is(err, dynamo.ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestInfos(t *testing.T) {
	want := []Info{
		{ID: "E1", Stages: 1, Order: 1},
		{ID: "E2", Stages: 2, Order: 2},
		{ID: "SSPRKMK3", Stages: 3, Order: 3},
		{ID: "RKMK4", Stages: 4, Order: 4},
	}
	got := Infos()
	if len(got) != len(want) {
		t.Fatalf("got %d methods, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Stages != want[i].Stages || got[i].Order != want[i].Order {
			t.Errorf("Infos()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTableauxAreConsistent(t *testing.T) {
	for _, m := range allMethods {
		tab, err := m.Tableau()
		if err != nil {
			t.Fatalf("%v: %v", m, err)
		}
		if err := tab.Validate(); err != nil {
			t.Errorf("%v: %v", m, err)
		}
	}

	implicit := Tableau{Name: "implicit", A: [][]float64{{1}}, B: []float64{1}, C: []float64{1}, Order: 1}
	if err := implicit.Validate(); !errors.Is(err, dynamo.ErrUnsupportedOperation) {
		t.Errorf("implicit tableau accepted: %v", err)
	}
	ragged := Tableau{Name: "ragged", A: [][]float64{{0}}, B: []float64{0.5, 0.5}, C: []float64{0, 1}, Order: 2}
	if err := ragged.Validate(); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("ragged tableau accepted: %v", err)
	}
}

// With a constant field every RKMK method reproduces exp(tL)·y0.
func TestConstantFieldIsExact(t *testing.T) {
	l := r3.Vec{X: 0.3, Y: -0.5, Z: 1.1}
	L := lie.Hat(l)
	f := func(float64, dynamo.State) mat.Matrix { return L }
	y0 := dynamo.State{0, 0, 1}
	h, steps := 0.1, 10

	want := mat.NewVecDense(3, nil)
	want.MulVec(lie.Rodrigues(r3.Scale(h*float64(steps), l)), mat.NewVecDense(3, y0.Clone()))

	for _, method := range allMethods {
		t.Run(method.String(), func(t *testing.T) {
			m, err := manifold.New(manifold.Sphere, y0)
			if err != nil {
				t.Fatalf("manifold: %v", err)
			}
			stepper, err := New(method, m)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			y := m.Y()
			for i := 0; i < steps; i++ {
				if y, err = stepper.Step(f, float64(i)*h, y, h); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
				if err := m.SetY(y); err != nil {
					t.Fatalf("step %d left the sphere: %v", i, err)
				}
			}
			if !floats.EqualApprox(y, want.RawVector().Data, 1e-12) {
				t.Errorf("y = %v, want %v", y, want.RawVector().Data)
			}
		})
	}
}

func TestStepOnGeneralSphere(t *testing.T) {
	// so(4) generator rotating the (x0, x3) plane.
	L := mat.NewDense(4, 4, nil)
	L.Set(0, 3, -1)
	L.Set(3, 0, 1)
	f := func(float64, dynamo.State) mat.Matrix { return L }

	m, err := manifold.New(manifold.Sphere, []float64{1, 0, 0, 0})
	if err != nil {
		t.Fatalf("manifold: %v", err)
	}
	stepper, err := New(RKMK4, m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	y, err := stepper.Step(f, 0, m.Y(), 0.5)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := []float64{math.Cos(0.5), 0, 0, math.Sin(0.5)}
	if !floats.EqualApprox(y, want, 1e-12) {
		t.Errorf("y = %v, want %v", y, want)
	}
}

func TestStepPreservesHeavyTopCasimirs(t *testing.T) {
	I := []float64{2, 2, 1}
	f := func(_ float64, y dynamo.State) mat.Matrix {
		return lie.NewVector([]float64{-y[0] / I[0], -y[1] / I[1], -y[2] / I[2], 0, 0, -1})
	}
	y0 := []float64{math.Sin(1.1), 0, math.Cos(1.1), 1, 0.2, 3}
	for _, method := range allMethods {
		t.Run(method.String(), func(t *testing.T) {
			m, err := manifold.New(manifold.HeavyTop, y0)
			if err != nil {
				t.Fatalf("manifold: %v", err)
			}
			stepper, err := New(method, m)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			before := m.Invariant(m.Y())
			y := m.Y()
			for i := 0; i < 50; i++ {
				if y, err = stepper.Step(f, float64(i)*0.01, y, 0.01); err != nil {
					t.Fatalf("step %d: %v", i, err)
				}
			}
			after := m.Invariant(y)
			if !floats.EqualApprox(before, after, 1e-10) {
				t.Errorf("invariants drifted: %v -> %v", before, after)
			}
		})
	}
}

func TestStepPropagatesErrors(t *testing.T) {
	m, err := manifold.New(manifold.Sphere, []float64{0, 0, 1})
	if err != nil {
		t.Fatalf("manifold: %v", err)
	}
	stepper, err := New(ImprovedEulerLie, m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wrongShape := func(float64, dynamo.State) mat.Matrix { return mat.NewDense(2, 2, nil) }
	if _, err := stepper.Step(wrongShape, 0, m.Y(), 0.1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}

	missing := func(float64, dynamo.State) mat.Matrix { return nil }
	if _, err := stepper.Step(missing, 0, m.Y(), 0.1); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	m, err := manifold.New(manifold.Sphere, []float64{0, 0, 1})
	if err != nil {
		t.Fatalf("manifold: %v", err)
	}
	stepper, err := New(RKMK4, m)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	L := lie.Hat(r3.Vec{X: 1, Y: 2, Z: 3})
	f := func(float64, dynamo.State) mat.Matrix { return L }

	y := m.Y()
	if _, err := stepper.Step(f, 0, y, 0.1); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !floats.Equal(y, []float64{0, 0, 1}) {
		t.Errorf("input state mutated: %v", y)
	}
	if !mat.Equal(L, lie.Hat(r3.Vec{X: 1, Y: 2, Z: 3})) {
		t.Errorf("vector field value mutated")
	}
}
