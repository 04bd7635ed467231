package problems

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/lie"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		kind manifold.Kind
	}{
		{"sphere", manifold.Sphere},
		{"heavytop", manifold.HeavyTop},
		{"pendulum", manifold.SphericalPendulum},
	}
	for _, tt := range tests {
		p, err := New(tt.name)
		if err != nil {
			t.Fatalf("New(%q): %v", tt.name, err)
		}
		if p.Name() != tt.name || p.Manifold() != tt.kind {
			t.Errorf("%s: got %s on %v", tt.name, p.Name(), p.Manifold())
		}
		if _, err := manifold.New(p.Manifold(), p.DefaultState()); err != nil {
			t.Errorf("%s: default state rejected: %v", tt.name, err)
		}
	}
	if _, err := New("lorenz"); !errors.Is(err, dynamo.ErrUnknownProblem) {
		t.Errorf("expected ErrUnknownProblem, got %v", err)
	}
	if got := Names(); len(got) != 3 || got[0] != "heavytop" {
		t.Errorf("Names() = %v", got)
	}
}

func TestSphereFieldIsSkew(t *testing.T) {
	s := NewSphereRotation()
	for _, tm := range []float64{0, 0.7, 3} {
		L := s.Generator(tm)
		var sum mat.Dense
		sum.Add(L, L.T())
		if !mat.Equal(&sum, mat.NewDense(3, 3, nil)) {
			t.Errorf("L(%v) is not skew", tm)
		}
		y := dynamo.State{0.6, 0, 0.8}
		w, _ := lie.Vee(L)
		want := []float64{
			w.Y*y[2] - w.Z*y[1],
			w.Z*y[0] - w.X*y[2],
			w.X*y[1] - w.Y*y[0],
		}
		if !floats.EqualApprox(s.Ambient(tm, y), want, 1e-15) {
			t.Errorf("Ambient(%v) = %v, want %v", tm, s.Ambient(tm, y), want)
		}
	}
}

func TestHeavyTop(t *testing.T) {
	h := NewHeavyTop()
	y := h.DefaultState()
	got, err := lie.Coords(h.Field(0, y))
	if err != nil {
		t.Fatalf("Coords: %v", err)
	}
	want := []float64{-math.Sin(1.1) / 2, 0, -math.Cos(1.1), 0, 0, -1}
	if !floats.EqualApprox(got, want, 1e-15) {
		t.Errorf("Field = %v, want %v", got, want)
	}
	wantE := 0.5*(math.Sin(1.1)*math.Sin(1.1)/2+math.Cos(1.1)*math.Cos(1.1)) + 3
	if e := h.Energy(y); math.Abs(e-wantE) > 1e-15 {
		t.Errorf("Energy = %v, want %v", e, wantE)
	}

	if err := h.SetParam("mass", 2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	if h.GetParams()["mass"] != 2 {
		t.Errorf("mass not updated")
	}
	if err := h.SetParam("spin", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
}

func TestPendulumDefaultState(t *testing.T) {
	p := NewSphericalPendulum(3)
	y := p.DefaultState()
	if len(y) != 18 {
		t.Fatalf("len = %d, want 18", len(y))
	}
	for i := 0; i < 3; i++ {
		b := y.Block(i, 6)
		q, w := b[:3], b[3:]
		if math.Abs(q.Norm()-1) > 1e-15 {
			t.Errorf("|q_%d| = %v", i, q.Norm())
		}
		if math.Abs(q.Dot(w)) > 1e-15 {
			t.Errorf("q_%d·ω_%d = %v", i, i, q.Dot(w))
		}
	}
}

func TestPendulumParams(t *testing.T) {
	p := NewSphericalPendulum(2)
	err := Apply(p, map[string]float64{"pendula": 3, "length2": 0.25, "gravity": 1})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	params := p.GetParams()
	if params["pendula"] != 3 || params["length2"] != 0.25 || params["gravity"] != 1 {
		t.Errorf("params = %v", params)
	}
	if err := p.SetParam("length7", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if err := p.SetParam("pendula", 0); err == nil {
		t.Errorf("zero pendula accepted")
	}
	if err := p.SetParam("length", 2); err != nil {
		t.Fatalf("SetParam: %v", err)
	}
	for i, l := range p.Lengths {
		if l != 2 {
			t.Errorf("length%d = %v", i, l)
		}
	}
}

func TestPendulumEnergyIsConserved(t *testing.T) {
	p := NewSphericalPendulum(2)
	m, err := manifold.New(p.Manifold(), p.DefaultState())
	if err != nil {
		t.Fatalf("manifold: %v", err)
	}
	stepper, err := integrators.New(integrators.RKMK4, m)
	if err != nil {
		t.Fatalf("stepper: %v", err)
	}
	e0 := p.Energy(m.Y())
	h := 1e-3
	for i := 0; i < 1000; i++ {
		y, err := stepper.Step(p.Field, float64(i)*h, m.Y(), h)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if err := m.SetY(y); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if drift := math.Abs(p.Energy(m.Y())-e0) / math.Abs(e0); drift > 1e-6 {
		t.Errorf("relative energy drift %v", drift)
	}
}
