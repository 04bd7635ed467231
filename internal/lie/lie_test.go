package lie

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/liesim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

func randomVec(rng *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = rng.Float64()
	}
	return v
}

func TestHatIsCrossProduct(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		x, y := toR3(randomVec(rng, 3)), toR3(randomVec(rng, 3))
		got := mulVec3(Hat(x), y)
		want := r3.Cross(x, y)
		if got != want {
			t.Fatalf("hat(x)·y = %v, x × y = %v", got, want)
		}
	}
}

func TestSkewRejectsWrongLength(t *testing.T) {
	for _, n := range []int{0, 2, 4} {
		if _, err := Skew(make([]float64, n)); !errors.Is(err, dynamo.ErrDimensionMismatch) {
			t.Errorf("Skew(len %d): expected ErrDimensionMismatch, got %v", n, err)
		}
	}
	m, err := Skew([]float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Skew: %v", err)
	}
	v, err := Vee(m)
	if err != nil {
		t.Fatalf("Vee: %v", err)
	}
	if v != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("Vee(Skew(v)) = %v", v)
	}
}

func TestRodriguesZeroIsIdentity(t *testing.T) {
	g, err := NewSO3Algebra().Exp(NewVector([]float64{0, 0, 0}))
	if err != nil {
		t.Fatalf("Exp: %v", err)
	}
	R := g.(Matrix).M
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if R.At(i, j) != want {
				t.Fatalf("exp(0)[%d,%d] = %v, want %v", i, j, R.At(i, j), want)
			}
		}
	}
}

func TestRodriguesIsOrthogonal(t *testing.T) {
	tests := []struct {
		name string
		y    r3.Vec
	}{
		{"unit", r3.Vec{X: 0, Y: 0, Z: 1}},
		{"large", r3.Vec{X: 2, Y: -1, Z: 3}},
		{"tiny", r3.Vec{X: 1e-7, Y: 2e-7, Z: 0}},
		{"pi", r3.Vec{X: math.Pi, Y: 0, Z: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			R := Rodrigues(tt.y)
			var RtR mat.Dense
			RtR.Mul(R.T(), R)
			if !mat.EqualApprox(&RtR, eye(3), 1e-13) {
				t.Errorf("RᵀR != I:\n%v", mat.Formatted(&RtR))
			}
			if d := mat.Det(R); math.Abs(d-1) > 1e-13 {
				t.Errorf("det R = %v", d)
			}
		})
	}
}

func TestRodriguesMatchesMatrixExponential(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	general := NewGeneralAlgebra(3)
	for i := 0; i < 10; i++ {
		y := toR3(randomVec(rng, 3))
		g, err := general.Exp(Hat(y))
		if err != nil {
			t.Fatalf("Exp: %v", err)
		}
		if !mat.EqualApprox(g.(Matrix).M, Rodrigues(y), 1e-12) {
			t.Errorf("Rodrigues(%v) differs from expm", y)
		}
	}
}

func TestSO3DexpinvZeroIdentities(t *testing.T) {
	so3 := NewSO3Algebra()
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 10; i++ {
		w := randomVec(rng, 3)

		got, err := so3.Dexpinv(so3.Zero(), Hat(toR3(w)), 4)
		if err != nil {
			t.Fatalf("Dexpinv(0, v): %v", err)
		}
		gc, _ := Coords(got)
		if !floats.Equal(gc, w) {
			t.Errorf("dexpinv(0, v) = %v, want %v", gc, w)
		}

		got, err = so3.Dexpinv(NewVector(w), mat.NewDense(3, 3, nil), 4)
		if err != nil {
			t.Fatalf("Dexpinv(v, 0): %v", err)
		}
		gc, _ = Coords(got)
		if !floats.Equal(gc, []float64{0, 0, 0}) {
			t.Errorf("dexpinv(v, 0) = %v, want 0", gc)
		}
	}
}

func TestSO3DexpinvAgreesWithSeries(t *testing.T) {
	so3 := NewSO3Algebra()
	general := NewGeneralAlgebra(3)
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 10; i++ {
		u := r3.Scale(1e-2, toR3(randomVec(rng, 3)))
		v := Hat(toR3(randomVec(rng, 3)))

		closed, err := so3.Dexpinv(NewVector(fromR3(u)), v, 4)
		if err != nil {
			t.Fatalf("closed form: %v", err)
		}
		series, err := general.Dexpinv(Hat(u), v, 4)
		if err != nil {
			t.Fatalf("series: %v", err)
		}
		cc, _ := Coords(closed)
		if !mat.EqualApprox(Hat(toR3(cc)), series, 1e-9) {
			t.Errorf("closed form %v disagrees with BCH series", cc)
		}
	}
}

func TestSO3DexpinvCoefficientIsContinuous(t *testing.T) {
	below := dexpinvCoeff(dexpinvSeriesAngle * (1 - 1e-12))
	above := dexpinvCoeff(dexpinvSeriesAngle)
	if math.Abs(below-above) > 1e-10 {
		t.Errorf("coefficient jumps at series threshold: %v vs %v", below, above)
	}
	if got := dexpinvCoeff(0); got != 1.0/12 {
		t.Errorf("dexpinvCoeff(0) = %v, want 1/12", got)
	}
}

func TestSE3DexpinvZeroIdentities(t *testing.T) {
	se3 := NewSE3Algebra()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 10; i++ {
		v := randomVec(rng, 6)

		got, err := se3.Dexpinv(se3.Zero(), NewVector(v), 4)
		if err != nil {
			t.Fatalf("Dexpinv(0, v): %v", err)
		}
		gc, _ := Coords(got)
		if !floats.Equal(gc, v) {
			t.Errorf("dexpinv(0, v) = %v, want %v", gc, v)
		}

		got, err = se3.Dexpinv(NewVector(v), se3.Zero(), 4)
		if err != nil {
			t.Fatalf("Dexpinv(v, 0): %v", err)
		}
		gc, _ = Coords(got)
		if !floats.Equal(gc, make([]float64, 6)) {
			t.Errorf("dexpinv(v, 0) = %v, want 0", gc)
		}
	}
}

func TestSE3DexpinvRegression(t *testing.T) {
	u := []float64{0.89120736, 0.0, 0.45359612, 1.0, 0.2, 3.0}
	v := []float64{0.98688917, 0.62018318, 0.66178247, 0.67912063, 0.43851834, 0.8804615}
	want := []float64{
		1.133009950431,
		0.638687002977,
		0.374690254641,
		1.618548639942,
		-0.730601007173,
		0.603188282585,
	}
	got, err := NewSE3Algebra().Dexpinv(NewVector(u), NewVector(v), 4)
	if err != nil {
		t.Fatalf("Dexpinv: %v", err)
	}
	gc, _ := Coords(got)
	if !floats.EqualApprox(gc, want, 1e-10) {
		t.Errorf("dexpinv(u, v) = %v, want %v", gc, want)
	}
}

func TestSE3CouplingCoefficientIsContinuous(t *testing.T) {
	below := couplingCoeff(dexpinvSeriesAngle*(1-1e-12), 2)
	above := couplingCoeff(dexpinvSeriesAngle, 2)
	if math.Abs(below-above) > 1e-10 {
		t.Errorf("coefficient jumps at series threshold: %v vs %v", below, above)
	}
}

func TestSE3ExpZeroRotation(t *testing.T) {
	g, err := NewSE3Algebra().Exp(NewVector([]float64{0, 0, 0, 1, 2, 3}))
	if err != nil {
		t.Fatalf("Exp: %v", err)
	}
	rm := g.(RigidMotion)
	if !mat.Equal(rm.R, eye(3)) {
		t.Errorf("rotation part not identity")
	}
	if rm.P != (r3.Vec{X: 1, Y: 2, Z: 3}) {
		t.Errorf("translation = %v, want (1,2,3)", rm.P)
	}
}

func TestSE3ActionIsGroupAction(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	se3 := NewSE3Algebra()
	var group SE3Group
	for i := 0; i < 10; i++ {
		g1, _ := se3.Exp(NewVector(randomVec(rng, 6)))
		g2, _ := se3.Exp(NewVector(randomVec(rng, 6)))
		u := dynamo.State(randomVec(rng, 6))

		inner, err := group.Action(g2, u)
		if err != nil {
			t.Fatalf("Action: %v", err)
		}
		twice, err := group.Action(g1, inner)
		if err != nil {
			t.Fatalf("Action: %v", err)
		}
		once, err := group.Action(compose(g1.(RigidMotion), g2.(RigidMotion)), u)
		if err != nil {
			t.Fatalf("Action: %v", err)
		}
		if !floats.EqualApprox(twice, once, 1e-12) {
			t.Errorf("g1·(g2·u) = %v, (g1g2)·u = %v", twice, once)
		}
		if math.Abs(floats.Norm(once[3:], 2)-floats.Norm(u[3:], 2)) > 1e-12 {
			t.Errorf("action changed |u2|")
		}
	}

	id, _ := se3.Exp(se3.Zero())
	u := dynamo.State{1, 2, 3, 4, 5, 6}
	got, err := group.Action(id, u)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	if !floats.Equal(got, u) {
		t.Errorf("identity action changed u: %v", got)
	}
}

func TestStackedAction(t *testing.T) {
	var group StackedSE3Group
	rot := RigidMotion{R: Rodrigues(r3.Vec{Z: math.Pi / 2}), P: r3.Vec{X: 1}}
	id := RigidMotion{R: eye(3), P: r3.Vec{}}
	u := dynamo.State{1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0}

	got, err := group.Action(RigidMotions{rot, id}, u)
	if err != nil {
		t.Fatalf("Action: %v", err)
	}
	// Rq = e2, Rω = -e1, p × Rq = e1 × e2 = e3.
	want := []float64{0, 1, 0, -1, 0, 1, 0, 0, 1, 1, 0, 0}
	if !floats.EqualApprox(got, want, 1e-15) {
		t.Errorf("stacked action = %v, want %v", got, want)
	}

	if _, err := group.Action(rot, u[:6]); !errors.Is(err, dynamo.ErrGroupElementType) {
		t.Errorf("expected ErrGroupElementType for non-tuple element, got %v", err)
	}
	if _, err := group.Action(RigidMotions{rot}, u); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestStackedAlgebraMatchesBlocks(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	u, v := randomVec(rng, 12), randomVec(rng, 12)
	stacked := NewStackedSE3Algebra(2)
	got, err := stacked.Dexpinv(NewVector(u), NewVector(v), 4)
	if err != nil {
		t.Fatalf("Dexpinv: %v", err)
	}
	gc, _ := Coords(got)
	want := append(dexpinvSE3(u[:6], v[:6]), dexpinvSE3(u[6:], v[6:])...)
	if !floats.Equal(gc, want) {
		t.Errorf("stacked dexpinv = %v, want %v", gc, want)
	}
	if _, err := stacked.Exp(NewVector(u[:6])); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSOActionErrors(t *testing.T) {
	var group SOGroup
	if _, err := group.Action(RigidMotion{R: eye(3)}, dynamo.State{1, 0, 0}); !errors.Is(err, dynamo.ErrGroupElementType) {
		t.Errorf("expected ErrGroupElementType, got %v", err)
	}
	if _, err := group.Action(Matrix{M: eye(3)}, dynamo.State{1, 0}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestGeneralDexpinvOrder(t *testing.T) {
	general := NewGeneralAlgebra(3)
	u := Hat(r3.Vec{X: 0.1, Y: 0.2, Z: 0.3})
	v := Hat(r3.Vec{X: 1, Y: -1, Z: 0.5})

	for _, order := range []int{6, 7, 10} {
		got, err := general.Dexpinv(u, v, order)
		if !errors.Is(err, dynamo.ErrUnsupportedOrder) {
			t.Errorf("order %d: expected ErrUnsupportedOrder, got %v", order, err)
		}
		if got != nil {
			t.Errorf("order %d: expected no value", order)
		}
	}

	first, err := general.Dexpinv(u, v, 1)
	if err != nil {
		t.Fatalf("order 1: %v", err)
	}
	if !mat.Equal(first, v) {
		t.Errorf("order 1 should return v unchanged")
	}

	vCopy := mat.DenseCopyOf(v)
	if _, err := general.Dexpinv(u, v, 4); err != nil {
		t.Fatalf("order 4: %v", err)
	}
	if !mat.Equal(v, vCopy) {
		t.Errorf("Dexpinv mutated its argument")
	}
}

func TestCommutator(t *testing.T) {
	general := NewGeneralAlgebra(3)
	x, y := r3.Vec{X: 1, Y: 2, Z: 3}, r3.Vec{X: -1, Y: 0.5, Z: 2}
	c, err := general.Commutator(Hat(x), Hat(y))
	if err != nil {
		t.Fatalf("Commutator: %v", err)
	}
	// [x̂, ŷ] = (x × y)^
	if !mat.EqualApprox(c, Hat(r3.Cross(x, y)), 1e-14) {
		t.Errorf("[x̂, ŷ] != (x × y)^")
	}

	if _, err := general.Commutator(mat.NewDense(2, 3, nil), mat.NewDense(2, 3, nil)); !errors.Is(err, dynamo.ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation for non-square, got %v", err)
	}
	if _, err := general.Commutator(mat.NewDense(3, 3, nil), mat.NewDense(2, 2, nil)); !errors.Is(err, dynamo.ErrUnsupportedOperation) {
		t.Errorf("expected ErrUnsupportedOperation for mismatched shapes, got %v", err)
	}
}

func TestCombine(t *testing.T) {
	a := NewVector([]float64{1, 2, 3})
	b := NewVector([]float64{0, 1, 0})
	got, err := Combine([]float64{2, -1}, []mat.Matrix{a, b})
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	gc, _ := Coords(got)
	if !floats.Equal(gc, []float64{2, 3, 6}) {
		t.Errorf("Combine = %v", gc)
	}
	if _, err := Combine([]float64{1, 1}, []mat.Matrix{a, mat.NewDense(3, 3, nil)}); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func eye(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func compose(g1, g2 RigidMotion) RigidMotion {
	var R mat.Dense
	R.Mul(g1.R, g2.R)
	return RigidMotion{R: &R, P: r3.Add(mulVec3(g1.R, g2.P), g1.P)}
}
