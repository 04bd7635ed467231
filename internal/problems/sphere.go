package problems

import (
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/mat"
)

// SphereRotation is y' = L(t)·y on S² with
//
//	L(t) = [[0, t, -a cos t], [-t, 0, b t], [a cos t, -b t, 0]]
type SphereRotation struct {
	A float64
	B float64
}

func NewSphereRotation() *SphereRotation {
	return &SphereRotation{A: 0.4, B: 0.1}
}

func (s *SphereRotation) Name() string            { return "sphere" }
func (s *SphereRotation) Manifold() manifold.Kind { return manifold.Sphere }

func (s *SphereRotation) Generator(t float64) *mat.Dense {
	c := s.A * math.Cos(t)
	return mat.NewDense(3, 3, []float64{
		0, t, -c,
		-t, 0, s.B * t,
		c, -s.B * t, 0,
	})
}

func (s *SphereRotation) Field(t float64, _ dynamo.State) mat.Matrix {
	return s.Generator(t)
}

// Ambient is the same equation written in R³, for classical reference solvers.
func (s *SphereRotation) Ambient(t float64, y dynamo.State) dynamo.State {
	var out mat.VecDense
	out.MulVec(s.Generator(t), mat.NewVecDense(len(y), y.Clone()))
	return dynamo.State(out.RawVector().Data)
}

func (s *SphereRotation) DefaultState() dynamo.State {
	return dynamo.State{0, 0, 1}
}

func (s *SphereRotation) GetParams() map[string]float64 {
	return map[string]float64{"a": s.A, "b": s.B}
}

func (s *SphereRotation) SetParam(name string, value float64) error {
	switch name {
	case "a":
		s.A = value
	case "b":
		s.B = value
	default:
		return unknownParam(s.Name(), name)
	}
	return nil
}
