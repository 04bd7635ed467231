package problems

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/mat"
)

// SphericalPendulum is N uncoupled spherical pendula. Block i of the state
// is (q_i, ω_i): unit bob direction and angular velocity.
type SphericalPendulum struct {
	Lengths []float64
	Gravity float64
}

func NewSphericalPendulum(n int) *SphericalPendulum {
	lengths := make([]float64, n)
	for i := range lengths {
		lengths[i] = 1 / float64(i+1)
	}
	return &SphericalPendulum{Lengths: lengths, Gravity: 9.81}
}

func (p *SphericalPendulum) Name() string            { return "pendulum" }
func (p *SphericalPendulum) Manifold() manifold.Kind { return manifold.SphericalPendulum }

// Field returns (ω_i, (g/L_i) e3) for every block.
func (p *SphericalPendulum) Field(_ float64, y dynamo.State) mat.Matrix {
	out := make([]float64, len(y))
	for i, l := range p.Lengths {
		if 6*i+6 > len(y) {
			break
		}
		copy(out[6*i:6*i+3], y[6*i+3:6*i+6])
		out[6*i+5] = p.Gravity / l
	}
	return lie.NewVector(out)
}

// DefaultState tilts pendulum i by 0.3(i+1) from the downward vertical with
// an angular velocity orthogonal to q_i.
func (p *SphericalPendulum) DefaultState() dynamo.State {
	y := make(dynamo.State, 0, 6*len(p.Lengths))
	for i := range p.Lengths {
		th := 0.3 * float64(i+1)
		s, c := math.Sin(th), math.Cos(th)
		y = append(y, s, 0, -c, 0.4*c, 0.8, 0.4*s)
	}
	return y
}

// Energy is Σ ½ L_i² |ω_i|² + g L_i q_i,z.
func (p *SphericalPendulum) Energy(y dynamo.State) float64 {
	var e float64
	for i, l := range p.Lengths {
		b := y.Block(i, 6)
		w := b[3:]
		e += 0.5*l*l*w.Dot(w) + p.Gravity*l*b[2]
	}
	return e
}

func (p *SphericalPendulum) GetParams() map[string]float64 {
	params := map[string]float64{
		"gravity": p.Gravity,
		"pendula": float64(len(p.Lengths)),
	}
	for i, l := range p.Lengths {
		params[fmt.Sprintf("length%d", i)] = l
	}
	return params
}

// SetParam accepts gravity, pendula (resizes, new pendula get length 1),
// length (all pendula) and length<i>.
func (p *SphericalPendulum) SetParam(name string, value float64) error {
	switch {
	case name == "gravity":
		p.Gravity = value
	case name == "pendula":
		n := int(value)
		if n < 1 {
			return fmt.Errorf("%s: need at least one pendulum, got %v: %w", p.Name(), value, dynamo.ErrDimensionMismatch)
		}
		for len(p.Lengths) < n {
			p.Lengths = append(p.Lengths, 1)
		}
		p.Lengths = p.Lengths[:n]
	case name == "length":
		for i := range p.Lengths {
			p.Lengths[i] = value
		}
	case strings.HasPrefix(name, "length"):
		i, err := strconv.Atoi(strings.TrimPrefix(name, "length"))
		if err != nil || i < 0 || i >= len(p.Lengths) {
			return unknownParam(p.Name(), name)
		}
		p.Lengths[i] = value
	default:
		return unknownParam(p.Name(), name)
	}
	return nil
}
