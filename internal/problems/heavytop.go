package problems

import (
	"math"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/lie"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/mat"
)

// HeavyTop is the heavy top in Lie-Poisson form. The state is (mu, beta):
// body angular momentum and the direction of gravity in the body frame.
type HeavyTop struct {
	I1, I2, I3 float64
	Mass       float64
	Gravity    float64
	// Chi is the center of mass in the body frame.
	Chi [3]float64
}

func NewHeavyTop() *HeavyTop {
	return &HeavyTop{I1: 2, I2: 2, I3: 1, Mass: 1, Gravity: 1, Chi: [3]float64{0, 0, 1}}
}

func (h *HeavyTop) Name() string            { return "heavytop" }
func (h *HeavyTop) Manifold() manifold.Kind { return manifold.HeavyTop }

// Field returns (-mu/I, -m g chi) in se(3).
func (h *HeavyTop) Field(_ float64, y dynamo.State) mat.Matrix {
	mg := h.Mass * h.Gravity
	return lie.NewVector([]float64{
		-y[0] / h.I1, -y[1] / h.I2, -y[2] / h.I3,
		-mg * h.Chi[0], -mg * h.Chi[1], -mg * h.Chi[2],
	})
}

func (h *HeavyTop) DefaultState() dynamo.State {
	return dynamo.State{math.Sin(1.1), 0, math.Cos(1.1), 1, 0.2, 3}
}

// Energy is ½ mu·I⁻¹mu + m g beta·chi.
func (h *HeavyTop) Energy(y dynamo.State) float64 {
	ke := 0.5 * (y[0]*y[0]/h.I1 + y[1]*y[1]/h.I2 + y[2]*y[2]/h.I3)
	pe := h.Mass * h.Gravity * (y[3]*h.Chi[0] + y[4]*h.Chi[1] + y[5]*h.Chi[2])
	return ke + pe
}

func (h *HeavyTop) GetParams() map[string]float64 {
	return map[string]float64{
		"I1": h.I1, "I2": h.I2, "I3": h.I3,
		"mass": h.Mass, "gravity": h.Gravity,
		"chi_x": h.Chi[0], "chi_y": h.Chi[1], "chi_z": h.Chi[2],
	}
}

func (h *HeavyTop) SetParam(name string, value float64) error {
	switch name {
	case "I1":
		h.I1 = value
	case "I2":
		h.I2 = value
	case "I3":
		h.I3 = value
	case "mass":
		h.Mass = value
	case "gravity":
		h.Gravity = value
	case "chi_x":
		h.Chi[0] = value
	case "chi_y":
		h.Chi[1] = value
	case "chi_z":
		h.Chi[2] = value
	default:
		return unknownParam(h.Name(), name)
	}
	return nil
}
