package problems

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/manifold"
	"gonum.org/v1/gonum/mat"
)

// Problem is an ODE posed on a homogeneous manifold.
type Problem interface {
	Name() string
	Manifold() manifold.Kind
	// Field returns the Lie algebra element driving the flow at (t, y).
	Field(t float64, y dynamo.State) mat.Matrix
	DefaultState() dynamo.State
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Hamiltonian is implemented by problems with a conserved energy.
type Hamiltonian interface {
	Energy(y dynamo.State) float64
}

var constructors = map[string]func() Problem{
	"sphere":   func() Problem { return NewSphereRotation() },
	"heavytop": func() Problem { return NewHeavyTop() },
	"pendulum": func() Problem { return NewSphericalPendulum(2) },
}

// New returns a problem with default parameters.
func New(name string) (Problem, error) {
	fn, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, dynamo.ErrUnknownProblem)
	}
	return fn(), nil
}

// Names lists the known problems in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply sets every entry of params on p.
func Apply(p Problem, params map[string]float64) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	// Resizing parameters go first so indexed ones refer to the new size.
	sort.Slice(keys, func(i, j int) bool {
		if ri, rj := keys[i] == "pendula", keys[j] == "pendula"; ri != rj {
			return ri
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if err := p.SetParam(k, params[k]); err != nil {
			return err
		}
	}
	return nil
}

func unknownParam(problem, name string) error {
	return fmt.Errorf("%s: %q: %w", problem, name, dynamo.ErrUnknownParam)
}
