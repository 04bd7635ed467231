package sim

import (
	"context"

	kitlog "github.com/go-kit/kit/log"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
)

// Option configures the Simulator behind Solve.
type Option func(*Simulator)

func WithLogger(l kitlog.Logger) Option {
	return func(s *Simulator) { s.SetLogger(l) }
}

func WithMetrics(ms ...Metric) Option {
	return func(s *Simulator) {
		for _, m := range ms {
			s.AddMetric(m)
		}
	}
}

func WithObservers(os ...Observer) Option {
	return func(s *Simulator) {
		for _, o := range os {
			s.AddObserver(o)
		}
	}
}

// Solve integrates y' = f(t, y)·y on the manifold of the given kind from
// tStart to tEnd with step h and returns the trajectory. y0 is any value
// accepted by manifold.ToState.
func Solve(ctx context.Context, f integrators.VectorField, y0 any, tStart, tEnd, h float64,
	kind manifold.Kind, method integrators.Method, opts ...Option) (*Flow, error) {
	res, err := SolveResult(ctx, f, y0, tStart, tEnd, h, kind, method, opts...)
	if err != nil {
		return nil, err
	}
	return res.Flow, nil
}

// SolveResult is Solve returning metric values alongside the flow.
func SolveResult(ctx context.Context, f integrators.VectorField, y0 any, tStart, tEnd, h float64,
	kind manifold.Kind, method integrators.Method, opts ...Option) (*Result, error) {
	cfg := Config{TStart: tStart, TEnd: tEnd, H: h}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	m, err := manifold.New(kind, y0)
	if err != nil {
		return nil, err
	}
	stepper, err := integrators.New(method, m)
	if err != nil {
		return nil, err
	}
	s := New(m, stepper)
	for _, opt := range opts {
		opt(s)
	}
	return s.Run(ctx, f, cfg)
}
