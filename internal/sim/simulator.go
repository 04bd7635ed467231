package sim

import (
	"context"
	"fmt"
	"math"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
)

// remainderTol is the fraction of h below which the leftover interval after
// the last full step is treated as zero.
const remainderTol = 1e-9

// Simulator drives a stepper over a manifold. The manifold holds the current
// state: every step result goes through SetY and a rejected state ends the run.
type Simulator struct {
	m         manifold.Manifold
	stepper   integrators.Stepper
	metrics   []Metric
	observers []Observer
	logger    kitlog.Logger
}

func New(m manifold.Manifold, stepper integrators.Stepper) *Simulator {
	return &Simulator{
		m:         m,
		stepper:   stepper,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    kitlog.NewNopLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l kitlog.Logger) {
	if l == nil {
		l = kitlog.NewNopLogger()
	}
	s.logger = l
}

// Run integrates f from the manifold's current state over the grid of cfg.
// On cancellation the partial result is returned with the context's error.
func (s *Simulator) Run(ctx context.Context, f integrators.VectorField, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	times, _ := timeGrid(cfg)
	tab := s.stepper.Tableau()
	level.Debug(s.logger).Log("subsys", "sim", "status", "start", "manifold", s.m.Kind(), "method", tab.Name,
		"t_start", cfg.TStart, "t_end", cfg.TEnd, "h", cfg.H, "steps", len(times)-1)

	for _, m := range s.metrics {
		m.Reset()
	}

	y := s.m.Y()
	states := make([]dynamo.State, 1, len(times))
	states[0] = y
	s.notify(0, y, times[0])

	result := &Result{Metrics: make(map[string]float64)}
	var runErr error
	for i := 1; i < len(times); i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		t := times[i-1]
		h := cfg.H
		if i == len(times)-1 {
			// The last step always ends on TEnd, snapped grid point included.
			h = cfg.TEnd - t
		}
		next, err := s.stepper.Step(f, t, y, h)
		if err == nil {
			err = s.m.SetY(next)
		}
		if err != nil {
			level.Error(s.logger).Log("subsys", "sim", "status", "failed", "step", i, "t", t, "err", err)
			return nil, &dynamo.StepError{Step: i, Time: t, Wrapped: err}
		}
		y = s.m.Y()
		states = append(states, y)
		result.Steps++
		s.notify(i, y, times[i])
	}

	flow, err := NewFlow(states, times[:len(states)])
	if err != nil {
		return nil, err
	}
	result.Flow = flow
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if runErr != nil {
		level.Warn(s.logger).Log("subsys", "sim", "status", "cancelled", "steps", result.Steps)
		return result, runErr
	}
	level.Info(s.logger).Log("subsys", "sim", "status", "finished", "manifold", s.m.Kind(), "method", tab.Name,
		"steps", result.Steps, "t", flow.t[len(flow.t)-1])
	return result, nil
}

func (s *Simulator) notify(step int, y dynamo.State, t float64) {
	for _, m := range s.metrics {
		m.Observe(y, t)
	}
	for _, o := range s.observers {
		o.OnStep(step, y, t)
	}
}

func validateConfig(cfg Config) error {
	if !(cfg.H > 0) || math.IsInf(cfg.H, 0) {
		return fmt.Errorf("h = %v: %w", cfg.H, dynamo.ErrInvalidStep)
	}
	if math.IsNaN(cfg.TStart) || math.IsNaN(cfg.TEnd) || math.IsInf(cfg.TStart, 0) || math.IsInf(cfg.TEnd, 0) {
		return fmt.Errorf("interval [%v, %v]: %w", cfg.TStart, cfg.TEnd, dynamo.ErrInvalidInterval)
	}
	if cfg.TEnd < cfg.TStart {
		return fmt.Errorf("interval [%v, %v]: %w", cfg.TStart, cfg.TEnd, dynamo.ErrInvalidInterval)
	}
	return nil
}

// timeGrid returns T[i] = TStart + i·H for the N full steps, followed by TEnd
// when the remainder is not negligible. A negligible remainder snaps the last
// grid point to TEnd. full is N.
func timeGrid(cfg Config) (times []float64, full int) {
	full = int(math.Floor((cfg.TEnd - cfg.TStart) / cfg.H))
	times = make([]float64, full+1, full+2)
	for i := range times {
		times[i] = cfg.TStart + float64(i)*cfg.H
	}
	rem := cfg.TEnd - times[full]
	switch {
	case math.Abs(rem) <= remainderTol*cfg.H:
		times[full] = cfg.TEnd
	case rem > 0:
		times = append(times, cfg.TEnd)
	default:
		// Rounding put the last full step past TEnd; shorten it instead.
		full--
		times[full+1] = cfg.TEnd
	}
	return times, full
}
