package automation

import (
	"context"
	"fmt"
	"math"
	"os"

	kitlog "github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/san-kum/liesim/internal/config"
	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/manifold"
	"github.com/san-kum/liesim/internal/metrics"
	"github.com/san-kum/liesim/internal/problems"
	"github.com/san-kum/liesim/internal/sim"
	"github.com/san-kum/liesim/internal/storage"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// StabilityThreshold bounds every state component of a healthy run.
const StabilityThreshold = 1e6

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run of a scenario. SaveAs names the stored run; steps without
// it are not stored.
type Step struct {
	config.Config `yaml:",inline"`
	SaveAs        string `yaml:"save_as,omitempty"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i := range scenario.Steps {
		scenario.Steps[i].applyDefaults()
	}
	return &scenario, nil
}

// applyDefaults fills the fields a step may leave out.
func (s *Step) applyDefaults() {
	if s.Method == "" {
		s.Method = config.DefaultMethod
	}
	if s.H == 0 {
		s.H = config.DefaultH
	}
	if s.TStart == 0 && s.TEnd == 0 {
		s.TEnd = config.DefaultTEnd
	}
}

// Execution is a resolved configuration and the outcome of solving it.
type Execution struct {
	Run       *config.Run
	Result    *sim.Result
	MinEnergy float64
	MaxEnergy float64
}

// Metadata describes the execution for storage.
func (e *Execution) Metadata() storage.RunMetadata {
	return storage.RunMetadata{
		Problem:  e.Run.Problem.Name(),
		Manifold: e.Run.Manifold.String(),
		Method:   e.Run.Method.String(),
		H:        e.Run.H,
		TStart:   e.Run.TStart,
		TEnd:     e.Run.TEnd,
		Params:   e.Run.Problem.GetParams(),
		Metrics:  e.Result.Metrics,
	}
}

// Execute resolves cfg and solves it with the invariant, energy and
// stability metrics attached. Energy is tracked only when the problem is
// Hamiltonian and runs on its own manifold; otherwise both bounds are NaN.
func Execute(ctx context.Context, cfg *config.Config, logger kitlog.Logger) (*Execution, error) {
	run, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}

	exec := &Execution{Run: run, MinEnergy: math.NaN(), MaxEnergy: math.NaN()}
	opts := []sim.Option{sim.WithLogger(logger)}
	if m, err := manifold.New(run.Manifold, run.Y0); err == nil {
		opts = append(opts, sim.WithMetrics(metrics.NewNormDrift(m)))
	}
	if ham, ok := run.Problem.(problems.Hamiltonian); ok && run.Manifold == run.Problem.Manifold() {
		exec.MinEnergy, exec.MaxEnergy = math.Inf(1), math.Inf(-1)
		opts = append(opts,
			sim.WithMetrics(metrics.NewEnergyDrift(ham)),
			sim.WithObservers(sim.ObserverFunc(func(_ int, y dynamo.State, _ float64) {
				e := ham.Energy(y)
				exec.MinEnergy = math.Min(exec.MinEnergy, e)
				exec.MaxEnergy = math.Max(exec.MaxEnergy, e)
			})),
		)
	}
	opts = append(opts, sim.WithMetrics(metrics.NewStability(StabilityThreshold)))

	exec.Result, err = sim.SolveResult(ctx, run.Problem.Field, run.Y0, run.TStart, run.TEnd, run.H, run.Manifold, run.Method, opts...)
	if err != nil {
		return nil, err
	}
	return exec, nil
}

type StepResult struct {
	Name      string
	RunID     string
	Execution *Execution
}

// Runner executes scenarios and sweeps. A nil Store skips storage.
type Runner struct {
	Store  *storage.Store
	Logger kitlog.Logger
}

func (r *Runner) logger() kitlog.Logger {
	if r.Logger == nil {
		return kitlog.NewNopLogger()
	}
	return r.Logger
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	logger := kitlog.With(r.logger(), "subsys", "automation", "scenario", scenario.Name)
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.SaveAs
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		level.Info(logger).Log("status", "running", "step", i+1, "of", len(scenario.Steps), "problem", step.Problem)

		exec, err := Execute(ctx, &step.Config, r.Logger)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		res := StepResult{Name: name, Execution: exec}

		if r.Store != nil && step.SaveAs != "" {
			meta := exec.Metadata()
			meta.ID = step.SaveAs
			if res.RunID, err = r.Store.Save(meta, exec.Result.Flow); err != nil {
				return results, fmt.Errorf("step %d (%s): save: %w", i+1, name, err)
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// ParameterSweep solves Base once per value of Param, evenly spaced over
// [Min, Max].
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

type SweepResult struct {
	Value     float64
	Final     dynamo.State
	MinEnergy float64
	MaxEnergy float64
	Metrics   map[string]float64
}

func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.Steps < 1 {
		return nil, fmt.Errorf("sweep of %d steps: %w", sweep.Steps, dynamo.ErrDimensionMismatch)
	}
	values := []float64{sweep.Min}
	if sweep.Steps > 1 {
		values = floats.Span(make([]float64, sweep.Steps), sweep.Min, sweep.Max)
	}
	logger := kitlog.With(r.logger(), "subsys", "automation", "sweep", sweep.Param)

	results := make([]SweepResult, 0, len(values))
	for i, v := range values {
		cfg := sweep.Base.Clone()
		if cfg.Params == nil {
			cfg.Params = make(map[string]float64)
		}
		cfg.Params[sweep.Param] = v

		exec, err := Execute(ctx, cfg, r.Logger)
		if err != nil {
			return results, fmt.Errorf("%s = %v: %w", sweep.Param, v, err)
		}
		results = append(results, SweepResult{
			Value:     v,
			Final:     exec.Result.Flow.Final(),
			MinEnergy: exec.MinEnergy,
			MaxEnergy: exec.MaxEnergy,
			Metrics:   exec.Result.Metrics,
		})
		level.Debug(logger).Log("step", i+1, "of", len(values), "value", v)
	}
	return results, nil
}
