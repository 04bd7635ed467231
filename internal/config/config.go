package config

import (
	"fmt"
	"os"

	"github.com/san-kum/liesim/internal/dynamo"
	"github.com/san-kum/liesim/internal/integrators"
	"github.com/san-kum/liesim/internal/manifold"
	"github.com/san-kum/liesim/internal/problems"
	"gopkg.in/yaml.v3"
)

const (
	DefaultH      = 0.01
	DefaultTStart = 0.0
	DefaultTEnd   = 5.0
	DefaultMethod = "RKMK4"
)

type Config struct {
	Problem string `yaml:"problem"`
	// Manifold overrides the problem's own manifold when set.
	Manifold     string             `yaml:"manifold,omitempty"`
	Method       string             `yaml:"method"`
	H            float64            `yaml:"h"`
	TStart       float64            `yaml:"t_start"`
	TEnd         float64            `yaml:"t_end"`
	InitialValue []float64          `yaml:"initial_value,omitempty"`
	Params       map[string]float64 `yaml:"params,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Problem: "heavytop",
		Method:  DefaultMethod,
		H:       DefaultH,
		TStart:  DefaultTStart,
		TEnd:    DefaultTEnd,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.InitialValue = append([]float64(nil), c.InitialValue...)
	if c.Params != nil {
		out.Params = make(map[string]float64, len(c.Params))
		for k, v := range c.Params {
			out.Params[k] = v
		}
	}
	return &out
}

// Run is a configuration resolved against the closed sets of problems,
// manifolds and methods.
type Run struct {
	Problem  problems.Problem
	Manifold manifold.Kind
	Method   integrators.Method
	Y0       dynamo.State
	TStart   float64
	TEnd     float64
	H        float64
}

// Resolve validates the configuration and builds the problem it names.
func (c *Config) Resolve() (*Run, error) {
	if !(c.H > 0) {
		return nil, fmt.Errorf("h = %v: %w", c.H, dynamo.ErrInvalidStep)
	}
	if c.TEnd < c.TStart {
		return nil, fmt.Errorf("interval [%v, %v]: %w", c.TStart, c.TEnd, dynamo.ErrInvalidInterval)
	}
	p, err := problems.New(c.Problem)
	if err != nil {
		return nil, err
	}
	if err := problems.Apply(p, c.Params); err != nil {
		return nil, err
	}
	kind := p.Manifold()
	if c.Manifold != "" {
		if kind, err = manifold.ParseKind(c.Manifold); err != nil {
			return nil, err
		}
	}
	method, err := integrators.ParseMethod(c.Method)
	if err != nil {
		return nil, err
	}
	y0 := dynamo.State(c.InitialValue).Clone()
	if len(y0) == 0 {
		y0 = p.DefaultState()
	}
	return &Run{
		Problem:  p,
		Manifold: kind,
		Method:   method,
		Y0:       y0,
		TStart:   c.TStart,
		TEnd:     c.TEnd,
		H:        c.H,
	}, nil
}

// Validate reports whether Resolve would succeed.
func (c *Config) Validate() error {
	_, err := c.Resolve()
	return err
}
