// Package config defines the YAML scenario files consumed by the flatgen
// CLI: which system to steer, the boundary conditions, the basis family,
// and optional cost weights and bound constraints.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/flatgen/internal/basis"
)

const (
	DefaultHorizon    = 2.0
	DefaultGridPoints = 2
	DefaultBasisType  = "poly"
)

type Config struct {
	System     string             `yaml:"system"`
	Horizon    float64            `yaml:"horizon"`
	GridPoints int                `yaml:"grid_points"`
	Basis      BasisConfig        `yaml:"basis"`
	Initial    BoundaryConfig     `yaml:"initial"`
	Final      BoundaryConfig     `yaml:"final"`
	Cost       *CostConfig        `yaml:"cost,omitempty"`
	Bounds     []BoundConfig      `yaml:"bounds,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
}

type BasisConfig struct {
	Type string `yaml:"type"`
	// Size zero lets the solver pick the minimal polynomial family.
	Size int `yaml:"size"`
}

type BoundaryConfig struct {
	State []float64 `yaml:"state"`
	Input []float64 `yaml:"input"`
}

// CostConfig describes a quadratic deviation penalty from the final
// operating point with diagonal weights.
type CostConfig struct {
	StateWeights []float64 `yaml:"state_weights"`
	InputWeights []float64 `yaml:"input_weights"`
}

// BoundConfig bounds a linear combination of the stacked (state, input)
// vector at every interior grid point.
type BoundConfig struct {
	Row   []float64 `yaml:"row"`
	Lower float64   `yaml:"lower"`
	Upper float64   `yaml:"upper"`
}

func DefaultConfig() *Config {
	return &Config{
		System:     "double_integrator",
		Horizon:    DefaultHorizon,
		GridPoints: DefaultGridPoints,
		Basis:      BasisConfig{Type: DefaultBasisType},
		Initial:    BoundaryConfig{State: []float64{0, 0}, Input: []float64{0}},
		Final:      BoundaryConfig{State: []float64{1, 0}, Input: []float64{0}},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
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

func (c *Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %g", c.Horizon)
	}
	if c.GridPoints < 2 {
		return fmt.Errorf("need at least 2 grid points, got %d", c.GridPoints)
	}
	if len(c.Initial.State) == 0 || len(c.Final.State) == 0 {
		return fmt.Errorf("initial and final states are required")
	}
	if len(c.Initial.State) != len(c.Final.State) {
		return fmt.Errorf("initial state has %d entries, final has %d", len(c.Initial.State), len(c.Final.State))
	}
	if len(c.Initial.Input) != len(c.Final.Input) {
		return fmt.Errorf("initial input has %d entries, final has %d", len(c.Initial.Input), len(c.Final.Input))
	}
	switch c.Basis.Type {
	case "", "poly", "bezier":
	default:
		return fmt.Errorf("unknown basis type %q (want poly or bezier)", c.Basis.Type)
	}
	return nil
}

// TimeGrid spreads GridPoints evenly over [0, Horizon].
func (c *Config) TimeGrid() []float64 {
	ts := make([]float64, c.GridPoints)
	for i := range ts {
		ts[i] = c.Horizon * float64(i) / float64(c.GridPoints-1)
	}
	return ts
}

// Family builds the configured basis family. A zero size returns nil,
// letting the solver choose its minimal default.
func (c *Config) Family() (basis.Family, error) {
	if c.Basis.Size == 0 {
		return nil, nil
	}
	switch c.Basis.Type {
	case "", "poly":
		return basis.NewPoly(c.Basis.Size), nil
	case "bezier":
		return basis.NewBezier(c.Basis.Size), nil
	default:
		return nil, fmt.Errorf("unknown basis type %q", c.Basis.Type)
	}
}
