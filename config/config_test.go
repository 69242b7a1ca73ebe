package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MozP1/flam-assignment/stage"
)

func TestDecodeDefaults(t *testing.T) {
	c, err := Decode(NewViper())
	require.NoError(t, err)
	require.Equal(t, Default(), c)

	require.Equal(t, 6.0, c.Grid.TMin)
	require.Equal(t, 60.0, c.Grid.TMax)
	require.Equal(t, 200, c.Optimizer.MaxIter)
	require.Equal(t, 15, c.Optimizer.PopSize)
	require.Equal(t, uint64(42), c.Optimizer.Seed)
	require.True(t, c.Optimizer.Polish)

	d := c.DE()
	require.Equal(t, [][2]float64{{0, 50}, {-0.05, 0.05}, {0, 100}}, d.Bounds)
	require.Equal(t, 1e-6, d.Tol)
	require.Equal(t, [2]float64{0.5, 1}, d.Mutation)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curvefit.yaml")
	yaml := `
grid:
  tmin: 0
  tmax: 10
bounds:
  x:
    min: -5
    max: 5
optimizer:
  seed: 7
  maxiter: 50
  polish: false
output:
  dir: out
  compress: true
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	v := NewViper()
	require.NoError(t, ReadFile(v, path))
	c, err := Decode(v)
	require.NoError(t, err)

	require.Equal(t, Grid{TMin: 0, TMax: 10}, c.Grid)
	require.Equal(t, -5.0, c.Bounds.X.Min)
	require.Equal(t, 5.0, c.Bounds.X.Max)
	require.Equal(t, 50.0, c.Bounds.ThetaDeg.Max)
	require.Equal(t, uint64(7), c.Optimizer.Seed)
	require.Equal(t, 50, c.Optimizer.MaxIter)
	require.Equal(t, 15, c.Optimizer.PopSize)
	require.False(t, c.Optimizer.Polish)
	require.Equal(t, "out", c.Output.Dir)
	require.True(t, c.Output.Compress)
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, stage.ErrConfig)

	require.NoError(t, ReadFile(NewViper(), ""))
}

func TestEnvAndExplicitOverrides(t *testing.T) {
	t.Setenv("CURVEFIT_OPTIMIZER_POPSIZE", "20")
	t.Setenv("CURVEFIT_GRID_TMAX", "30")

	v := NewViper()
	v.Set("grid.tmax", 40.0)
	c, err := Decode(v)
	require.NoError(t, err)

	require.Equal(t, 20, c.Optimizer.PopSize)
	require.Equal(t, 40.0, c.Grid.TMax)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"tmin equals tmax":   func(c *Config) { c.Grid.TMax = c.Grid.TMin },
		"tmin above tmax":    func(c *Config) { c.Grid.TMin = 70 },
		"theta inverted":     func(c *Config) { c.Bounds.ThetaDeg.Min, c.Bounds.ThetaDeg.Max = 50, 0 },
		"m inverted":         func(c *Config) { c.Bounds.M.Min = 1 },
		"zero popsize":       func(c *Config) { c.Optimizer.PopSize = 0 },
		"negative maxiter":   func(c *Config) { c.Optimizer.MaxIter = -2 },
		"negative tolerance": func(c *Config) { c.Optimizer.Tol = -1e-3 },
		"zero workers":       func(c *Config) { c.Optimizer.Workers = 0 },
		"empty out dir":      func(c *Config) { c.Output.Dir = "" },
		"plot samples":       func(c *Config) { c.Output.PlotSamples = 1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(&c)
			require.ErrorIs(t, c.Validate(), stage.ErrConfig)
		})
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	v := NewViper()
	v.Set("optimizer.popsize", 0)
	_, err := Decode(v)
	require.ErrorIs(t, err, stage.ErrConfig)
}
