package de

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MozP1/flam-assignment/stage"
)

// shifted sphere with minimum 1 at c.
func sphere(c []float64) func([]float64) float64 {
	return func(x []float64) float64 {
		s := 1.0
		for i := range x {
			d := x[i] - c[i]
			s += d * d
		}
		return s
	}
}

func ackley(x []float64) float64 {
	a := -20 * math.Exp(-0.2*math.Sqrt(0.5*(x[0]*x[0]+x[1]*x[1])))
	b := -math.Exp(0.5 * (math.Cos(2*math.Pi*x[0]) + math.Cos(2*math.Pi*x[1])))
	return a + b + math.E + 20
}

func TestMinimizeSphereConverges(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-5, 5}, {0, 10}, {-1, 1}})
	cfg.Tol = 1e-3
	cfg.MaxIter = 1000
	opt, err := New(cfg)
	require.NoError(t, err)

	c := []float64{1.5, 7, -0.25}
	res, err := opt.Minimize(sphere(c))
	require.NoError(t, err)
	require.Equal(t, Converged, res.Status)
	require.True(t, res.Success())
	require.Less(t, res.Nit, cfg.MaxIter)
	require.InDeltaSlice(t, c, res.X, 0.05)
	require.InDelta(t, 1, res.Fun, 1e-3)
	require.Equal(t, "Optimization terminated successfully.", res.Message)
}

func TestMinimizeMultimodal(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-5, 5}, {-5, 5}})
	cfg.Tol = 1e-8
	cfg.MaxIter = 1000
	opt, err := New(cfg)
	require.NoError(t, err)

	res, err := opt.Minimize(ackley)
	require.NoError(t, err)
	require.True(t, res.Success())
	require.InDeltaSlice(t, []float64{0, 0}, res.X, 1e-4)
	require.Less(t, res.Fun, 1e-3)
}

func TestMinimizeExhausted(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-5, 5}, {-5, 5}, {-5, 5}})
	cfg.MaxIter = 2
	opt, err := New(cfg)
	require.NoError(t, err)

	res, err := opt.Minimize(sphere([]float64{0, 0, 0}))
	require.NoError(t, err)
	require.Equal(t, Exhausted, res.Status)
	require.True(t, res.Success())
	require.Equal(t, 2, res.Nit)
	require.Equal(t, opt.PopulationSize()*3, res.Nfev)
	require.Equal(t, "exhausted", res.Status.String())
}

func TestMinimizeReproducible(t *testing.T) {
	for _, workers := range []int{1, 4} {
		cfg := DefaultConfig([][2]float64{{0, 50}, {-0.05, 0.05}, {0, 100}})
		cfg.MaxIter = 30
		cfg.Workers = workers
		f := sphere([]float64{28, 0.02, 55})

		opt1, err := New(cfg)
		require.NoError(t, err)
		res1, err := opt1.Minimize(f)
		require.NoError(t, err)

		opt2, err := New(cfg)
		require.NoError(t, err)
		res2, err := opt2.Minimize(f)
		require.NoError(t, err)

		require.Equal(t, res1, res2, "workers=%d", workers)

		cfg.Seed++
		opt3, err := New(cfg)
		require.NoError(t, err)
		res3, err := opt3.Minimize(f)
		require.NoError(t, err)
		require.NotEqual(t, res1.X, res3.X, "workers=%d", workers)
	}
}

func TestMinimizeStaysInBounds(t *testing.T) {
	bounds := [][2]float64{{0, 50}, {-0.05, 0.05}, {0, 100}}
	cfg := DefaultConfig(bounds)
	cfg.MaxIter = 20
	opt, err := New(cfg)
	require.NoError(t, err)

	calls := 0
	_, err = opt.Minimize(func(x []float64) float64 {
		calls++
		for i, b := range bounds {
			require.GreaterOrEqual(t, x[i], b[0])
			require.LessOrEqual(t, x[i], b[1])
		}
		// optimum outside the box pulls trials against the edges.
		return math.Abs(x[0]+10) + math.Abs(x[1]-1) + math.Abs(x[2]-200)
	})
	require.NoError(t, err)
	require.Positive(t, calls)
}

func TestMinimizeCallback(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-1, 1}})
	cfg.MaxIter = 7
	cfg.Tol = 1e-12
	var gens []Generation
	cfg.Callback = func(g Generation) { gens = append(gens, g) }
	opt, err := New(cfg)
	require.NoError(t, err)

	res, err := opt.Minimize(sphere([]float64{0.3}))
	require.NoError(t, err)
	require.Len(t, gens, res.Nit)
	for i, g := range gens {
		require.Equal(t, i+1, g.Index)
		if i > 0 {
			require.LessOrEqual(t, g.BestEnergy, gens[i-1].BestEnergy)
			require.Greater(t, g.Nfev, gens[i-1].Nfev)
		}
	}
	require.Equal(t, res.Fun, gens[len(gens)-1].BestEnergy)
}

func TestMinimizePatience(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-1, 1}})
	cfg.Tol = 1
	cfg.MaxIter = 100

	cfg.Patience = 1
	opt, err := New(cfg)
	require.NoError(t, err)
	fast, err := opt.Minimize(sphere([]float64{0}))
	require.NoError(t, err)
	require.Equal(t, Converged, fast.Status)

	cfg.Patience = 5
	opt, err = New(cfg)
	require.NoError(t, err)
	slow, err := opt.Minimize(sphere([]float64{0}))
	require.NoError(t, err)
	require.Equal(t, Converged, slow.Status)
	require.GreaterOrEqual(t, slow.Nit, fast.Nit+4)
}

func TestMinimizeFailures(t *testing.T) {
	opt, err := New(DefaultConfig([][2]float64{{0, 1}, {0, 1}}))
	require.NoError(t, err)

	_, err = opt.Minimize(func([]float64) float64 { return math.NaN() })
	require.ErrorIs(t, err, stage.ErrOptimize)

	_, err = opt.Minimize(func([]float64) float64 { panic("overflow") })
	require.ErrorIs(t, err, stage.ErrOptimize)
}

func TestMinimizeInfiniteRegion(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{-2, 2}})
	cfg.MaxIter = 50
	opt, err := New(cfg)
	require.NoError(t, err)

	res, err := opt.Minimize(func(x []float64) float64 {
		if x[0] < 0 {
			return math.Inf(1)
		}
		return (x[0] - 1) * (x[0] - 1)
	})
	require.NoError(t, err)
	require.InDelta(t, 1, res.X[0], 0.05)
}

func TestConfigValidate(t *testing.T) {
	base := DefaultConfig([][2]float64{{0, 1}})
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"no bounds":      func(c *Config) { c.Bounds = nil },
		"inverted":       func(c *Config) { c.Bounds = [][2]float64{{1, 0}} },
		"nan bound":      func(c *Config) { c.Bounds = [][2]float64{{math.NaN(), 0}} },
		"popsize":        func(c *Config) { c.PopSize = 0 },
		"maxiter":        func(c *Config) { c.MaxIter = -1 },
		"negative tol":   func(c *Config) { c.Tol = -1 },
		"zero tols":      func(c *Config) { c.Tol, c.Atol = 0, 0 },
		"patience":       func(c *Config) { c.Patience = 0 },
		"mutation":       func(c *Config) { c.Mutation = [2]float64{1, 0.5} },
		"recombination":  func(c *Config) { c.Recombination = 1.5 },
		"workers":        func(c *Config) { c.Workers = 0 },
		"mutation range": func(c *Config) { c.Mutation = [2]float64{0.5, 3} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base
			mutate(&c)
			_, err := New(c)
			require.ErrorIs(t, err, stage.ErrConfig)
		})
	}
}

func TestPopulationSize(t *testing.T) {
	cfg := DefaultConfig([][2]float64{{0, 1}})
	cfg.PopSize = 1
	opt, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, 5, opt.PopulationSize())

	opt, err = New(DefaultConfig([][2]float64{{0, 1}, {0, 1}, {0, 1}}))
	require.NoError(t, err)
	require.Equal(t, 45, opt.PopulationSize())
}

func TestMinimizeSurvivorsNeverWorsen(t *testing.T) {
	for _, workers := range []int{1, 3} {
		cfg := DefaultConfig([][2]float64{{-4, 4}, {-4, 4}})
		cfg.MaxIter = 25
		cfg.Tol = 1e-12
		cfg.Workers = workers
		var gens []Generation
		cfg.Callback = func(g Generation) { gens = append(gens, g) }
		opt, err := New(cfg)
		require.NoError(t, err)

		_, err = opt.Minimize(ackley)
		require.NoError(t, err)
		require.NotEmpty(t, gens)
		for i := 1; i < len(gens); i++ {
			require.LessOrEqual(t, gens[i].Mean, gens[i-1].Mean, "workers=%d gen=%d", workers, gens[i].Index)
			require.LessOrEqual(t, gens[i].BestEnergy, gens[i-1].BestEnergy, "workers=%d gen=%d", workers, gens[i].Index)
		}
	}
}
