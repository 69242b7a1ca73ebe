// Package fit fits the curve parameters to observations: it places the
// observations on the time grid, runs differential evolution over the
// parameter box and optionally polishes the winner with Nelder-Mead.
package fit

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/optimize"

	"github.com/MozP1/flam-assignment/config"
	"github.com/MozP1/flam-assignment/curve"
	"github.com/MozP1/flam-assignment/de"
	"github.com/MozP1/flam-assignment/stage"
)

// Result of a fit.
type Result struct {
	Params   curve.Params
	Fun      float64   // objective at Params.
	Nit      int       // generations run by the global search.
	Nfev     int       // objective evaluations, polish included.
	Status   de.Status // terminal state of the global search.
	Message  string
	Polished bool // Params came from the local polish.
}

// Success reports whether the global search ended in a valid terminal state.
func (r *Result) Success() bool {
	return r.Status == de.Converged || r.Status == de.Exhausted
}

// Option configures a Fitter.
type Option func(*Fitter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(f *Fitter) {
		if l != nil {
			f.log = l
		}
	}
}

// WithProgress registers a function called after every generation.
func WithProgress(fn func(de.Generation)) Option {
	return func(f *Fitter) {
		f.progress = fn
	}
}

// Fitter runs fits for one configuration.
type Fitter struct {
	cfg      config.Config
	log      *zap.SugaredLogger
	progress func(de.Generation)
}

// New validates cfg and returns a Fitter.
func New(cfg config.Config, opts ...Option) (*Fitter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := &Fitter{cfg: cfg, log: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Objective places obs on the configured time grid.
func (f *Fitter) Objective(obs []curve.Point) (*curve.Objective, error) {
	grid, err := curve.TimeGrid(f.cfg.Grid.TMin, f.cfg.Grid.TMax, len(obs))
	if err != nil {
		return nil, err
	}

	return curve.NewObjective(grid, obs)
}

// Fit minimizes obj over the configured bounds.
func (f *Fitter) Fit(obj *curve.Objective) (*Result, error) {
	dc := f.cfg.DE()
	dc.Callback = func(g de.Generation) {
		f.log.Debugw("generation", "gen", g.Index, "best", g.BestEnergy, "mean", g.Mean, "std", g.Std)
		if f.progress != nil {
			f.progress(g)
		}
	}
	opt, err := de.New(dc)
	if err != nil {
		return nil, err
	}

	f.log.Infow("starting differential evolution",
		"n", obj.Len(), "population", opt.PopulationSize(), "maxiter", dc.MaxIter, "seed", dc.Seed)
	dres, err := opt.Minimize(obj.Func())
	if err != nil {
		return nil, err
	}
	f.log.Infow("differential evolution finished",
		"status", dres.Status, "nit", dres.Nit, "nfev", dres.Nfev, "L1", dres.Fun)

	res := &Result{
		Params:  curve.FromDegrees(dres.X[0], dres.X[1], dres.X[2]),
		Fun:     dres.Fun,
		Nit:     dres.Nit,
		Nfev:    dres.Nfev,
		Status:  dres.Status,
		Message: dres.Message,
	}
	if !f.cfg.Optimizer.Polish {
		return res, nil
	}

	x, nfev, err := f.polish(obj, dres.X)
	res.Nfev += nfev
	if err != nil {
		return nil, err
	}
	p := curve.FromDegrees(x[0], x[1], x[2])
	if fun := obj.Value(p); f.cfg.Bounds.Contains(x) && fun < res.Fun {
		f.log.Infow("polish improved the fit", "L1", fun, "gain", res.Fun-fun)
		res.Params, res.Fun, res.Polished = p, fun, true
	}

	return res, nil
}

// polish runs Nelder-Mead from x0 in unit coordinates of the search box.
// Points outside the box evaluate to +Inf.
func (f *Fitter) polish(obj *curve.Objective, x0 []float64) ([]float64, int, error) {
	box := f.cfg.Bounds.Box()
	toBox := func(u []float64) []float64 {
		x := make([]float64, len(u))
		for i, b := range box {
			x[i] = b[0] + u[i]*(b[1]-b[0])
		}
		return x
	}
	u0 := make([]float64, len(x0))
	for i, b := range box {
		if span := b[1] - b[0]; span > 0 {
			u0[i] = (x0[i] - b[0]) / span
		}
	}

	value := obj.Func()
	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			for _, v := range u {
				if v < 0 || v > 1 {
					return math.Inf(1)
				}
			}
			return value(toBox(u))
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: 5000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-12,
			Iterations: 200,
		},
	}
	res, err := optimize.Minimize(problem, u0, settings, &optimize.NelderMead{SimplexSize: 0.01})
	if err != nil {
		return nil, 0, fmt.Errorf("polish: %v: %w", err, stage.ErrOptimize)
	}

	return toBox(res.X), res.Stats.FuncEvaluations, nil
}

// Run builds the objective for obs and fits it.
func (f *Fitter) Run(obs []curve.Point) (*curve.Objective, *Result, error) {
	obj, err := f.Objective(obs)
	if err != nil {
		return nil, nil, stage.Wrap(stage.Validate, err)
	}
	res, err := f.Fit(obj)
	if err != nil {
		return nil, nil, stage.Wrap(stage.Optimize, err)
	}

	return obj, res, nil
}
