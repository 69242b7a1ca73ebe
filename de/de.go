// Package de implements differential evolution, a population-based global
// optimizer for bounded, non-convex objectives.
//
// A run is an explicit state machine: every generation builds trial vectors
// from the population (best1bin), evaluates them, keeps the better of trial
// and parent, then checks for termination. The run ends Converged when the
// spread of population energies stays within tolerance for Patience
// consecutive generations, or Exhausted after MaxIter generations.
package de

import (
	"fmt"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MozP1/flam-assignment/stage"
)

// Status of a finished run.
type Status int

const (
	// Exhausted means MaxIter generations ran without meeting tolerance.
	Exhausted Status = iota
	// Converged means the population energy spread met tolerance.
	Converged
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Generation is a snapshot passed to Config.Callback.
type Generation struct {
	Index      int       // 1-based generation number.
	Best       []float64 // best vector so far, copied.
	BestEnergy float64
	Mean, Std  float64 // population energy mean and standard deviation.
	Nfev       int     // objective evaluations so far.
}

// Result of a finished run.
type Result struct {
	X       []float64 // best vector found.
	Fun     float64   // objective at X.
	Nit     int       // generations run.
	Nfev    int       // objective evaluations.
	Status  Status
	Message string
}

// Success reports whether the run ended in a valid terminal state.
// Both Converged and Exhausted are successful terminations.
func (r *Result) Success() bool {
	return r.Status == Converged || r.Status == Exhausted
}

// Optimizer minimizes an objective over a bounded box.
type Optimizer struct {
	cfg  Config
	dim  int
	npop int
	lo   []float64
	span []float64
}

// New validates cfg and returns an Optimizer.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dim := len(cfg.Bounds)
	o := &Optimizer{
		cfg:  cfg,
		dim:  dim,
		npop: max(cfg.PopSize*dim, 5),
		lo:   make([]float64, dim),
		span: make([]float64, dim),
	}
	o.cfg.Bounds = append([][2]float64(nil), cfg.Bounds...)
	for i, b := range cfg.Bounds {
		o.lo[i] = b[0]
		o.span[i] = b[1] - b[0]
	}

	return o, nil
}

// PopulationSize returns the number of individuals per generation.
func (o *Optimizer) PopulationSize() int {
	return o.npop
}

// run holds the mutable state of one Minimize call.
type run struct {
	f        func([]float64) float64
	rng      *rand.Rand
	pop      [][]float64 // unit-cube coordinates.
	energies []float64
	best     int
	nfev     int
	gen      int
	streak   int // consecutive generations within tolerance.
}

// Minimize searches for the minimum of f. f receives vectors in bound
// coordinates and must not retain them. Non-finite values of f are treated
// as +Inf.
func (o *Optimizer) Minimize(f func([]float64) float64) (*Result, error) {
	r := &run{
		f:   f,
		rng: rand.New(rand.NewPCG(o.cfg.Seed, o.cfg.Seed^0x9e3779b97f4a7c15)),
	}

	r.pop = o.latinHypercube(r.rng)
	r.energies = make([]float64, o.npop)
	if err := o.evaluate(r, r.pop, r.energies); err != nil {
		return nil, err
	}
	r.best = argmin(r.energies)
	if math.IsInf(r.energies[r.best], 1) {
		return nil, fmt.Errorf("objective is not finite anywhere in the initial population: %w", stage.ErrOptimize)
	}

	status := Exhausted
	for r.gen < o.cfg.MaxIter {
		if err := o.step(r); err != nil {
			return nil, err
		}
		r.gen++

		mean, std := stat.PopMeanStdDev(r.energies, nil)
		if std <= o.cfg.Atol+o.cfg.Tol*math.Abs(mean) {
			r.streak++
		} else {
			r.streak = 0
		}
		if o.cfg.Callback != nil {
			o.cfg.Callback(Generation{
				Index:      r.gen,
				Best:       o.scale(r.pop[r.best]),
				BestEnergy: r.energies[r.best],
				Mean:       mean,
				Std:        std,
				Nfev:       r.nfev,
			})
		}
		if r.streak >= o.cfg.Patience {
			status = Converged
			break
		}
	}

	fun := r.energies[r.best]
	if math.IsInf(fun, 0) || math.IsNaN(fun) {
		return nil, fmt.Errorf("best energy is not finite after %d generations: %w", r.gen, stage.ErrOptimize)
	}

	res := &Result{
		X:      o.scale(r.pop[r.best]),
		Fun:    fun,
		Nit:    r.gen,
		Nfev:   r.nfev,
		Status: status,
	}
	switch status {
	case Converged:
		res.Message = "Optimization terminated successfully."
	case Exhausted:
		res.Message = "Maximum number of iterations has been exceeded."
	}

	return res, nil
}

// step runs one generation: generate candidates, evaluate, select survivors.
func (o *Optimizer) step(r *run) error {
	weight := o.cfg.Mutation[0]
	if o.cfg.Mutation[1] > o.cfg.Mutation[0] {
		weight += r.rng.Float64() * (o.cfg.Mutation[1] - o.cfg.Mutation[0])
	}

	if o.cfg.Workers <= 1 {
		energy := make([]float64, 1)
		for c := 0; c < o.npop; c++ {
			trial := o.trial(r, c, weight)
			if err := o.evaluate(r, [][]float64{trial}, energy); err != nil {
				return err
			}
			o.survive(r, c, trial, energy[0])
		}

		return nil
	}

	// Deferred updating: every trial is built from the same parent population.
	trials := make([][]float64, o.npop)
	for c := range trials {
		trials[c] = o.trial(r, c, weight)
	}
	energies := make([]float64, o.npop)
	if err := o.evaluate(r, trials, energies); err != nil {
		return err
	}
	for c := range trials {
		o.survive(r, c, trials[c], energies[c])
	}

	return nil
}

func (o *Optimizer) survive(r *run, c int, trial []float64, energy float64) {
	if energy <= r.energies[c] {
		r.pop[c] = trial
		r.energies[c] = energy
		if energy <= r.energies[r.best] {
			r.best = c
		}
	}
}

// trial builds a best1bin trial vector for candidate c.
func (o *Optimizer) trial(r *run, c int, weight float64) []float64 {
	r0, r1 := o.pickTwo(r.rng, c)

	diff := make([]float64, o.dim)
	floats.SubTo(diff, r.pop[r0], r.pop[r1])
	mutant := make([]float64, o.dim)
	floats.AddScaledTo(mutant, r.pop[r.best], weight, diff)

	trial := append([]float64(nil), r.pop[c]...)
	fill := r.rng.IntN(o.dim)
	for i := 0; i < o.dim; i++ {
		if i == fill || r.rng.Float64() < o.cfg.Recombination {
			trial[i] = mutant[i]
		}
	}
	for i, v := range trial {
		if v < 0 || v > 1 {
			trial[i] = r.rng.Float64()
		}
	}

	return trial
}

// pickTwo returns two distinct population indices other than c.
func (o *Optimizer) pickTwo(rng *rand.Rand, c int) (int, int) {
	idx := rng.Perm(o.npop)
	picked := make([]int, 0, 2)
	for _, i := range idx {
		if i != c {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}

	return picked[0], picked[1]
}

// latinHypercube spreads the initial population so every dimension has one
// sample in each of npop equal segments.
func (o *Optimizer) latinHypercube(rng *rand.Rand) [][]float64 {
	seg := 1 / float64(o.npop)
	pop := make([][]float64, o.npop)
	for i := range pop {
		pop[i] = make([]float64, o.dim)
		for j := range pop[i] {
			pop[i][j] = seg*rng.Float64() + float64(i)*seg
		}
	}
	for j := 0; j < o.dim; j++ {
		rng.Shuffle(o.npop, func(a, b int) {
			pop[a][j], pop[b][j] = pop[b][j], pop[a][j]
		})
	}

	return pop
}

// scale maps a unit-cube vector to bound coordinates, clamped to the box.
func (o *Optimizer) scale(u []float64) []float64 {
	x := make([]float64, o.dim)
	for i := range u {
		x[i] = min(max(o.lo[i]+u[i]*o.span[i], o.cfg.Bounds[i][0]), o.cfg.Bounds[i][1])
	}

	return x
}

// evaluate fills out with the energies of the unit-cube vectors us.
func (o *Optimizer) evaluate(r *run, us [][]float64, out []float64) error {
	r.nfev += len(us)
	if o.cfg.Workers <= 1 || len(us) == 1 {
		for i, u := range us {
			e, err := call(r.f, o.scale(u))
			if err != nil {
				return err
			}
			out[i] = e
		}

		return nil
	}

	var g errgroup.Group
	g.SetLimit(o.cfg.Workers)
	for i, u := range us {
		x := o.scale(u)
		g.Go(func() error {
			e, err := call(r.f, x)
			if err != nil {
				return err
			}
			out[i] = e
			return nil
		})
	}

	return g.Wait()
}

// call evaluates f once, turning panics into errors and non-finite values
// into +Inf.
func call(f func([]float64) float64, x []float64) (e float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("objective panicked at %v: %v: %w", x, p, stage.ErrOptimize)
		}
	}()
	e = f(x)
	if math.IsNaN(e) || math.IsInf(e, 0) {
		e = math.Inf(1)
	}

	return e, nil
}

func argmin(vs []float64) int {
	best := 0
	for i, v := range vs {
		if v < vs[best] {
			best = i
		}
	}

	return best
}
