package curve

import (
	"fmt"
	"math"

	"github.com/MozP1/flam-assignment/stage"
)

// Residual is the per-observation contribution to the objective.
type Residual struct {
	T     float64
	XObs  float64
	YObs  float64
	XPred float64
	YPred float64
	L1    float64 // |XObs-XPred| + |YObs-YPred|
}

// Objective is the total L1 distance between observations and the curve,
// with observation i placed at grid[i].
type Objective struct {
	grid []float64
	obs  []Point
}

// NewObjective pairs a time grid with observations. Lengths must match and
// be non-zero.
func NewObjective(grid []float64, obs []Point) (*Objective, error) {
	if len(obs) == 0 {
		return nil, fmt.Errorf("no observations: %w", stage.ErrInput)
	}
	if len(grid) != len(obs) {
		return nil, fmt.Errorf("time grid has %d points but there are %d observations: %w",
			len(grid), len(obs), stage.ErrInput)
	}

	return &Objective{grid: grid, obs: obs}, nil
}

// Len returns the number of observations.
func (o *Objective) Len() int {
	return len(o.obs)
}

// Grid returns the time grid.
func (o *Objective) Grid() []float64 {
	return o.grid
}

// Observations returns the observed points.
func (o *Objective) Observations() []Point {
	return o.obs
}

func (o *Objective) row(e Evaluator, i int) (Point, float64) {
	q := e.At(o.grid[i])
	return q, math.Abs(o.obs[i].X-q.X) + math.Abs(o.obs[i].Y-q.Y)
}

// Value returns the objective for p.
func (o *Objective) Value(p Params) float64 {
	e := NewEvaluator(p)
	var sum float64
	for i := range o.obs {
		_, l1 := o.row(e, i)
		sum += l1
	}

	return sum
}

// Residuals returns the per-row table for p. Summing L1 in order gives
// exactly Value(p).
func (o *Objective) Residuals(p Params) []Residual {
	e := NewEvaluator(p)
	rs := make([]Residual, len(o.obs))
	for i := range o.obs {
		q, l1 := o.row(e, i)
		rs[i] = Residual{
			T:     o.grid[i],
			XObs:  o.obs[i].X,
			YObs:  o.obs[i].Y,
			XPred: q.X,
			YPred: q.Y,
			L1:    l1,
		}
	}

	return rs
}

// Func adapts the objective to the search vector [θ°, M, X].
func (o *Objective) Func() func(v []float64) float64 {
	return func(v []float64) float64 {
		return o.Value(FromDegrees(v[0], v[1], v[2]))
	}
}

// SumL1 adds up residuals in order.
func SumL1(rs []Residual) float64 {
	var sum float64
	for _, r := range rs {
		sum += r.L1
	}

	return sum
}
