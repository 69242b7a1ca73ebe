// Package curve holds the parametric curve model fitted by curvefit:
//
//	x(t) = t·cos(θ) − e^(M·|t|)·sin(0.3t)·sin(θ) + X
//	y(t) = 42 + t·sin(θ) + e^(M·|t|)·sin(0.3t)·cos(θ)
//
// together with the time grid the observations are placed on and the L1
// objective minimized by the optimizer.
package curve

import (
	"math"
)

// YOffset is the constant vertical offset of the curve.
const YOffset = 42.0

// Frequency of the oscillating term sin(0.3t).
const Frequency = 0.3

// Point is an (x, y) pair, observed or predicted.
type Point struct {
	X, Y float64
}

// Params is a candidate parameter vector. Theta is in radians.
type Params struct {
	Theta float64 // rotation, radians.
	M     float64 // exponential growth rate of the oscillation.
	X     float64 // horizontal shift.
}

// FromDegrees builds Params from a search vector with theta in degrees.
func FromDegrees(thetaDeg, m, x float64) Params {
	return Params{Theta: thetaDeg * math.Pi / 180, M: m, X: x}
}

// ThetaDeg returns theta in degrees.
func (p Params) ThetaDeg() float64 {
	return p.Theta * 180 / math.Pi
}

// Vector returns the search vector [θ°, M, X].
func (p Params) Vector() []float64 {
	return []float64{p.ThetaDeg(), p.M, p.X}
}

// Evaluator evaluates the curve for one parameter vector.
// sin θ and cos θ are computed once at construction.
type Evaluator struct {
	p        Params
	sin, cos float64
}

// NewEvaluator returns an Evaluator for p.
func NewEvaluator(p Params) Evaluator {
	s, c := math.Sincos(p.Theta)
	return Evaluator{p: p, sin: s, cos: c}
}

// At returns the predicted point at time t. t may be of either sign.
func (e Evaluator) At(t float64) Point {
	// Explicit conversions stop the compiler from fusing into FMA, so the
	// result is bit-identical on every platform.
	w := float64(math.Exp(e.p.M*math.Abs(t)) * math.Sin(Frequency*t))
	x := float64(t*e.cos) - float64(w*e.sin) + e.p.X
	y := YOffset + float64(t*e.sin) + float64(w*e.cos)
	return Point{X: x, Y: y}
}

// Eval returns the predicted point at time t for p.
func Eval(t float64, p Params) Point {
	return NewEvaluator(p).At(t)
}

// Sample evaluates the curve at n evenly spaced times over [lower, upper].
func Sample(p Params, lower, upper float64, n int) ([]Point, error) {
	ts, err := TimeGrid(lower, upper, n)
	if err != nil {
		return nil, err
	}
	e := NewEvaluator(p)
	pts := make([]Point, len(ts))
	for i, t := range ts {
		pts[i] = e.At(t)
	}

	return pts, nil
}
