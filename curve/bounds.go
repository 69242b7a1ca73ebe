package curve

import (
	"fmt"
	"math"

	"github.com/MozP1/flam-assignment/stage"
)

// Interval is a closed range [Min, Max].
type Interval struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Contains reports whether v lies in the interval.
func (iv Interval) Contains(v float64) bool {
	return v >= iv.Min && v <= iv.Max
}

func (iv Interval) validate(name string) error {
	if math.IsNaN(iv.Min) || math.IsNaN(iv.Max) || math.IsInf(iv.Min, 0) || math.IsInf(iv.Max, 0) {
		return fmt.Errorf("%s bounds must be finite, got [%g, %g]: %w", name, iv.Min, iv.Max, stage.ErrConfig)
	}
	if iv.Min > iv.Max {
		return fmt.Errorf("%s bounds are inverted, min %g > max %g: %w", name, iv.Min, iv.Max, stage.ErrConfig)
	}

	return nil
}

// Bounds is the search box. Theta is in degrees.
type Bounds struct {
	ThetaDeg Interval `json:"theta_deg" mapstructure:"theta_deg"`
	M        Interval `json:"m" mapstructure:"m"`
	X        Interval `json:"x" mapstructure:"x"`
}

// DefaultBounds returns θ ∈ [0, 50]°, M ∈ [-0.05, 0.05], X ∈ [0, 100].
func DefaultBounds() Bounds {
	return Bounds{
		ThetaDeg: Interval{Min: 0, Max: 50},
		M:        Interval{Min: -0.05, Max: 0.05},
		X:        Interval{Min: 0, Max: 100},
	}
}

// Validate checks every interval is finite and ordered.
func (b Bounds) Validate() error {
	if err := b.ThetaDeg.validate("theta"); err != nil {
		return err
	}
	if err := b.M.validate("M"); err != nil {
		return err
	}

	return b.X.validate("X")
}

// Box returns the bounds as optimizer intervals, in search-vector order.
func (b Bounds) Box() [][2]float64 {
	return [][2]float64{
		{b.ThetaDeg.Min, b.ThetaDeg.Max},
		{b.M.Min, b.M.Max},
		{b.X.Min, b.X.Max},
	}
}

// Contains reports whether the search vector [θ°, M, X] lies in the box.
func (b Bounds) Contains(v []float64) bool {
	return len(v) == 3 && b.ThetaDeg.Contains(v[0]) && b.M.Contains(v[1]) && b.X.Contains(v[2])
}
