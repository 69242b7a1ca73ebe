package curve

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/MozP1/flam-assignment/stage"
)

// Default time-grid bounds.
const (
	DefaultTMin = 6.0
	DefaultTMax = 60.0
)

// TimeGrid returns n evenly spaced values over [lower, upper], both ends
// included. A grid of one point is [lower].
func TimeGrid(lower, upper float64, n int) ([]float64, error) {
	if n <= 0 {
		return nil, fmt.Errorf("time grid needs at least one point, got %d: %w", n, stage.ErrInput)
	}
	if math.IsNaN(lower) || math.IsInf(lower, 0) || math.IsNaN(upper) || math.IsInf(upper, 0) {
		return nil, fmt.Errorf("time grid bounds must be finite, got [%g, %g]: %w", lower, upper, stage.ErrConfig)
	}

	ts := make([]float64, n)
	if n == 1 {
		ts[0] = lower
		return ts, nil
	}
	floats.Span(ts, lower, upper)
	ts[0], ts[n-1] = lower, upper

	return ts, nil
}
