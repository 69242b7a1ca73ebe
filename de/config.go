package de

import (
	"fmt"
	"math"

	"github.com/MozP1/flam-assignment/stage"
)

// Config of one optimizer run. It is copied into the Optimizer and never
// changed afterwards.
type Config struct {
	Bounds        [][2]float64 // closed interval per dimension.
	PopSize       int          // population multiplier; population = PopSize * dim, at least 5.
	MaxIter       int          // max number of generations.
	Tol           float64      // relative tolerance on population energy spread.
	Atol          float64      // absolute tolerance on population energy spread.
	Patience      int          // consecutive generations within tolerance needed to converge.
	Mutation      [2]float64   // differential weight is drawn from [Mutation[0], Mutation[1]) each generation.
	Recombination float64      // crossover probability.
	Seed          uint64       // random seed.
	Workers       int          // concurrent objective evaluations; 1 means serial with immediate updating.

	// Callback, if set, is called after every generation.
	Callback func(Generation)
}

// DefaultConfig returns the settings curvefit uses by default.
func DefaultConfig(bounds [][2]float64) Config {
	return Config{
		Bounds:        bounds,
		PopSize:       15,
		MaxIter:       200,
		Tol:           1e-6,
		Atol:          0,
		Patience:      1,
		Mutation:      [2]float64{0.5, 1},
		Recombination: 0.7,
		Seed:          42,
		Workers:       1,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if len(c.Bounds) == 0 {
		return fmt.Errorf("no bounds given: %w", stage.ErrConfig)
	}
	for i, b := range c.Bounds {
		if !finite(b[0]) || !finite(b[1]) {
			return fmt.Errorf("bounds of dimension %d are not finite: %w", i, stage.ErrConfig)
		}
		if b[0] > b[1] {
			return fmt.Errorf("bounds of dimension %d are inverted, min %g > max %g: %w", i, b[0], b[1], stage.ErrConfig)
		}
	}
	if c.PopSize <= 0 {
		return fmt.Errorf("population size must be positive, got %d: %w", c.PopSize, stage.ErrConfig)
	}
	if c.MaxIter <= 0 {
		return fmt.Errorf("max iterations must be positive, got %d: %w", c.MaxIter, stage.ErrConfig)
	}
	if c.Tol < 0 || c.Atol < 0 || !finite(c.Tol) || !finite(c.Atol) {
		return fmt.Errorf("tolerances must be finite and non-negative, got tol=%g atol=%g: %w", c.Tol, c.Atol, stage.ErrConfig)
	}
	if c.Tol == 0 && c.Atol == 0 {
		return fmt.Errorf("tol and atol cannot both be zero: %w", stage.ErrConfig)
	}
	if c.Patience <= 0 {
		return fmt.Errorf("patience must be positive, got %d: %w", c.Patience, stage.ErrConfig)
	}
	if c.Mutation[0] < 0 || c.Mutation[1] > 2 || c.Mutation[0] > c.Mutation[1] {
		return fmt.Errorf("mutation range must satisfy 0 <= min <= max <= 2, got %v: %w", c.Mutation, stage.ErrConfig)
	}
	if c.Recombination < 0 || c.Recombination > 1 {
		return fmt.Errorf("recombination must be in [0, 1], got %g: %w", c.Recombination, stage.ErrConfig)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d: %w", c.Workers, stage.ErrConfig)
	}

	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
