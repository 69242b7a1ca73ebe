// Package config reads the settings of a fitting run.
//
// Values are layered the usual viper way: built-in defaults, an optional
// YAML file, CURVEFIT_* environment variables (dots become underscores, so
// optimizer.seed is CURVEFIT_OPTIMIZER_SEED), and finally values set
// explicitly by the caller, normally from command-line flags. Decode turns
// the result into an immutable Config and validates it once.
package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/MozP1/flam-assignment/curve"
	"github.com/MozP1/flam-assignment/de"
	"github.com/MozP1/flam-assignment/stage"
)

// EnvPrefix is the prefix of environment variables read by viper.
const EnvPrefix = "CURVEFIT"

// Config of one run.
type Config struct {
	Grid      Grid         `mapstructure:"grid"`
	Bounds    curve.Bounds `mapstructure:"bounds"`
	Optimizer Optimizer    `mapstructure:"optimizer"`
	Output    Output       `mapstructure:"output"`
}

// Grid bounds of the time values assigned to observations.
type Grid struct {
	TMin float64 `mapstructure:"tmin"`
	TMax float64 `mapstructure:"tmax"`
}

// Optimizer settings, see de.Config.
type Optimizer struct {
	MaxIter       int     `mapstructure:"maxiter"`
	PopSize       int     `mapstructure:"popsize"`
	Tol           float64 `mapstructure:"tol"`
	Atol          float64 `mapstructure:"atol"`
	Patience      int     `mapstructure:"patience"`
	MutationMin   float64 `mapstructure:"mutation_min"`
	MutationMax   float64 `mapstructure:"mutation_max"`
	Recombination float64 `mapstructure:"recombination"`
	Seed          uint64  `mapstructure:"seed"`
	Workers       int     `mapstructure:"workers"`
	Polish        bool    `mapstructure:"polish"`
}

// Output settings.
type Output struct {
	Dir         string `mapstructure:"dir"`
	Plot        bool   `mapstructure:"plot"`
	PlotSamples int    `mapstructure:"plot_samples"`
	Compress    bool   `mapstructure:"compress"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := de.DefaultConfig(nil)
	return Config{
		Grid:   Grid{TMin: curve.DefaultTMin, TMax: curve.DefaultTMax},
		Bounds: curve.DefaultBounds(),
		Optimizer: Optimizer{
			MaxIter:       d.MaxIter,
			PopSize:       d.PopSize,
			Tol:           d.Tol,
			Atol:          d.Atol,
			Patience:      d.Patience,
			MutationMin:   d.Mutation[0],
			MutationMax:   d.Mutation[1],
			Recombination: d.Recombination,
			Seed:          d.Seed,
			Workers:       d.Workers,
			Polish:        true,
		},
		Output: Output{
			Dir:         "fit_output",
			Plot:        true,
			PlotSamples: 600,
		},
	}
}

// NewViper returns a viper instance holding the defaults and bound to the
// environment.
func NewViper() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("grid.tmin", d.Grid.TMin)
	v.SetDefault("grid.tmax", d.Grid.TMax)
	v.SetDefault("bounds.theta_deg.min", d.Bounds.ThetaDeg.Min)
	v.SetDefault("bounds.theta_deg.max", d.Bounds.ThetaDeg.Max)
	v.SetDefault("bounds.m.min", d.Bounds.M.Min)
	v.SetDefault("bounds.m.max", d.Bounds.M.Max)
	v.SetDefault("bounds.x.min", d.Bounds.X.Min)
	v.SetDefault("bounds.x.max", d.Bounds.X.Max)
	v.SetDefault("optimizer.maxiter", d.Optimizer.MaxIter)
	v.SetDefault("optimizer.popsize", d.Optimizer.PopSize)
	v.SetDefault("optimizer.tol", d.Optimizer.Tol)
	v.SetDefault("optimizer.atol", d.Optimizer.Atol)
	v.SetDefault("optimizer.patience", d.Optimizer.Patience)
	v.SetDefault("optimizer.mutation_min", d.Optimizer.MutationMin)
	v.SetDefault("optimizer.mutation_max", d.Optimizer.MutationMax)
	v.SetDefault("optimizer.recombination", d.Optimizer.Recombination)
	v.SetDefault("optimizer.seed", d.Optimizer.Seed)
	v.SetDefault("optimizer.workers", d.Optimizer.Workers)
	v.SetDefault("optimizer.polish", d.Optimizer.Polish)
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.plot", d.Output.Plot)
	v.SetDefault("output.plot_samples", d.Output.PlotSamples)
	v.SetDefault("output.compress", d.Output.Compress)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// ReadFile merges the YAML file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %v: %w", path, err, stage.ErrConfig)
	}

	return nil
}

// Decode unmarshals v into a Config and validates it.
func Decode(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %v: %w", err, stage.ErrConfig)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if math.IsNaN(c.Grid.TMin) || math.IsNaN(c.Grid.TMax) || math.IsInf(c.Grid.TMin, 0) || math.IsInf(c.Grid.TMax, 0) {
		return fmt.Errorf("time grid bounds must be finite: %w", stage.ErrConfig)
	}
	if c.Grid.TMin >= c.Grid.TMax {
		return fmt.Errorf("time grid needs tmin < tmax, got [%g, %g]: %w", c.Grid.TMin, c.Grid.TMax, stage.ErrConfig)
	}
	if err := c.Bounds.Validate(); err != nil {
		return err
	}
	if err := c.DE().Validate(); err != nil {
		return err
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output directory is empty: %w", stage.ErrConfig)
	}
	if c.Output.Plot && c.Output.PlotSamples < 2 {
		return fmt.Errorf("plot needs at least 2 samples, got %d: %w", c.Output.PlotSamples, stage.ErrConfig)
	}

	return nil
}

// DE returns the optimizer configuration over the search vector [θ°, M, X].
func (c Config) DE() de.Config {
	return de.Config{
		Bounds:        c.Bounds.Box(),
		PopSize:       c.Optimizer.PopSize,
		MaxIter:       c.Optimizer.MaxIter,
		Tol:           c.Optimizer.Tol,
		Atol:          c.Optimizer.Atol,
		Patience:      c.Optimizer.Patience,
		Mutation:      [2]float64{c.Optimizer.MutationMin, c.Optimizer.MutationMax},
		Recombination: c.Optimizer.Recombination,
		Seed:          c.Optimizer.Seed,
		Workers:       c.Optimizer.Workers,
	}
}
