// Package report writes the artifacts of a fit: the parameter record, the
// equation renderings, the per-row residual table and the plot.
//
// Every number written comes from the fit result or from the residual table
// of the winning parameters; nothing is re-derived.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MozP1/flam-assignment/config"
	"github.com/MozP1/flam-assignment/curve"
	"github.com/MozP1/flam-assignment/dataset"
	"github.com/MozP1/flam-assignment/fit"
)

// Artifact file names.
const (
	ParamsFile          = "params.json"
	LatexFile           = "equation_latex.txt"
	EquationFile        = "equation.txt"
	PredictionsFile     = "predictions.csv"
	PredictionsGzipFile = "predictions.csv.gz"
	PlotFile            = "fit_vs_data.png"
)

// Record is the machine-readable parameter record.
type Record struct {
	ThetaDeg      float64 `json:"theta_deg"`
	ThetaRad      float64 `json:"theta_rad"`
	M             float64 `json:"M"`
	X             float64 `json:"X"`
	L1Error       float64 `json:"L1_error"`
	Nit           int     `json:"nit"`
	Nfev          int     `json:"nfev"`
	Success       bool    `json:"success"`
	Status        string  `json:"status"`
	Message       string  `json:"message"`
	Polished      bool    `json:"polished"`
	Seed          uint64  `json:"seed"`
	N             int     `json:"n"`
	Input         string  `json:"input"`
	InputChecksum string  `json:"input_checksum"`
}

// NewRecord builds the record of a fit.
func NewRecord(res *fit.Result, ds *dataset.Dataset, cfg config.Config) Record {
	return Record{
		ThetaDeg:      res.Params.ThetaDeg(),
		ThetaRad:      res.Params.Theta,
		M:             res.Params.M,
		X:             res.Params.X,
		L1Error:       res.Fun,
		Nit:           res.Nit,
		Nfev:          res.Nfev,
		Success:       res.Success(),
		Status:        res.Status.String(),
		Message:       res.Message,
		Polished:      res.Polished,
		Seed:          cfg.Optimizer.Seed,
		N:             ds.Len(),
		Input:         ds.Path,
		InputChecksum: ds.ChecksumHex(),
	}
}

// Artifacts lists the files written by Write. Empty paths were skipped.
type Artifacts struct {
	Params      string
	Latex       string
	Equation    string
	Predictions string
	Plot        string
}

// Write writes every artifact into cfg.Output.Dir, creating it if needed.
func Write(res *fit.Result, obj *curve.Objective, ds *dataset.Dataset, cfg config.Config) (*Artifacts, error) {
	dir := cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	a := &Artifacts{
		Params:   filepath.Join(dir, ParamsFile),
		Latex:    filepath.Join(dir, LatexFile),
		Equation: filepath.Join(dir, EquationFile),
	}

	rec, err := json.MarshalIndent(NewRecord(res, ds, cfg), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(a.Params, append(rec, '\n'), 0o644); err != nil {
		return nil, err
	}

	latex := LatexDegrees(res.Params) + "\n\n" + LatexRadians(res.Params) + "\n"
	if err := os.WriteFile(a.Latex, []byte(latex), 0o644); err != nil {
		return nil, err
	}
	if err := os.WriteFile(a.Equation, []byte(Plain(res.Params)+"\n"), 0o644); err != nil {
		return nil, err
	}

	write := WritePredictions
	a.Predictions = filepath.Join(dir, PredictionsFile)
	if cfg.Output.Compress {
		write = WritePredictionsGzip
		a.Predictions = filepath.Join(dir, PredictionsGzipFile)
	}
	if err := writeFile(a.Predictions, func(f *os.File) error {
		return write(f, obj.Residuals(res.Params))
	}); err != nil {
		return nil, err
	}

	if cfg.Output.Plot {
		a.Plot = filepath.Join(dir, PlotFile)
		if err := Plot(a.Plot, ds.Points, res.Params, cfg.Grid.TMin, cfg.Grid.TMax, cfg.Output.PlotSamples); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
