package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/MozP1/flam-assignment/curve"
	"github.com/MozP1/flam-assignment/dataset"
	"github.com/MozP1/flam-assignment/fit"
	"github.com/MozP1/flam-assignment/report"
	"github.com/MozP1/flam-assignment/stage"
)

// cmdEval evaluates the objective at a given parameter vector.
type cmdEval struct {
	*kingpin.CmdClause
	common
	theta     *float64
	m         *float64
	x         *float64
	residuals *string
}

func (c *cmdEval) register(app *kingpin.Application) {
	c.CmdClause = app.Command("eval", "Evaluate the L1 objective of a parameter vector on a CSV of observed points.")
	c.common.register(c.CmdClause)
	c.theta = c.Flag("theta", "theta in degrees").Required().Float64()
	c.m = c.Flag("m", "M").Required().Float64()
	c.x = c.Flag("x", "X").Required().Float64()
	c.residuals = c.Flag("residuals", "write the residual table to this CSV file").String()
}

func (c *cmdEval) Run(log *zap.SugaredLogger) error {
	ds, err := dataset.Load(*c.csvFile)
	if err != nil {
		return stage.Wrap(stage.Load, err)
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	fitter, err := fit.New(cfg, fit.WithLogger(log))
	if err != nil {
		return stage.Wrap(stage.Validate, err)
	}
	obj, err := fitter.Objective(ds.Points)
	if err != nil {
		return stage.Wrap(stage.Validate, err)
	}

	p := curve.FromDegrees(*c.theta, *c.m, *c.x)
	if !cfg.Bounds.Contains(p.Vector()) {
		log.Warnw("parameters outside the search bounds", "theta_deg", *c.theta, "M", *c.m, "X", *c.x)
	}
	rs := obj.Residuals(p)
	s := report.ResidualStats(rs)

	if *c.residuals != "" {
		if err := writeResiduals(*c.residuals, rs); err != nil {
			return stage.Wrap(stage.Report, err)
		}
		log.Infow("wrote residuals", "file", *c.residuals)
	}

	rows := append(report.ParamRows(p, s.Total),
		report.Row{Name: "points", Value: fmt.Sprint(s.N)},
		report.Row{Name: "mean L1", Value: fmt.Sprintf("%.6f", s.MeanL1)},
		report.Row{Name: "max L1", Value: fmt.Sprintf("%.6f (t=%.4f)", s.MaxL1, rs[s.MaxRow].T)},
	)
	if err := report.Summary(os.Stdout, "evaluation", rows); err != nil {
		return stage.Wrap(stage.Report, err)
	}

	return nil
}

func writeResiduals(path string, rs []curve.Residual) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WritePredictions(f, rs); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
