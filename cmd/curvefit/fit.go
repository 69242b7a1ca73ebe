package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cheggaaa/pb/v3"
	"go.uber.org/zap"

	"github.com/MozP1/flam-assignment/dataset"
	"github.com/MozP1/flam-assignment/de"
	"github.com/MozP1/flam-assignment/fit"
	"github.com/MozP1/flam-assignment/report"
	"github.com/MozP1/flam-assignment/stage"
)

// cmdFit fits theta, M and X to a CSV of observations.
type cmdFit struct {
	*kingpin.CmdClause
	common
	progress *bool
}

func (c *cmdFit) register(app *kingpin.Application) {
	c.CmdClause = app.Command("fit", "Fit theta, M and X to a CSV of observed points.").Default()
	c.common.register(c.CmdClause)
	c.binds.string(c.CmdClause, "out", "output.dir", "output directory (default fit_output)")
	c.binds.uint64(c.CmdClause, "seed", "optimizer.seed", "random seed (default 42)")
	c.binds.int(c.CmdClause, "maxiter", "optimizer.maxiter", "max number of generations (default 200)")
	c.binds.int(c.CmdClause, "popsize", "optimizer.popsize", "population multiplier (default 15)")
	c.binds.float(c.CmdClause, "tol", "optimizer.tol", "relative convergence tolerance (default 1e-6)")
	c.binds.int(c.CmdClause, "patience", "optimizer.patience", "consecutive generations within tolerance (default 1)")
	c.binds.int(c.CmdClause, "workers", "optimizer.workers", "concurrent objective evaluations (default 1)")
	c.binds.bool(c.CmdClause, "polish", "optimizer.polish", "polish the best vector with Nelder-Mead")
	c.binds.bool(c.CmdClause, "plot", "output.plot", "write the fit vs. data plot")
	c.binds.bool(c.CmdClause, "compress", "output.compress", "gzip the predictions table")
	c.progress = c.Flag("progress", "show progress").Bool()
}

// Run executes load, validate, optimize and report in order.
func (c *cmdFit) Run(log *zap.SugaredLogger) error {
	ds, err := dataset.Load(*c.csvFile)
	if err != nil {
		return stage.Wrap(stage.Load, err)
	}
	log.Infow("loaded observations", "file", ds.Path, "n", ds.Len(), "checksum", ds.ChecksumHex())

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := []fit.Option{fit.WithLogger(log)}
	var bar *pb.ProgressBar
	if *c.progress {
		bar = pb.StartNew(cfg.Optimizer.MaxIter)
		opts = append(opts, fit.WithProgress(func(g de.Generation) {
			bar.SetCurrent(int64(g.Index))
		}))
	}
	fitter, err := fit.New(cfg, opts...)
	if err != nil {
		return stage.Wrap(stage.Validate, err)
	}
	obj, res, err := fitter.Run(ds.Points)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	a, err := report.Write(res, obj, ds, cfg)
	if err != nil {
		return stage.Wrap(stage.Report, err)
	}

	rows := append(report.ParamRows(res.Params, res.Fun),
		report.Row{Name: "status", Value: res.Status.String()},
		report.Row{Name: "generations", Value: fmt.Sprint(res.Nit)},
		report.Row{Name: "evaluations", Value: fmt.Sprint(res.Nfev)},
		report.Row{Name: "polished", Value: fmt.Sprint(res.Polished)},
	)
	if err := report.Summary(os.Stdout, "best fit", rows); err != nil {
		return stage.Wrap(stage.Report, err)
	}
	fmt.Println(report.LatexDegrees(res.Params))

	for _, path := range []string{a.Params, a.Latex, a.Equation, a.Predictions, a.Plot} {
		if path != "" {
			log.Infow("wrote artifact", "file", path)
		}
	}

	return nil
}
