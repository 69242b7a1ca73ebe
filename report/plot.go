package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/MozP1/flam-assignment/curve"
)

// Plot draws the observations and the fitted curve sampled at n points over
// [tmin, tmax], and saves the figure to path. The format follows the file
// extension (png, svg, pdf, ...).
func Plot(path string, obs []curve.Point, p curve.Params, tmin, tmax float64, n int) error {
	fitted, err := curve.Sample(p, tmin, tmax, n)
	if err != nil {
		return err
	}

	plt := plot.New()
	plt.Title.Text = "Observed points vs. fitted parametric curve"
	plt.X.Label.Text = "x"
	plt.Y.Label.Text = "y"
	plt.Add(plotter.NewGrid())

	sc, err := plotter.NewScatter(xys(obs))
	if err != nil {
		return fmt.Errorf("cannot create scatter: %w", err)
	}
	sc.GlyphStyle.Color = color.RGBA{R: 31, G: 119, B: 180, A: 128}
	sc.GlyphStyle.Radius = vg.Points(1.5)

	line, err := plotter.NewLine(xys(fitted))
	if err != nil {
		return fmt.Errorf("cannot create line: %w", err)
	}
	line.LineStyle.Color = color.RGBA{R: 220, A: 255}
	line.LineStyle.Width = vg.Points(2)

	plt.Add(sc, line)
	plt.Legend.Add("Observed (CSV)", sc)
	plt.Legend.Add("Fitted curve", line)
	plt.Legend.Top = true

	if err := plt.Save(7*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("cannot save plot: %w", err)
	}

	return nil
}

func xys(pts []curve.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X = p.X
		out[i].Y = p.Y
	}

	return out
}
