package report

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/MozP1/flam-assignment/curve"
)

// Stats summarizes a residual table.
type Stats struct {
	N      int
	Total  float64 // sum of L1, in row order.
	MeanL1 float64
	MaxL1  float64
	MaxRow int // row of the largest residual.
}

// ResidualStats computes Stats for rs.
func ResidualStats(rs []curve.Residual) Stats {
	if len(rs) == 0 {
		return Stats{}
	}
	l1 := make([]float64, len(rs))
	for i, r := range rs {
		l1[i] = r.L1
	}
	at := floats.MaxIdx(l1)

	return Stats{
		N:      len(rs),
		Total:  curve.SumL1(rs),
		MeanL1: stat.Mean(l1, nil),
		MaxL1:  l1[at],
		MaxRow: at,
	}
}

// Row is one line of the console summary.
type Row struct {
	Name, Value string
}

// Summary prints rows as a two-column table.
func Summary(w io.Writer, title string, rows []Row) error {
	data := pterm.TableData{{"", title}}
	for _, r := range rows {
		data = append(data, []string{r.Name, r.Value})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)

	return err
}

// ParamRows returns the summary rows for a parameter vector and its objective.
func ParamRows(p curve.Params, l1 float64) []Row {
	return []Row{
		{"theta (deg)", fmt.Sprintf("%.6f", p.ThetaDeg())},
		{"theta (rad)", fmt.Sprintf("%.6f", p.Theta)},
		{"M", fmt.Sprintf("%.6f", p.M)},
		{"X", fmt.Sprintf("%.6f", p.X)},
		{"L1 error", fmt.Sprintf("%.4f", l1)},
	}
}
