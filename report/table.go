package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/klauspost/compress/gzip"

	"github.com/MozP1/flam-assignment/curve"
)

var predictionHeader = []string{"t", "x_obs", "y_obs", "x_pred", "y_pred", "l1_point"}

// WritePredictions writes the residual table as CSV. Floats use the
// shortest representation that parses back to the same value.
func WritePredictions(w io.Writer, rs []curve.Residual) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(predictionHeader); err != nil {
		return err
	}
	row := make([]string, len(predictionHeader))
	for _, r := range rs {
		for i, v := range []float64{r.T, r.XObs, r.YObs, r.XPred, r.YPred, r.L1} {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}

// WritePredictionsGzip is WritePredictions through a gzip stream.
func WritePredictionsGzip(w io.Writer, rs []curve.Residual) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return err
	}
	if err := WritePredictions(zw, rs); err != nil {
		zw.Close()
		return err
	}

	return zw.Close()
}
