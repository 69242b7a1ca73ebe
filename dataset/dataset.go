// Package dataset loads observed points from CSV files.
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/MozP1/flam-assignment/curve"
	"github.com/MozP1/flam-assignment/stage"
)

// Column names holding the observed coordinates.
const (
	ColumnX = "x"
	ColumnY = "y"
)

// Dataset is a loaded set of observations.
type Dataset struct {
	Path     string        // file the points came from.
	Points   []curve.Point // observations in file order.
	Checksum uint64        // xxhash64 of the raw file bytes.
}

// Len returns the number of observations.
func (d *Dataset) Len() int {
	return len(d.Points)
}

// ChecksumHex returns the checksum as 16 hex digits.
func (d *Dataset) ChecksumHex() string {
	return fmt.Sprintf("%016x", d.Checksum)
}

// Load reads the CSV file at path.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %v: %w", path, err, stage.ErrInput)
	}
	pts, err := Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &Dataset{Path: path, Points: pts, Checksum: xxhash.Sum64(data)}, nil
}

// Read parses CSV with a header row naming an x and a y column. Column
// names are matched case-insensitively after trimming; other columns are
// ignored. Every x and y cell must be a finite number and at least one data
// row is required.
func Read(r io.Reader) ([]curve.Point, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file, expected a header with columns %s,%s: %w", ColumnX, ColumnY, stage.ErrInput)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %v: %w", err, stage.ErrInput)
	}
	ix, iy := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case ColumnX:
			if ix < 0 {
				ix = i
			}
		case ColumnY:
			if iy < 0 {
				iy = i
			}
		}
	}
	if ix < 0 || iy < 0 {
		return nil, fmt.Errorf("header %q must have columns %s,%s: %w", header, ColumnX, ColumnY, stage.ErrInput)
	}

	var pts []curve.Point
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, stage.ErrInput)
		}
		line, _ := cr.FieldPos(0)
		x, err := parseCell(rec[ix], line, header[ix])
		if err != nil {
			return nil, err
		}
		y, err := parseCell(rec[iy], line, header[iy])
		if err != nil {
			return nil, err
		}
		pts = append(pts, curve.Point{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no data rows: %w", stage.ErrInput)
	}

	return pts, nil
}

func parseCell(cell string, line int, column string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("line %d, column %q: %q is not a finite number: %w", line, column, cell, stage.ErrInput)
	}

	return v, nil
}
