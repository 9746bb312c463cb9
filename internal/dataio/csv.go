// Package dataio reads and writes time histories and identification results.
package dataio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	oma "github.com/milosgajdos/go-oma"
	"gonum.org/v1/gonum/mat"
)

// ReadCSV reads time history from r: one row per sample, one column per channel.
// Lines starting with # are skipped. The first record is treated as a header if it is not numeric.
// It returns error if the records are ragged, empty or not numeric.
func ReadCSV(r io.Reader) (*mat.Dense, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	var (
		data []float64
		cols int
		rows int
	)

	for line := 0; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		vals, err := parseRecord(rec)
		if err != nil {
			if line == 0 {
				continue
			}
			row, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: %v", oma.ErrInvalidInput, row, err)
		}

		if cols == 0 {
			cols = len(vals)
		}

		data = append(data, vals...)
		rows++
	}

	if rows == 0 {
		return nil, fmt.Errorf("%w: no samples", oma.ErrInvalidInput)
	}

	return mat.NewDense(rows, cols, data), nil
}

func parseRecord(rec []string) ([]float64, error) {
	vals := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q in column %d", s, i)
		}
		vals[i] = v
	}

	return vals, nil
}

// WriteCSV writes m to w, one row per line, with an optional header.
func WriteCSV(w io.Writer, m mat.Matrix, header []string) error {
	rows, cols := m.Dims()
	if header != nil && len(header) != cols {
		return fmt.Errorf("invalid header length: %d, expected: %d", len(header), cols)
	}

	cw := csv.NewWriter(w)

	if header != nil {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}

	rec := make([]string, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			rec[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()

	return cw.Error()
}

// ChannelHeader returns CSV header naming n channels.
func ChannelHeader(n int) []string {
	header := make([]string, n)
	for i := range header {
		header[i] = fmt.Sprintf("ch%d", i+1)
	}

	return header
}
