// SPDX-License-Identifier: MIT

package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/InaEriksson/TSRT14/model"
)

// readSignal parses rows "t,y1[,y2…]". A first row whose first field is not
// a number is treated as a header. Blank lines and lines starting with '#'
// are skipped.
func readSignal(r io.Reader, name string) (*model.Signal, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var (
		t    []float64
		rows [][]float64
		ny   = -1
	)
	for n := 1; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s: record %d: want t and at least one output column", name, n)
		}
		if n == 1 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64); err != nil {
				continue
			}
		}
		if ny < 0 {
			ny = len(rec) - 1
		} else if len(rec)-1 != ny {
			return nil, fmt.Errorf("%s: record %d: %d outputs, want %d", name, n, len(rec)-1, ny)
		}
		vals := make([]float64, len(rec))
		for i, f := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("%s: record %d column %d: %w", name, n, i+1, err)
			}
			vals[i] = v
		}
		t = append(t, vals[0])
		rows = append(rows, vals[1:])
	}
	if len(t) == 0 {
		return nil, fmt.Errorf("%s: no samples: %w", name, model.ErrBadSignal)
	}

	y := mat.NewDense(len(t), ny, nil)
	for k, row := range rows {
		y.SetRow(k, row)
	}
	sig, err := model.NewSignal(t, y)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sig.Name = name

	return sig, nil
}

// loadSignals reads every path in order.
func loadSignals(paths []string) ([]*model.Signal, error) {
	out := make([]*model.Signal, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		sig, err := readSignal(f, p)
		f.Close()
		if err != nil {
			return nil, err
		}
		out = append(out, sig)
	}

	return out, nil
}
