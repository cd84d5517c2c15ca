/*
Copyright © 2026 the dispenseqc authors.
This file is part of dispenseqc.

dispenseqc is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

dispenseqc is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with dispenseqc.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package dispenseqc converts plate-reader fluorescence measurements into
// calibrated concentrations and computes precision (%CV) and accuracy
// (%Accuracy) statistics for the dispensing units of a liquid handler.
//
// The analysis is a linear pipeline: ParseGrid reads the 16×24 well grid,
// BuildCalibration fits a standard curve from the standard wells,
// CalibrationModel.Apply maps every well to a concentration, and Aggregate
// groups wells into dispensing units according to each chip's Topology.
// Pipeline runs the whole sequence.
package dispenseqc

import (
	"fmt"
	"strings"
)

// Plate geometry.
const (
	Rows = 16 // A–P
	Cols = 24 // 1–24
)

// WellGrid holds one optional value per well of a 384-well plate.
// Wells without a value are absent, which is distinct from zero.
// A WellGrid is not modified after it has been handed to a caller.
type WellGrid struct {
	values  [Rows][Cols]float64
	present [Rows][Cols]bool
}

// NewWellGrid returns a grid with every well absent.
func NewWellGrid() *WellGrid { return new(WellGrid) }

// At returns the value of the well at the 0-based row and column and
// whether it is present.
func (g *WellGrid) At(row, col int) (float64, bool) {
	if row < 0 || row >= Rows || col < 0 || col >= Cols {
		return 0, false
	}
	return g.values[row][col], g.present[row][col]
}

func (g *WellGrid) set(row, col int, v float64) {
	g.values[row][col] = v
	g.present[row][col] = true
}

// Present returns the number of wells with a value.
func (g *WellGrid) Present() int {
	var n int
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if g.present[r][c] {
				n++
			}
		}
	}
	return n
}

// Values returns the present values in the given 0-based row over the
// half-open column interval [colStart, colEnd), in column order.
func (g *WellGrid) Values(row, colStart, colEnd int) []float64 {
	var o []float64
	for c := colStart; c < colEnd; c++ {
		if v, ok := g.At(row, c); ok {
			o = append(o, v)
		}
	}
	return o
}

// String prints the grid as a table, with "-" for absent wells.
func (g *WellGrid) String() string {
	var b strings.Builder
	b.WriteString("   ")
	for c := 0; c < Cols; c++ {
		fmt.Fprintf(&b, " %10d", c+1)
	}
	b.WriteByte('\n')
	for r := 0; r < Rows; r++ {
		fmt.Fprintf(&b, "%-3s", RowLabel(r))
		for c := 0; c < Cols; c++ {
			if v, ok := g.At(r, c); ok {
				fmt.Fprintf(&b, " %10.4g", v)
			} else {
				fmt.Fprintf(&b, " %10s", "-")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RowLabel returns the letter of a 0-based row index ("A" for 0).
func RowLabel(row int) string { return string(rune('A' + row)) }

// Label returns the well label for a 0-based row and column, e.g. "A1".
func Label(row, col int) string { return fmt.Sprintf("%s%d", RowLabel(row), col+1) }
