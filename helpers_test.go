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


package dispenseqc

import (
	"fmt"
	"math"
	"strings"
)

const testTolerance = 1.e-8

var testStandards = []float64{600, 300, 150, 75, 37.5, 18.75, 9.375, 4.6875}

// testSignal is the fluorescence of a well holding concentration conc on
// the test instrument.
func testSignal(conc float64) float64 { return conc*100 + 50 }

// testReplicates are the relative errors of the three replicate wells of
// each standard.
var testReplicates = [3]float64{0.01, -0.01, 0}

// testPlate returns a plate-reader export with standards in columns 1–3
// of the even rows and sample wells in columns 4–24 holding the
// concentration returned by sample. NaN samples are left empty.
func testPlate(sample func(row, col int) float64) string {
	var b strings.Builder
	b.WriteString("Plate Reader Export,,,\n")
	b.WriteString("Plate:,Plate 1,,\n")
	b.WriteString("\n")
	b.WriteString(Marker + " (485/528),,,\n")
	b.WriteString(",")
	for c := 1; c <= Cols; c++ {
		fmt.Fprintf(&b, "%d", c)
		if c < Cols {
			b.WriteString(",")
		}
	}
	b.WriteString("\n")
	for r := 0; r < Rows; r++ {
		b.WriteString(RowLabel(r))
		for c := 0; c < Cols; c++ {
			b.WriteString(",")
			var v float64
			switch {
			case c < len(testReplicates) && r%2 == 0:
				v = testSignal(testStandards[r/2]) * (1 + testReplicates[c])
			case c < len(testReplicates):
				continue
			default:
				conc := sample(r, c)
				if math.IsNaN(conc) {
					continue
				}
				v = testSignal(conc)
			}
			fmt.Fprintf(&b, "%g", v)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nEnd of results,,,\n")
	return b.String()
}

// constantSample returns a sample function that fills every well with v.
func constantSample(v float64) func(int, int) float64 {
	return func(int, int) float64 { return v }
}

// testConfig is a configuration matching testPlate.
func testConfig() Config {
	return Config{
		StandardConcentrations: testStandards,
		TargetConcentration:    75,
		Chips: []ChipConfig{
			{ID: "Chip_1", Topology: RowPairs{}, Columns: ColumnRange{Start: 4, End: 24}},
		},
	}
}

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b float64) bool {
	return math.Abs(a-b) > testTolerance
}
