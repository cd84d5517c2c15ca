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
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestUnits(t *testing.T) {
	full := ColumnRange{Start: 4, End: 24}
	tests := []struct {
		topology   Topology
		cr         ColumnRange
		units      int
		firstLabel string
		firstWells int
		lastWells  int
	}{
		{RowPairs{}, full, 8, "Nozzle_1", 42, 42},
		{SingleUnit{}, full, 1, "Nozzle_1", 16 * 21, 16 * 21},
		{QuadrantGrid{}, full, 4 * 11 * 2, "Quadrant_1", 4, 2},
		{QuadrantGrid{}, ColumnRange{Start: 1, End: 24}, 4 * 12 * 2, "Quadrant_1", 4, 4},
		{PerWell{}, full, 16 * 21, "A4", 1, 1},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v %v", test.topology, test.cr), func(t *testing.T) {
			units := Units(test.topology, test.cr)
			if len(units) != test.units {
				t.Fatalf("units: have %d, want %d", len(units), test.units)
			}
			if units[0].Label != test.firstLabel {
				t.Errorf("first label: have %s, want %s", units[0].Label, test.firstLabel)
			}
			if n := len(units[0].Wells); n != test.firstWells {
				t.Errorf("first unit wells: have %d, want %d", n, test.firstWells)
			}
			if n := len(units[len(units)-1].Wells); n != test.lastWells {
				t.Errorf("last unit wells: have %d, want %d", n, test.lastWells)
			}
			seen := make(map[Well]bool)
			for _, u := range units {
				for _, w := range u.Wells {
					if seen[w] {
						t.Errorf("well %s is in more than one unit", w.Label())
					}
					seen[w] = true
					if w.Col < test.cr.Start-1 || w.Col >= test.cr.End {
						t.Errorf("well %s is outside columns %v", w.Label(), test.cr)
					}
				}
			}
			if want := Rows * (test.cr.End - test.cr.Start + 1); len(seen) != want {
				t.Errorf("wells covered: have %d, want %d", len(seen), want)
			}
		})
	}
}

func TestRowPairsRows(t *testing.T) {
	for i, u := range Units(RowPairs{}, ColumnRange{Start: 4, End: 24}) {
		if want := fmt.Sprintf("Nozzle_%d", i+1); u.Label != want {
			t.Errorf("label: have %s, want %s", u.Label, want)
		}
		for _, w := range u.Wells {
			if w.Row != 2*i && w.Row != 2*i+1 {
				t.Errorf("%s: well %s is not in rows %s-%s", u.Label, w.Label(), RowLabel(2*i), RowLabel(2*i+1))
			}
		}
	}
}

func TestQuadrantGridOrder(t *testing.T) {
	units := Units(QuadrantGrid{}, ColumnRange{Start: 1, End: 4})
	want := [][]string{
		{"A1", "A2", "B1", "B2"},
		{"C1", "C2", "D1", "D2"},
		{"A3", "A4", "B3", "B4"},
		{"C3", "C4", "D3", "D4"},
	}
	for i, w := range want {
		u := units[i]
		if u.Label != fmt.Sprintf("Quadrant_%d", i+1) {
			t.Errorf("label %d: have %s", i, u.Label)
		}
		var have []string
		for _, well := range u.Wells {
			have = append(have, well.Label())
		}
		if fmt.Sprint(have) != fmt.Sprint(w) {
			t.Errorf("%s: have %v, want %v", u.Label, have, w)
		}
	}
}

func TestParseTopology(t *testing.T) {
	for in, want := range map[string]Topology{
		"rowpairs":     RowPairs{},
		"Row_Pairs":    RowPairs{},
		"single-unit":  SingleUnit{},
		"QuadrantGrid": QuadrantGrid{},
		" per well ":   PerWell{},
	} {
		have, err := ParseTopology(in)
		if err != nil {
			t.Errorf("%q: %v", in, err)
			continue
		}
		if have != want {
			t.Errorf("%q: have %v, want %v", in, have, want)
		}
	}
	_, err := ParseTopology("hexagonal")
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("have error %v, want *ConfigError", err)
	}
}

func TestColumnRange(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"4-24", true},
		{"1-24", true},
		{"1-2", true},
		{"5-5", false},
		{"10-4", false},
		{"0-12", false},
		{"4-25", false},
		{"four", false},
	}
	for _, test := range tests {
		cr, err := ParseColumnRange(test.in)
		if (err == nil) != test.ok {
			t.Errorf("%s: have error %v, want ok=%v", test.in, err, test.ok)
		}
		var ce *ConfigError
		if err != nil && !errors.As(err, &ce) {
			t.Errorf("%s: have error %v, want *ConfigError", test.in, err)
		}
		if test.ok && cr.String() != test.in {
			t.Errorf("%s: round trip gives %s", test.in, cr)
		}
	}
}

// concGrid returns a concentration grid where every well in columns 4–24
// holds f(row, col).
func concGrid(f func(row, col int) float64) *WellGrid {
	g := NewWellGrid()
	for r := 0; r < Rows; r++ {
		for c := 3; c < Cols; c++ {
			if v := f(r, c); !math.IsNaN(v) {
				g.set(r, c, v)
			}
		}
	}
	return g
}

func TestAggregate(t *testing.T) {
	// Rows alternate between 70 and 80 so every nozzle has mean 75.
	g := concGrid(func(r, c int) float64 { return 70 + 10*float64(r%2) })
	chips := []ChipConfig{{ID: "Chip_1", Topology: RowPairs{}, Columns: ColumnRange{Start: 4, End: 24}}}

	units, err := Aggregate(g, 75, chips)
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 8 {
		t.Fatalf("units: have %d, want 8", len(units))
	}
	for i, u := range units {
		if u.ID != fmt.Sprintf("Chip_1_Nozzle_%d", i+1) || u.ChipID != "Chip_1" || u.Columns != "4-24" {
			t.Errorf("unit %d: %+v", i, u)
		}
		if u.N != 42 {
			t.Errorf("%s: n = %d, want 42", u.ID, u.N)
		}
		if absDifferent(u.Mean, 75) || absDifferent(u.StdDev, 5) {
			t.Errorf("%s: mean %g std %g, want 75 and 5", u.ID, u.Mean, u.StdDev)
		}
		if absDifferent(u.CV, 100*5./75) {
			t.Errorf("%s: cv %g, want %g", u.ID, u.CV, 100*5./75)
		}
		if absDifferent(u.Accuracy, 0) {
			t.Errorf("%s: accuracy %g, want 0", u.ID, u.Accuracy)
		}
	}

	units, err = Aggregate(g, 60, chips)
	if err != nil {
		t.Fatal(err)
	}
	if absDifferent(units[0].Accuracy, 25) {
		t.Errorf("accuracy against 60: have %g, want 25", units[0].Accuracy)
	}
}

func TestAggregatePerWell(t *testing.T) {
	g := concGrid(func(r, c int) float64 { return float64(r*Cols + c) })
	units, err := Aggregate(g, 75, []ChipConfig{{ID: "P", Topology: PerWell{}, Columns: ColumnRange{Start: 4, End: 24}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != Rows*21 {
		t.Fatalf("units: have %d, want %d", len(units), Rows*21)
	}
	for _, u := range units {
		if u.N != 1 || u.StdDev != 0 || u.CV != 0 {
			t.Errorf("%s: n=%d std=%g cv=%g, want 1, 0, 0", u.ID, u.N, u.StdDev, u.CV)
		}
	}
	if units[0].ID != "P_A4" || units[0].Mean != 3 {
		t.Errorf("first unit: %+v", units[0])
	}
}

func TestAggregateAbsent(t *testing.T) {
	// Only nozzle 3 (rows E and F) has values, and one of them is zero.
	g := concGrid(func(r, c int) float64 {
		switch {
		case r == 4 && c == 3:
			return 0
		case r == 4 || r == 5:
			return 75
		default:
			return math.NaN()
		}
	})
	units, err := Aggregate(g, 75, []ChipConfig{{ID: "C", Topology: RowPairs{}, Columns: ColumnRange{Start: 4, End: 24}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].Unit != "Nozzle_3" || units[0].N != 42 {
		t.Fatalf("have %+v, want only Nozzle_3 with 42 wells", units)
	}

	// A mean of zero gives a CV of zero.
	g = concGrid(func(r, c int) float64 { return float64(2*(c%2) - 1) })
	units, err = Aggregate(g, 75, []ChipConfig{{ID: "Z", Topology: SingleUnit{}, Columns: ColumnRange{Start: 4, End: 5}}})
	if err != nil {
		t.Fatal(err)
	}
	if units[0].Mean != 0 || units[0].CV != 0 {
		t.Errorf("have mean %g cv %g, want 0 and 0", units[0].Mean, units[0].CV)
	}
}

func TestAggregateErrors(t *testing.T) {
	g := concGrid(func(r, c int) float64 { return 75 })
	var de *DivisionError
	if _, err := Aggregate(g, 0, []ChipConfig{{ID: "C", Topology: RowPairs{}, Columns: ColumnRange{Start: 4, End: 24}}}); !errors.As(err, &de) {
		t.Errorf("zero target: have error %v, want *DivisionError", err)
	} else if de.Unit != "C_Nozzle_1" {
		t.Errorf("zero target: unit %q, want C_Nozzle_1", de.Unit)
	}

	var ce *ConfigError
	if _, err := Aggregate(g, 75, nil); !errors.As(err, &ce) {
		t.Errorf("no chips: have error %v, want *ConfigError", err)
	}
	if _, err := Aggregate(g, 75, []ChipConfig{{ID: "C", Topology: RowPairs{}, Columns: ColumnRange{Start: 5, End: 5}}}); !errors.As(err, &ce) {
		t.Errorf("empty column range: have error %v, want *ConfigError", err)
	}
}
