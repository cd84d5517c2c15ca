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
	"strings"
)

// Topology describes how the wells of a plate are partitioned into the
// dispensing units of an instrument. The variants are RowPairs,
// SingleUnit, QuadrantGrid and PerWell.
type Topology interface {
	fmt.Stringer
	topology()
}

// RowPairs is a topology with eight nozzles, each dispensing into a pair
// of adjacent rows (A+B, C+D, ..., O+P) across the chip's columns.
type RowPairs struct{}

// SingleUnit is a topology where all wells in the chip's columns are
// dispensed by one unit.
type SingleUnit struct{}

// QuadrantGrid is a topology whose units are 2×2 blocks of wells.
// Rows are walked in groups of four and columns in pairs; each 4×2 tile
// holds an upper and a lower unit.
type QuadrantGrid struct{}

// PerWell is a topology where every well is its own unit.
type PerWell struct{}

func (RowPairs) topology()     {}
func (SingleUnit) topology()   {}
func (QuadrantGrid) topology() {}
func (PerWell) topology()      {}

func (RowPairs) String() string     { return "rowpairs" }
func (SingleUnit) String() string   { return "singleunit" }
func (QuadrantGrid) String() string { return "quadrantgrid" }
func (PerWell) String() string      { return "perwell" }

// Topologies lists every topology variant.
var Topologies = []Topology{RowPairs{}, SingleUnit{}, QuadrantGrid{}, PerWell{}}

// ParseTopology returns the topology with the given name. Names are
// matched without regard to case, underscores or dashes.
func ParseTopology(name string) (Topology, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.NewReplacer("_", "", "-", "", " ", "").Replace(n)
	for _, t := range Topologies {
		if t.String() == n {
			return t, nil
		}
	}
	names := make([]string, len(Topologies))
	for i, t := range Topologies {
		names[i] = t.String()
	}
	return nil, &ConfigError{
		Field: "topology",
		Value: name,
		Msg:   "must be one of " + strings.Join(names, ", "),
	}
}

// ColumnRange is an inclusive range of 1-based plate columns.
type ColumnRange struct {
	Start, End int
}

// Validate checks that 1 ≤ Start < End ≤ Cols.
func (cr ColumnRange) Validate() error {
	if cr.Start < 1 || cr.End > Cols || cr.Start >= cr.End {
		return &ConfigError{
			Field: "columns",
			Value: cr.String(),
			Msg:   fmt.Sprintf("the range must satisfy 1 <= start < end <= %d", Cols),
		}
	}
	return nil
}

func (cr ColumnRange) String() string { return fmt.Sprintf("%d-%d", cr.Start, cr.End) }

// ParseColumnRange parses a range of the form "4-24".
func ParseColumnRange(s string) (ColumnRange, error) {
	var cr ColumnRange
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d-%d", &cr.Start, &cr.End); err != nil {
		return cr, &ConfigError{Field: "columns", Value: s, Msg: "must be of the form start-end"}
	}
	return cr, cr.Validate()
}

// ChipConfig binds a chip identifier to its topology and column range.
type ChipConfig struct {
	ID       string
	Topology Topology
	Columns  ColumnRange
}

// Validate checks the chip's identifier, topology and column range.
func (c ChipConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return &ConfigError{Field: "chip id", Value: c.ID, Msg: "must not be empty"}
	}
	if c.Topology == nil {
		return &ConfigError{Field: "topology", Value: nil, Msg: fmt.Sprintf("chip %s has no topology", c.ID)}
	}
	return c.Columns.Validate()
}

// Well is the 0-based address of one well.
type Well struct {
	Row, Col int
}

// Label returns the well's plate label, e.g. "D4".
func (w Well) Label() string { return Label(w.Row, w.Col) }

// Unit is one dispensing unit and the wells it dispensed into.
type Unit struct {
	Label string
	Wells []Well
}

// Units partitions the columns cr of a plate into the dispensing units of
// topology t.
func Units(t Topology, cr ColumnRange) []Unit {
	c0, c1 := cr.Start-1, cr.End // 0-based, half open
	switch t.(type) {
	case RowPairs:
		units := make([]Unit, 0, Rows/2)
		for r := 0; r < Rows; r += 2 {
			units = append(units, Unit{
				Label: fmt.Sprintf("Nozzle_%d", r/2+1),
				Wells: block(r, r+2, c0, c1),
			})
		}
		return units
	case SingleUnit:
		return []Unit{{Label: "Nozzle_1", Wells: block(0, Rows, c0, c1)}}
	case QuadrantGrid:
		var units []Unit
		for r := 0; r < Rows; r += 4 {
			for c := c0; c < c1; c += 2 {
				ce := c + 2
				if ce > c1 {
					ce = c1
				}
				for _, rr := range []int{r, r + 2} {
					units = append(units, Unit{
						Label: fmt.Sprintf("Quadrant_%d", len(units)+1),
						Wells: block(rr, rr+2, c, ce),
					})
				}
			}
		}
		return units
	case PerWell:
		units := make([]Unit, 0, Rows*(c1-c0))
		for r := 0; r < Rows; r++ {
			for c := c0; c < c1; c++ {
				w := Well{Row: r, Col: c}
				units = append(units, Unit{Label: w.Label(), Wells: []Well{w}})
			}
		}
		return units
	default:
		panic(fmt.Errorf("dispenseqc: unknown topology %T", t))
	}
}

// block returns the wells in rows [r0, r1) and columns [c0, c1), row by row.
func block(r0, r1, c0, c1 int) []Well {
	o := make([]Well, 0, (r1-r0)*(c1-c0))
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			o = append(o, Well{Row: r, Col: c})
		}
	}
	return o
}
