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

import "gonum.org/v1/gonum/stat"

// UnitStatistic holds the precision and accuracy of one dispensing unit.
type UnitStatistic struct {
	ID     string // ChipID + "_" + Unit
	ChipID string
	Unit   string // unit label within the chip, e.g. "Nozzle_3"

	Mean     float64 // mean concentration
	StdDev   float64 // population standard deviation of concentration
	CV       float64 // coefficient of variation [%]
	Accuracy float64 // deviation of Mean from the target [%]
	N        int     // number of wells

	Columns string // column range the unit was drawn from, e.g. "4-24"
}

// Aggregate computes a UnitStatistic for every dispensing unit of every
// chip in chips, in chip order and then unit order. Units without any
// present well in conc are left out. target is the expected
// concentration and must not be zero.
func Aggregate(conc *WellGrid, target float64, chips []ChipConfig) ([]UnitStatistic, error) {
	if len(chips) == 0 {
		return nil, &ConfigError{Field: "chips", Value: 0, Msg: "at least one chip is required"}
	}
	var out []UnitStatistic
	for _, chip := range chips {
		if err := chip.Validate(); err != nil {
			return nil, err
		}
		for _, u := range Units(chip.Topology, chip.Columns) {
			values := make([]float64, 0, len(u.Wells))
			for _, w := range u.Wells {
				if v, ok := conc.At(w.Row, w.Col); ok {
					values = append(values, v)
				}
			}
			if len(values) == 0 {
				continue
			}
			id := chip.ID + "_" + u.Label
			if target == 0 {
				return nil, &DivisionError{Unit: id}
			}
			s := unitStatistic(values, target)
			s.ID = id
			s.ChipID = chip.ID
			s.Unit = u.Label
			s.Columns = chip.Columns.String()
			out = append(out, s)
		}
	}
	return out, nil
}

// unitStatistic computes the statistics of a non-empty set of values
// for a non-zero target.
func unitStatistic(values []float64, target float64) UnitStatistic {
	mean, std := stat.PopMeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	var cv float64
	if mean != 0 {
		cv = 100 * std / mean
	}
	return UnitStatistic{
		Mean:     mean,
		StdDev:   std,
		CV:       cv,
		Accuracy: 100 * (mean - target) / target,
		N:        len(values),
	}
}
