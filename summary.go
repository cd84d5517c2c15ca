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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChipSummary averages the unit statistics of one chip.
type ChipSummary struct {
	ChipID  string
	Columns string

	MeanCV       float64 // mean %CV over the chip's units
	MeanAccuracy float64 // mean %Accuracy over the chip's units

	Units int // number of units
	N     int // total number of wells
}

// SummarizeChips returns one ChipSummary per chip appearing in units, in
// order of first appearance.
func SummarizeChips(units []UnitStatistic) []ChipSummary {
	var order []string
	byChip := make(map[string][]UnitStatistic)
	for _, u := range units {
		if _, ok := byChip[u.ChipID]; !ok {
			order = append(order, u.ChipID)
		}
		byChip[u.ChipID] = append(byChip[u.ChipID], u)
	}
	o := make([]ChipSummary, len(order))
	for i, id := range order {
		us := byChip[id]
		cv, acc := cvAccuracy(us)
		s := ChipSummary{
			ChipID:       id,
			Columns:      us[0].Columns,
			MeanCV:       stat.Mean(cv, nil),
			MeanAccuracy: stat.Mean(acc, nil),
			Units:        len(us),
		}
		for _, u := range us {
			s.N += u.N
		}
		o[i] = s
	}
	return o
}

// Summary holds run-wide averages of the unit statistics.
type Summary struct {
	MeanCV       float64
	MeanAccuracy float64
	BestCV       float64 // lowest unit %CV
	WorstCV      float64 // highest unit %CV
	Units        int
}

// Summarize averages the statistics of all units. The zero Summary is
// returned when units is empty.
func Summarize(units []UnitStatistic) Summary {
	if len(units) == 0 {
		return Summary{}
	}
	cv, acc := cvAccuracy(units)
	return Summary{
		MeanCV:       stat.Mean(cv, nil),
		MeanAccuracy: stat.Mean(acc, nil),
		BestCV:       floats.Min(cv),
		WorstCV:      floats.Max(cv),
		Units:        len(units),
	}
}

// ChipUnits returns the statistics in units that belong to chipID.
func ChipUnits(units []UnitStatistic, chipID string) []UnitStatistic {
	var o []UnitStatistic
	for _, u := range units {
		if u.ChipID == chipID {
			o = append(o, u)
		}
	}
	return o
}

func cvAccuracy(units []UnitStatistic) (cv, acc []float64) {
	cv = make([]float64, len(units))
	acc = make([]float64, len(units))
	for i, u := range units {
		cv[i] = u.CV
		acc[i] = u.Accuracy
	}
	return cv, acc
}
