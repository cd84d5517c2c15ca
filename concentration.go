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

// Apply maps every present, strictly positive signal in g to a
// concentration and returns the result as a new grid. Absent and
// non-positive wells are absent in the result.
//
// Standard wells are converted like any other well; they are kept out of
// the QC statistics by the chips' column ranges.
func (m CalibrationModel) Apply(g *WellGrid) *WellGrid {
	o := NewWellGrid()
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			if s, ok := g.At(r, c); ok && s > 0 {
				o.set(r, c, m.Predict(s))
			}
		}
	}
	return o
}
