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

package report

import (
	"fmt"

	"github.com/dispenseqc/dispenseqc"
	"github.com/tealeg/xlsx"
)

// XLSXFileName returns the path of the Excel report for input.
func XLSXFileName(input, dir string) string { return OutputName(input, dir, "_processed.xlsx") }

// SaveXLSX writes res and its assessment to an Excel workbook with the
// sheets "Concentrations", "QC", "Standard Curve" and "Summary".
func SaveXLSX(fileName string, res *dispenseqc.Result, a dispenseqc.Assessment) error {
	f := xlsx.NewFile()
	for _, s := range []struct {
		name  string
		write func(*xlsx.Sheet)
	}{
		{"Concentrations", func(sh *xlsx.Sheet) { writeGrid(sh, res.Concentrations) }},
		{"QC", func(sh *xlsx.Sheet) { writeUnits(sh, res.Units) }},
		{"Standard Curve", func(sh *xlsx.Sheet) { writeCurve(sh, res.Model) }},
		{"Summary", func(sh *xlsx.Sheet) { writeSummary(sh, res, a) }},
	} {
		sh, err := f.AddSheet(s.name)
		if err != nil {
			return fmt.Errorf("report: adding sheet %s: %w", s.name, err)
		}
		s.write(sh)
	}
	if err := f.Save(fileName); err != nil {
		return fmt.Errorf("report: saving xlsx report: %w", err)
	}
	return nil
}

func addRow(sh *xlsx.Sheet, cells ...interface{}) {
	row := sh.AddRow()
	for _, v := range cells {
		c := row.AddCell()
		switch t := v.(type) {
		case float64:
			c.SetFloat(t)
		case int:
			c.SetInt(t)
		case string:
			c.SetString(t)
		default:
			c.SetString(fmt.Sprint(t))
		}
	}
}

func writeGrid(sh *xlsx.Sheet, g *dispenseqc.WellGrid) {
	header := []interface{}{""}
	for c := 0; c < dispenseqc.Cols; c++ {
		header = append(header, c+1)
	}
	addRow(sh, header...)
	for r := 0; r < dispenseqc.Rows; r++ {
		row := sh.AddRow()
		row.AddCell().SetString(dispenseqc.RowLabel(r))
		for c := 0; c < dispenseqc.Cols; c++ {
			cell := row.AddCell()
			if v, ok := g.At(r, c); ok {
				cell.SetFloat(v)
			}
		}
	}
}

func writeUnits(sh *xlsx.Sheet, units []dispenseqc.UnitStatistic) {
	addRow(sh, "ID", "Chip", "Unit", "Mean Conc", "Std Dev", "%CV", "%Accuracy", "N", "Columns")
	for _, u := range units {
		addRow(sh, u.ID, u.ChipID, u.Unit, u.Mean, u.StdDev, u.CV, u.Accuracy, u.N, u.Columns)
	}
	addRow(sh)
	addRow(sh, "Chip", "Columns", "Units", "N", "Mean %CV", "Mean %Accuracy")
	for _, c := range dispenseqc.SummarizeChips(units) {
		addRow(sh, c.ChipID, c.Columns, c.Units, c.N, c.MeanCV, c.MeanAccuracy)
	}
}

func writeCurve(sh *xlsx.Sheet, m dispenseqc.CalibrationModel) {
	addRow(sh, "Standard", "Concentration", "Median Signal", "Replicates", "Predicted", "Residual")
	for _, p := range m.Points {
		pred := m.Predict(p.Signal)
		addRow(sh, p.Standard, p.Concentration, p.Signal, len(p.Replicates), pred, p.Concentration-pred)
	}
	addRow(sh)
	addRow(sh, "Slope", m.Slope)
	addRow(sh, "Intercept", m.Intercept)
	addRow(sh, "R²", m.RSquared)
	addRow(sh, "Slope Std Err", m.SlopeStdErr)
	addRow(sh, "Intercept Std Err", m.InterceptStdErr)
	addRow(sh, "Equation", m.Equation())
}

func writeSummary(sh *xlsx.Sheet, res *dispenseqc.Result, a dispenseqc.Assessment) {
	s := dispenseqc.Summarize(res.Units)
	addRow(sh, "Target Concentration", res.Target)
	addRow(sh, "Units", s.Units)
	addRow(sh, "Average %CV", s.MeanCV)
	addRow(sh, "Average %Accuracy", s.MeanAccuracy)
	addRow(sh, "Best %CV", s.BestCV)
	addRow(sh, "Worst %CV", s.WorstCV)
	addRow(sh, "Standard Curve R²", res.Model.RSquared)
	addRow(sh, "Precision", a.Precision.String(), a.Criteria.PrecisionExcellent, a.Criteria.PrecisionGood)
	addRow(sh, "Accuracy", a.Accuracy.String(), a.Criteria.AccuracyExcellent, a.Criteria.AccuracyGood)
	addRow(sh, "Fingerprint", res.Fingerprint())
	addRow(sh, "Note", Note)
}
