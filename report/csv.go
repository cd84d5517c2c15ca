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

// Package report writes the results of a dispenser QC run as a processed
// CSV file, an Excel workbook, or a plain-text summary.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dispenseqc/dispenseqc"
)

// Note is appended to every report.
const Note = "QC calculations exclude wells outside each chip's column range; standard curve wells are in columns 1-3."

// csvWidth is the width of the processed CSV table: a row label and one
// column per plate column.
const csvWidth = dispenseqc.Cols + 1

// OutputName returns the path of an output file derived from the input
// file name: "<stem><suffix>" in dir, or beside the input if dir is empty.
func OutputName(input, dir, suffix string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem+suffix)
}

// CSVFileName returns the path of the processed CSV report for input.
func CSVFileName(input, dir string) string { return OutputName(input, dir, "_processed.csv") }

// SaveCSV writes the processed CSV report for res to fileName.
func SaveCSV(fileName string, res *dispenseqc.Result) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("report: creating CSV report: %w", err)
	}
	if err := WriteCSV(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteCSV writes the processed report: the concentration grid, one row
// per dispensing unit, per-chip averages and run summary statistics.
func WriteCSV(w io.Writer, res *dispenseqc.Result) error {
	cw := csv.NewWriter(w)
	write := func(cells ...string) {
		if len(cells) < csvWidth {
			cells = append(cells, make([]string, csvWidth-len(cells))...)
		}
		cw.Write(cells)
	}

	for r := 0; r < dispenseqc.Rows; r++ {
		row := make([]string, 0, csvWidth)
		row = append(row, "Row_"+dispenseqc.RowLabel(r))
		for c := 0; c < dispenseqc.Cols; c++ {
			if v, ok := res.Concentrations.At(r, c); ok {
				row = append(row, fmt.Sprintf("%.6f", v))
			} else {
				row = append(row, "")
			}
		}
		write(row...)
	}
	write()

	write("QC Results", "Chip", "Unit", "Mean Conc", "Std Dev", "%CV", "%Accuracy", "N", "Columns")
	for _, u := range res.Units {
		write("", u.ChipID, u.Unit,
			fmt.Sprintf("%.6f", u.Mean),
			fmt.Sprintf("%.6f", u.StdDev),
			percent(u.CV),
			percent(u.Accuracy),
			fmt.Sprint(u.N),
			"Cols "+u.Columns) // The prefix keeps spreadsheets from reading the range as a date.
	}
	for _, c := range dispenseqc.SummarizeChips(res.Units) {
		write("", c.ChipID, "CHIP_AVERAGE", "", "",
			percent(c.MeanCV),
			percent(c.MeanAccuracy),
			fmt.Sprint(c.N),
			"Cols "+c.Columns)
	}

	s := dispenseqc.Summarize(res.Units)
	write()
	write("Summary Statistics")
	write("Average %CV", percent(s.MeanCV))
	write("Average %Accuracy", percent(s.MeanAccuracy))
	write("Standard Curve R²", fmt.Sprintf("%.4f", res.Model.RSquared))
	write("Linear Regression Equation", res.Model.Equation())
	write("Best %CV", percent(s.BestCV))
	write("Worst %CV", percent(s.WorstCV))
	write()
	write("Note", Note)

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("report: writing CSV report: %w", err)
	}
	return nil
}

func percent(v float64) string { return fmt.Sprintf("%.2f%%", v) }
