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
	"io"
	"io/ioutil"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Marker is the text in the first cell of the row that introduces the
// fluorescence data block of a plate-reader export.
const Marker = "Results for Fluorescein"

// The data block starts two rows below the marker (one header row is
// skipped) and its first column holds row labels.
const (
	dataRowOffset = 2
	dataColOffset = 1
)

// ParseGrid reads a comma-delimited plate-reader export and returns the
// fluorescence well grid that follows the Marker row.
// A byte order mark selects UTF-8 or UTF-16 decoding; input without one
// is read as UTF-8.
func ParseGrid(r io.Reader) (*WellGrid, error) {
	dec := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	b, err := ioutil.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("dispenseqc: reading plate data: %w", err)
	}
	return GridFromRows(splitRows(string(b)))
}

// splitRows splits text into rows of comma-separated cells, removing
// surrounding whitespace and quote characters from each cell.
func splitRows(text string) [][]string {
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}
	rows := make([][]string, len(lines))
	for i, line := range lines {
		cells := strings.Split(line, ",")
		for j, c := range cells {
			cells[j] = strings.Trim(strings.TrimSpace(c), `"`)
		}
		rows[i] = cells
	}
	return rows
}

// GridFromRows locates the Marker row in a table of cells and converts the
// 16×24 block of values following it into a WellGrid. Short rows are
// treated as padded with empty cells. Cells that are not finite numbers
// are absent in the returned grid.
func GridFromRows(rows [][]string) (*WellGrid, error) {
	marker := -1
	for i, row := range rows {
		if len(row) > 0 && strings.Contains(row[0], Marker) {
			marker = i
			break
		}
	}
	if marker < 0 {
		return nil, &FormatError{Row: -1, Msg: fmt.Sprintf("could not find the %q section", Marker)}
	}
	if need := marker + dataRowOffset + Rows; len(rows) < need {
		return nil, &FormatError{
			Row: marker,
			Msg: fmt.Sprintf("%d rows after the marker are required but only %d are present",
				dataRowOffset+Rows-1, len(rows)-marker-1),
		}
	}

	g := NewWellGrid()
	for r := 0; r < Rows; r++ {
		row := rows[marker+dataRowOffset+r]
		for c := 0; c < Cols; c++ {
			j := c + dataColOffset
			if j >= len(row) {
				break
			}
			if v, ok := parseCell(row[j]); ok {
				g.set(r, c, v)
			}
		}
	}
	return g, nil
}

func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
