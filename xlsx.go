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
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx"
)

// LoadGridXLSX reads the fluorescence well grid from the named sheet of a
// Microsoft Excel workbook exported by the plate reader. If sheet is
// empty, the first sheet in the workbook is used. The sheet layout is the
// same as for ParseGrid.
func LoadGridXLSX(fileName, sheet string) (*WellGrid, error) {
	f, err := xlsx.OpenFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("dispenseqc: opening xlsx file: %w", err)
	}
	var s *xlsx.Sheet
	if sheet == "" {
		if len(f.Sheets) == 0 {
			return nil, &FormatError{Row: -1, Msg: fmt.Sprintf("workbook %s has no sheets", fileName)}
		}
		s = f.Sheets[0]
	} else {
		var ok bool
		if s, ok = f.Sheet[sheet]; !ok {
			return nil, &FormatError{Row: -1, Msg: fmt.Sprintf("workbook %s has no sheet %q", fileName, sheet)}
		}
	}

	rows := make([][]string, s.MaxRow)
	for j := 0; j < s.MaxRow; j++ {
		rows[j] = make([]string, s.MaxCol)
		for i := 0; i < s.MaxCol; i++ {
			rows[j][i] = strings.TrimSpace(s.Cell(j, i).Value)
		}
	}
	return GridFromRows(rows)
}

// ReadGridFile reads a well grid from a plate-reader export on disk.
// Files ending in ".xlsx" are read as workbooks (using sheet, which may
// be empty); all others are read as comma-delimited text.
func ReadGridFile(fileName, sheet string) (*WellGrid, error) {
	if strings.EqualFold(filepath.Ext(fileName), ".xlsx") {
		return LoadGridXLSX(fileName, sheet)
	}
	f, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("dispenseqc: opening plate data: %w", err)
	}
	defer f.Close()
	return ParseGrid(f)
}
