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

// FormatError reports input that does not have the expected plate-reader
// layout: the marker row is missing or there are too few rows after it.
type FormatError struct {
	// Row is the 0-based input row the problem was found at, or -1 if the
	// problem is not tied to a row.
	Row int
	Msg string
}

func (e *FormatError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("dispenseqc: format error: %s", e.Msg)
	}
	return fmt.Sprintf("dispenseqc: format error at row %d: %s", e.Row+1, e.Msg)
}

// InsufficientDataError reports that a calibration curve cannot be fit.
type InsufficientDataError struct {
	// Points is the number of usable calibration points.
	Points int
	Msg    string
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("dispenseqc: insufficient calibration data (%d points): %s", e.Points, e.Msg)
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	// Field names the offending configuration value.
	Field string
	Value interface{}
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("dispenseqc: invalid %s=%v: %s", e.Field, e.Value, e.Msg)
}

// DivisionError reports a division by a zero target concentration.
type DivisionError struct {
	// Unit is the identifier of the dispensing unit being evaluated, if any.
	Unit string
}

func (e *DivisionError) Error() string {
	if e.Unit == "" {
		return "dispenseqc: target concentration is zero; %Accuracy is undefined"
	}
	return fmt.Sprintf("dispenseqc: target concentration is zero; %%Accuracy is undefined for %s", e.Unit)
}

// NoUnitsError reports that no dispensing unit has a measured well, so
// there is nothing to evaluate.
type NoUnitsError struct {
	// Chips lists the identifiers of the chips that were searched.
	Chips []string
}

func (e *NoUnitsError) Error() string {
	if len(e.Chips) == 0 {
		return "dispenseqc: no dispensing units with measured wells"
	}
	return fmt.Sprintf("dispenseqc: no measured wells in the columns of chips %s", strings.Join(e.Chips, ", "))
}

// StageError is returned by a Pipeline when one of its steps fails.
// Stage is the stage the run failed to reach (StageStart for an invalid
// configuration) and Err holds the specific error kind.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("dispenseqc: %s stage failed: %v", e.Stage.step(), e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
