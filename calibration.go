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
	"math"
	"sort"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/stat"
)

// NumStandards is the number of calibration standards on a plate.
const NumStandards = 8

// StandardRows are the 0-based grid rows holding standards 1–8
// (rows A, C, E, ..., O).
var StandardRows = [NumStandards]int{0, 2, 4, 6, 8, 10, 12, 14}

// StandardCols are the 0-based grid columns holding the three replicate
// wells of each standard.
var StandardCols = [3]int{0, 1, 2}

// CalibrationPoint pairs the nominal concentration of one standard with
// its representative signal.
type CalibrationPoint struct {
	Standard      int       // 1-based standard index
	Concentration float64   // nominal concentration
	Signal        float64   // median of Replicates
	Replicates    []float64 // present, positive replicate signals
}

// CalibrationModel is a linear response function from signal to
// concentration fit by ordinary least squares.
type CalibrationModel struct {
	Slope, Intercept float64

	RSquared        float64 // coefficient of determination
	SlopeStdErr     float64 // standard error of the slope
	InterceptStdErr float64 // standard error of the intercept

	// Points are the standards the model was fit to, in standard order.
	Points []CalibrationPoint
}

// Predict returns the concentration for the given signal.
func (m CalibrationModel) Predict(signal float64) float64 {
	return m.Slope*signal + m.Intercept
}

// Equation returns the regression equation in the form used in reports.
func (m CalibrationModel) Equation() string {
	return fmt.Sprintf("y = %.8fx + %.8f", m.Slope, m.Intercept)
}

// StandardPoints extracts the calibration points from the standard wells
// of g, where standards holds the nominal concentration of each standard.
// Only present, strictly positive replicates count, and standards with no
// such replicates are left out.
func StandardPoints(g *WellGrid, standards []float64) ([]CalibrationPoint, error) {
	if len(standards) != NumStandards {
		return nil, &ConfigError{
			Field: "StandardConcentrations",
			Value: standards,
			Msg:   fmt.Sprintf("%d values are required, got %d", NumStandards, len(standards)),
		}
	}
	var points []CalibrationPoint
	for i, row := range StandardRows {
		var reps []float64
		for _, col := range StandardCols {
			if v, ok := g.At(row, col); ok && v > 0 {
				reps = append(reps, v)
			}
		}
		if len(reps) == 0 {
			continue
		}
		points = append(points, CalibrationPoint{
			Standard:      i + 1,
			Concentration: standards[i],
			Signal:        median(reps),
			Replicates:    reps,
		})
	}
	return points, nil
}

// BuildCalibration fits a standard curve to the standard wells of g.
// Concentration is regressed on signal, so the resulting model maps a
// measured signal to a concentration.
func BuildCalibration(g *WellGrid, standards []float64) (CalibrationModel, error) {
	points, err := StandardPoints(g, standards)
	if err != nil {
		return CalibrationModel{}, err
	}
	return FitCalibration(points)
}

// FitCalibration fits a CalibrationModel to the given points.
func FitCalibration(points []CalibrationPoint) (CalibrationModel, error) {
	if len(points) < 2 {
		return CalibrationModel{}, &InsufficientDataError{
			Points: len(points),
			Msg:    "at least 2 standards with valid wells are required",
		}
	}
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = p.Signal
		y[i] = p.Concentration
	}
	if stat.PopVariance(x, nil) == 0 {
		return CalibrationModel{}, &InsufficientDataError{
			Points: len(points),
			Msg:    "all standard signals are the same (no variation)",
		}
	}
	if stat.PopVariance(y, nil) == 0 {
		return CalibrationModel{}, &InsufficientDataError{
			Points: len(points),
			Msg:    "all standard concentrations are the same (no variation)",
		}
	}

	slope, intercept, rsquared, _, slopeErr, interceptErr := stats.LinearRegression(x, y)
	if !finite(slope) || !finite(intercept) {
		return CalibrationModel{}, &InsufficientDataError{
			Points: len(points),
			Msg:    fmt.Sprintf("regression produced a non-finite result (slope=%g, intercept=%g)", slope, intercept),
		}
	}
	return CalibrationModel{
		Slope:           slope,
		Intercept:       intercept,
		RSquared:        rsquared,
		SlopeStdErr:     slopeErr,
		InterceptStdErr: interceptErr,
		Points:          points,
	}, nil
}

// median returns the median of x without modifying it. The median of an
// even number of values is the mean of the two middle values.
func median(x []float64) float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
