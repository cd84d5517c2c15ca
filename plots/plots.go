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

// Package plots draws figures of the standard curve and of unit
// precision and accuracy for a dispenser QC run.
package plots

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/dispenseqc/dispenseqc"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	curveWidth  = 10 * vg.Inch
	curveHeight = 6 * vg.Inch
	chipWidth   = 15 * vg.Inch
	allWidth    = 20 * vg.Inch
	chipHeight  = 6 * vg.Inch

	blue      = color.RGBA{B: 255, A: 255}
	red       = color.RGBA{R: 255, A: 255}
	skyBlue   = color.RGBA{R: 135, G: 206, B: 235, A: 255}
	coral     = color.RGBA{R: 240, G: 128, B: 128, A: 255}
	dashes    = []vg.Length{vg.Points(6), vg.Points(3)}
	lineWidth = vg.Points(2)
)

// StandardCurve plots the calibration points of m with the fitted line.
func StandardCurve(m dispenseqc.CalibrationModel) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Standard Curve"
	p.X.Label.Text = "Fluorescence (RFU)"
	p.Y.Label.Text = "Concentration"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(m.Points))
	signals := make([]float64, len(m.Points))
	for i, pt := range m.Points {
		pts[i].X, pts[i].Y = pt.Signal, pt.Concentration
		signals[i] = pt.Signal
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, fmt.Errorf("plots: standard curve points: %w", err)
	}
	s.GlyphStyle.Color = blue
	s.GlyphStyle.Radius = vg.Points(5)
	s.GlyphStyle.Shape = draw.CircleGlyph{}

	xmin, xmax := floats.Min(signals), floats.Max(signals)
	const n = 100
	fit := make(plotter.XYs, n)
	for i := range fit {
		x := xmin + (xmax-xmin)*float64(i)/(n-1)
		fit[i].X, fit[i].Y = x, m.Predict(x)
	}
	l, err := plotter.NewLine(fit)
	if err != nil {
		return nil, fmt.Errorf("plots: standard curve fit: %w", err)
	}
	l.LineStyle.Color = red
	l.LineStyle.Width = lineWidth

	p.Add(s, l)
	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.Add("Data points", s)
	p.Legend.Add(fmt.Sprintf("R² = %.4f; %s", m.RSquared, m.Equation()), l)
	return p, nil
}

// metricPlot draws one bar per unit with a dashed line at the mean.
func metricPlot(title, ylabel, avgLabel string, names []string, values []float64, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return nil, fmt.Errorf("plots: %s: %w", title, err)
	}
	bars.Color = c
	bars.LineStyle.Width = 0

	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(values)),
		Labels: make([]string, len(values)),
	}
	for i, v := range values {
		labels.XYs[i].X, labels.XYs[i].Y = float64(i), v
		labels.Labels[i] = fmt.Sprintf("%.1f%%", v)
	}
	lbl, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("plots: %s labels: %w", title, err)
	}

	avg := stat.Mean(values, nil)
	line, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: avg}, {X: float64(len(values)) - 0.5, Y: avg}})
	if err != nil {
		return nil, fmt.Errorf("plots: %s average: %w", title, err)
	}
	line.LineStyle.Color = red
	line.LineStyle.Width = lineWidth
	line.LineStyle.Dashes = dashes

	p.Add(bars, lbl, line)
	p.Legend.Top = true
	p.Legend.Add(fmt.Sprintf("%s: %.1f%%", avgLabel, avg), line)
	p.NominalX(names...)
	if floats.Min(values) > 0 {
		p.Y.Min = 0
	}
	return p, nil
}

// ChipPerformance returns the %CV and %Accuracy bar charts of the units of
// one chip.
func ChipPerformance(chipID string, units []dispenseqc.UnitStatistic) (cv, acc *plot.Plot, err error) {
	return performance(chipID, "Chip Average", dispenseqc.ChipUnits(units, chipID), false)
}

// AllChips returns the %CV and %Accuracy bar charts of every unit of every
// chip, labelled with the full unit ID.
func AllChips(units []dispenseqc.UnitStatistic) (cv, acc *plot.Plot, err error) {
	return performance("All Chips", "Overall Average", units, true)
}

func performance(title, avgLabel string, units []dispenseqc.UnitStatistic, fullNames bool) (cv, acc *plot.Plot, err error) {
	if len(units) == 0 {
		return nil, nil, fmt.Errorf("plots: %s: no units to plot", title)
	}
	names := make([]string, len(units))
	cvs := make([]float64, len(units))
	accs := make([]float64, len(units))
	for i, u := range units {
		names[i] = u.Unit
		if fullNames {
			names[i] = u.ID
		}
		cvs[i], accs[i] = u.CV, u.Accuracy
	}
	cv, err = metricPlot(title+" - Precision (%CV)", "%CV", avgLabel, names, cvs, skyBlue)
	if err != nil {
		return nil, nil, err
	}
	acc, err = metricPlot(title+" - Accuracy (%Accuracy)", "%Accuracy", avgLabel, names, accs, coral)
	if err != nil {
		return nil, nil, err
	}
	if fullNames {
		cv.X.Tick.Label.Rotation = math.Pi / 4
		acc.X.Tick.Label.Rotation = math.Pi / 4
	}
	return cv, acc, nil
}

// savePair draws two plots side by side into a PNG file.
func savePair(fileName string, w, h vg.Length, left, right *plot.Plot) error {
	img := vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(150))
	dc := draw.New(img)
	t := draw.Tiles{Rows: 1, Cols: 2, PadX: vg.Inch / 4}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, t, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("plots: creating %s: %w", fileName, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("plots: writing %s: %w", fileName, err)
	}
	return f.Close()
}

// ChipFileName returns the file name of the performance plot of a chip.
func ChipFileName(chipID string) string {
	name := strings.NewReplacer(" ", "_", "-", "_").Replace(strings.ToLower(chipID))
	return name + "_nozzle_performance.png"
}

// Save writes the standard curve plot, one performance plot per chip, and,
// for runs with more than one chip, a combined performance plot into a
// "plots" directory within dir. It returns the paths of the files written.
func Save(dir string, res *dispenseqc.Result) ([]string, error) {
	dir = filepath.Join(dir, "plots")
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("plots: creating output directory: %w", err)
	}
	var files []string

	p, err := StandardCurve(res.Model)
	if err != nil {
		return nil, err
	}
	f := filepath.Join(dir, "standard_curve.png")
	if err := p.Save(curveWidth, curveHeight, f); err != nil {
		return nil, fmt.Errorf("plots: saving standard curve: %w", err)
	}
	files = append(files, f)

	chips := dispenseqc.SummarizeChips(res.Units)
	for _, c := range chips {
		cv, acc, err := ChipPerformance(c.ChipID, res.Units)
		if err != nil {
			return nil, err
		}
		f := filepath.Join(dir, ChipFileName(c.ChipID))
		if err := savePair(f, chipWidth, chipHeight, cv, acc); err != nil {
			return nil, err
		}
		files = append(files, f)
	}

	if len(chips) > 1 {
		cv, acc, err := AllChips(res.Units)
		if err != nil {
			return nil, err
		}
		f := filepath.Join(dir, "all_chips_nozzle_performance.png")
		if err := savePair(f, allWidth, chipHeight, cv, acc); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
